package commands

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yuri05/OSPSuite.Core/internal/population"
	"github.com/Yuri05/OSPSuite.Core/internal/validation"
)

func (a *app) populationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "population",
		Short: "Prepare populations for parallel simulation",
	}

	var (
		cores    int
		outDir   string
		baseName string
	)
	split := &cobra.Command{
		Use:   "split <population.csv>",
		Short: "Split a population file into one partition per core",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cores <= 0 {
				cores = runtime.NumCPU()
			}
			dir := outDir
			if dir == "" {
				dir = a.paths.OutputDir
			}
			if err := validation.NewFileValidator(a.logger).ValidateOutputDirectory(dir); err != nil {
				return err
			}
			name := baseName
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			written, err := population.NewSplitter(a.logger).SplitFile(cmd.Context(), args[0], cores, dir, name)
			if err != nil {
				return err
			}
			a.metrics.AddPartitions(cmd.Context(), len(written))
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	split.Flags().IntVarP(&cores, "cores", "n", 0, "number of partitions (default: number of CPUs)")
	split.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: configured output directory)")
	split.Flags().StringVar(&baseName, "name", "", "partition file base name (default: input file name)")

	cmd.AddCommand(split)
	return cmd
}
