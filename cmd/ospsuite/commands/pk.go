package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Yuri05/OSPSuite.Core/internal/exporter"
	"github.com/Yuri05/OSPSuite.Core/internal/pkoptions"
	"github.com/Yuri05/OSPSuite.Core/internal/services"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

func (a *app) pkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pk",
		Short: "Import, export and configure PK-analysis results",
	}
	cmd.AddCommand(a.pkImportCmd(), a.pkExportCmd(), a.pkOptionsCmd())
	return cmd
}

func (a *app) pkService() *services.PKService {
	return services.NewPKService(a.registry, a.manager, a.csvWriter(), a.logger).
		WithDelimiter(a.cfg.DelimiterRune()).
		WithMetrics(a.metrics)
}

func (a *app) pkImportCmd() *cobra.Command {
	var (
		persist      bool
		dbPath       string
		output       string
		displayUnits map[string]string
	)

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import PK-analysis CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.pkService()
			if persist {
				st, err := a.openStore(dbPath)
				if err != nil {
					return err
				}
				defer st.Close()
				svc.WithStore(st)
			}

			result, err := svc.ImportFiles(cmd.Context(), args)
			if result != nil && result.Log.HasErrors() {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Log.String())
			}
			if err != nil {
				return err
			}

			var all []*domain.QuantityPKParameter
			for _, file := range result.Files() {
				params := result.Parameters[file]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d parameters\n", file, len(params))
				all = append(all, params...)
			}

			if output == "" {
				return nil
			}
			if len(all) == 0 {
				return services.ErrNoParameters
			}
			path, err := svc.Export(cmd.Context(), all, output, displayUnits)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", false, "store parameters in the database")
	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default from storage.database_file)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "re-export all imported parameters to this file")
	cmd.Flags().StringToStringVar(&displayUnits, "unit", nil, "display unit per parameter, e.g. --unit C_max=µg/l")
	return cmd
}

func (a *app) pkExportCmd() *cobra.Command {
	var (
		dbPath       string
		displayUnits map[string]string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export stored PK parameters as a PK-analysis CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			params, err := st.ListPKParameters(cmd.Context())
			if err != nil {
				return err
			}
			path, err := a.pkService().Export(cmd.Context(), params, args[0], displayUnits)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default from storage.database_file)")
	cmd.Flags().StringToStringVar(&displayUnits, "unit", nil, "display unit per parameter, e.g. --unit C_max=µg/l")
	return cmd
}

func (a *app) pkOptionsCmd() *cobra.Command {
	var molecules []string

	cmd := &cobra.Command{
		Use:   "options <simulation.yaml>",
		Short: "Derive PK calculation options from a simulation description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := pkoptions.LoadSimulationFile(args[0])
			if err != nil {
				return err
			}
			if len(molecules) == 0 {
				molecules = simulationMolecules(sim)
			}

			factory := pkoptions.NewFactory(a.logger)
			for _, molecule := range molecules {
				printOptions(cmd.OutOrStdout(), factory.CreateFor(sim, molecule))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&molecules, "molecule", nil, "molecules to derive options for (default: all applied molecules)")
	return cmd
}

// simulationMolecules returns the applied molecules in first-seen order
func simulationMolecules(sim *pkoptions.Simulation) []string {
	seen := make(map[string]bool)
	var out []string
	for _, application := range sim.Applications {
		if !seen[application.Molecule] {
			seen[application.Molecule] = true
			out = append(out, application.Molecule)
		}
	}
	return out
}

func printOptions(w io.Writer, opts pkoptions.Options) {
	fmt.Fprintf(w, "molecule: %s\n", opts.Molecule)
	if opts.ApplyingMolecule != "" && opts.ApplyingMolecule != opts.Molecule {
		fmt.Fprintf(w, "  applied as: %s\n", opts.ApplyingMolecule)
	}
	fmt.Fprintf(w, "  total drug mass per body weight: %s\n", exporter.FormatFloat(opts.TotalDrugMassPerBodyWeight))
	fmt.Fprintf(w, "  infusion time: %s\n", exporter.FormatFloat(opts.InfusionTime))
	for i, iv := range opts.DosingIntervals {
		fmt.Fprintf(w, "  interval %d: %s..%s drug mass per body weight %s\n", i+1,
			exporter.FormatFloat(iv.Start), exporter.FormatFloat(iv.End), exporter.FormatFloat(iv.DrugMassPerBodyWeight))
	}
}
