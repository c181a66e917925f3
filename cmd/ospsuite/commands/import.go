package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Yuri05/OSPSuite.Core/internal/services"
	"github.com/Yuri05/OSPSuite.Core/internal/sources"
	"github.com/Yuri05/OSPSuite.Core/internal/validation"
)

func (a *app) importCmd() *cobra.Command {
	var (
		mappingFile string
		delimiter   string
		export      bool
		persist     bool
		dbPath      string
	)

	cmd := &cobra.Command{
		Use:   "import [paths...]",
		Short: "Import observed data from Excel and CSV files",
		Long: `Import observed data from Excel and CSV files into data repositories.

Paths may name files or directories. Without paths the configured data
directory is scanned. Columns are mapped by an import configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mappingFile == "" {
				mappingFile = a.cfg.Import.Configuration
			}
			if mappingFile == "" {
				return fmt.Errorf("an import configuration is required (--mapping or import.configuration)")
			}
			mapping, err := sources.LoadConfigurationFile(mappingFile)
			if err != nil {
				return err
			}
			if delimiter != "" {
				mapping.Delimiter = delimiter
			} else if mapping.Delimiter == "" {
				mapping.Delimiter = a.cfg.Import.Delimiter
			}

			files := validation.NewFileValidator(a.logger)
			paths := args
			if len(paths) == 0 {
				if err := files.ValidateInputDirectory(a.paths.DataDir); err != nil {
					return err
				}
				paths = []string{a.paths.DataDir}
			}
			if export {
				if err := files.ValidateOutputDirectory(a.paths.OutputDir); err != nil {
					return err
				}
			}

			svc := services.NewImportService(a.registry, a.manager, a.csvWriter(), a.logger).
				WithBOM(a.cfg.Import.WriteBOM).
				WithMetrics(a.metrics)
			if persist || a.cfg.Storage.Enabled {
				st, err := a.openStore(dbPath)
				if err != nil {
					return err
				}
				defer st.Close()
				svc.WithStore(st)
			}

			result, err := svc.Import(cmd.Context(), services.ImportRequest{
				Paths:         paths,
				Configuration: mapping,
				Export:        export,
			})
			if result != nil && result.Log.HasErrors() {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Log.String())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, repo := range result.Repositories {
				fmt.Fprintf(out, "%s\t%s\t%d columns\n", repo.ID, repo.Name, repo.Len())
			}
			if result.Reload != nil {
				fmt.Fprintf(out, "stored: %d new, %d overwritten, %d deleted\n",
					len(result.Reload.New), len(result.Reload.Overwritten), len(result.Reload.Deleted))
			}
			for _, path := range result.Exported {
				fmt.Fprintf(out, "exported %s\n", path)
			}

			a.logger.InfoContext(cmd.Context(), "import command completed",
				slog.Int("repositories", len(result.Repositories)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "import configuration file")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", "", "CSV field delimiter")
	cmd.Flags().BoolVar(&export, "export", false, "export each repository as CSV to the output directory")
	cmd.Flags().BoolVar(&persist, "persist", false, "store repositories in the database")
	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default from storage.database_file)")
	return cmd
}

func (a *app) repositoriesCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:     "repositories",
		Aliases: []string{"repos"},
		Short:   "Inspect stored data repositories",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default from storage.database_file)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.ListRepositories(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d columns\t%s\n",
					s.ID, s.Name, s.Columns, s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	export := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a stored repository as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			repo, err := st.GetRepository(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			svc := services.NewImportService(a.registry, a.manager, a.csvWriter(), a.logger).
				WithBOM(a.cfg.Import.WriteBOM)
			path, err := svc.Export(repo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", path)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			return st.DeleteRepository(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, export, remove)
	return cmd
}
