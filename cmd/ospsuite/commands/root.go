package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Yuri05/OSPSuite.Core/internal/concurrency"
	"github.com/Yuri05/OSPSuite.Core/internal/config"
	"github.com/Yuri05/OSPSuite.Core/internal/exporter"
	"github.com/Yuri05/OSPSuite.Core/internal/infrastructure"
	"github.com/Yuri05/OSPSuite.Core/internal/store"
	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts"
)

// app is the state shared by all subcommands. It is populated by setup
// before any subcommand runs.
type app struct {
	configPath string

	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
	metrics   *infrastructure.ImportMetrics
	registry  *units.Registry
	manager   *concurrency.Manager
}

// Execute runs the command line until completion or SIGINT/SIGTERM
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRootCommand()
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.teardown(context.Background()))
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:          "ospsuite",
		Short:        "Import observed data and PK-analysis results",
		Version:      contracts.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file (default ospsuite.yaml or configs/ospsuite.yaml)")

	root.AddCommand(
		a.importCmd(),
		a.repositoriesCmd(),
		a.pkCmd(),
		a.populationCmd(),
		a.dimensionsCmd(),
		versionCmd(),
	)
	return root, a
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	logCfg := cfg.Logging
	logCfg.FilePath = paths.LogFile
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	tel, err := infrastructure.InitializeTelemetry(infrastructure.TelemetryOptions{
		ServiceVersion: contracts.Version,
		Tracing:        cfg.Telemetry.Tracing,
	}, logger)
	if err != nil {
		return err
	}
	metrics, err := infrastructure.NewImportMetrics(tel.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	registry, err := units.NewRegistry()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.paths = paths
	a.logger = logger
	a.telemetry = tel
	a.metrics = metrics
	a.registry = registry
	a.manager = concurrency.NewManager(cfg.Concurrency.MaxDegreeOfParallelism, logger)

	logger.Debug("configuration loaded",
		slog.String("base_dir", paths.BaseDir),
		slog.Int("max_degree_of_parallelism", cfg.Concurrency.MaxDegreeOfParallelism))
	return nil
}

// teardown writes the metrics textfile and flushes telemetry. It is a
// no-op when setup never ran.
func (a *app) teardown(ctx context.Context) error {
	if a.telemetry == nil {
		return nil
	}

	var errs []error
	if file := a.cfg.Telemetry.MetricsFile; file != "" {
		if err := a.telemetry.WriteMetricsTextfile(a.paths.OutputPath(file)); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, a.telemetry.Shutdown(ctx), infrastructure.CloseLogFile())
	a.telemetry = nil
	return errors.Join(errs...)
}

func (a *app) csvWriter() *exporter.CSVWriter {
	return exporter.NewCSVWriter(a.paths.OutputDir, a.logger)
}

// openStore opens the repository database at path, or at the configured
// location when path is empty
func (a *app) openStore(path string) (*store.Store, error) {
	if path == "" {
		path = a.paths.DatabaseFile
	}
	return store.Open(path, a.registry)
}
