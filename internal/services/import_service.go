package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Yuri05/OSPSuite.Core/internal/concurrency"
	"github.com/Yuri05/OSPSuite.Core/internal/dataimport"
	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/exporter"
	"github.com/Yuri05/OSPSuite.Core/internal/infrastructure"
	"github.com/Yuri05/OSPSuite.Core/internal/sources"
	"github.com/Yuri05/OSPSuite.Core/internal/store"
	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/internal/validation"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// RepositoryStore persists built repositories
type RepositoryStore interface {
	GetRepository(ctx context.Context, id string) (*domain.DataRepository, error)
	ListRepositories(ctx context.Context) ([]store.RepositorySummary, error)
	ReplaceRepositories(ctx context.Context, repos []*domain.DataRepository, deleteIDs []string) error
}

// ImportRequest selects the files to import. Paths may name files or
// directories; directories are scanned for data files.
type ImportRequest struct {
	Paths         []string
	Configuration *sources.ImportConfiguration
	Export        bool
}

// ImportResult is the outcome of one import call
type ImportResult struct {
	Repositories []*domain.DataRepository
	Exported     []string
	Reload       *dataimport.ReloadDataSets
	Log          *apperrors.ImportLog
}

// ImportService turns data files into repositories
type ImportService struct {
	importer  *dataimport.Importer
	manager   *concurrency.Manager
	discovery *sources.Discovery
	files     *validation.FileValidator
	exporter  *exporter.RepositoryExporter
	store     RepositoryStore
	metrics   *infrastructure.ImportMetrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewImportService creates an import service. Exported CSV files are
// written through writer.
func NewImportService(resolver units.Resolver, manager *concurrency.Manager, writer *exporter.CSVWriter, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	if manager == nil {
		manager = concurrency.NewManager(0, logger)
	}
	builder := dataimport.NewBuilder(resolver, logger)
	return &ImportService{
		importer:  dataimport.NewImporter(builder, manager, logger),
		manager:   manager,
		discovery: sources.NewDiscovery(""),
		files:     validation.NewFileValidator(logger),
		exporter:  exporter.NewRepositoryExporter(writer, resolver),
		logger:    infrastructure.WithComponent(logger, "import_service"),
		tracer:    otel.Tracer("github.com/Yuri05/OSPSuite.Core/internal/services"),
	}
}

// WithStore enables persistence of imported repositories
func (s *ImportService) WithStore(st RepositoryStore) *ImportService {
	s.store = st
	return s
}

// WithBOM prefixes exported CSV files with a UTF-8 BOM
func (s *ImportService) WithBOM(bom bool) *ImportService {
	s.exporter.WithBOM(bom)
	return s
}

// WithMetrics records pipeline metrics
func (s *ImportService) WithMetrics(m *infrastructure.ImportMetrics) *ImportService {
	s.metrics = m
	if m != nil {
		s.manager.SetObserver(m)
	}
	return s
}

// Import loads every requested file, builds repositories, and optionally
// persists and exports them. Unreadable files are logged and skipped; a
// build failure aborts the whole call.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "services.Import")
	defer span.End()

	if req.Configuration == nil {
		return nil, apperrors.NewConfigError("cannot import", ErrMissingConfig)
	}
	if err := req.Configuration.Validate(); err != nil {
		return nil, err
	}

	result := &ImportResult{Log: apperrors.NewImportLog()}
	files := s.expandPaths(req.Paths, result.Log)
	if len(files) == 0 {
		err := apperrors.NewImportError("nothing to import", ErrNoFilesFound)
		if logErr := result.Log.Err(); logErr != nil {
			err = apperrors.NewImportError("nothing to import", fmt.Errorf("%w: %w", ErrNoFilesFound, logErr))
		}
		return result, err
	}
	span.SetAttributes(attribute.Int("files", len(files)))

	sets, err := s.load(ctx, files, req.Configuration, result.Log)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return result, err
	}
	if len(sets) == 0 {
		cause := ErrNothingImported
		if logErr := result.Log.Err(); logErr != nil {
			cause = fmt.Errorf("%w: %w", ErrNothingImported, logErr)
		}
		return result, apperrors.NewImportError("nothing imported", cause)
	}

	repos, err := s.importer.ImportDataSets(ctx, sets)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		if errors.Is(err, concurrency.ErrCancelled) {
			return result, err
		}
		return result, apperrors.NewBuildError("failed to build repositories", err)
	}
	result.Repositories = repos
	if s.metrics != nil {
		s.metrics.AddRepositories(ctx, len(repos))
		s.metrics.AddErrors(ctx, "observed_data", countErrors(result.Log))
	}

	if s.store != nil {
		reload, err := s.persist(ctx, repos, files)
		if err != nil {
			return result, err
		}
		result.Reload = reload
	}

	if req.Export {
		for _, repo := range repos {
			path, err := s.Export(repo)
			if err != nil {
				result.Log.AddError(repo.Name, err)
				continue
			}
			result.Exported = append(result.Exported, path)
		}
	}

	s.logger.InfoContext(ctx, "import finished",
		slog.Int("files", len(files)),
		slog.Int("repositories", len(repos)),
		slog.Int("exported", len(result.Exported)),
		slog.Bool("has_errors", result.Log.HasErrors()))
	return result, nil
}

// Export writes repo to the output directory as <name>.csv
func (s *ImportService) Export(repo *domain.DataRepository) (string, error) {
	return s.exporter.Export(repo, FileNameFor(repo.Name)+".csv")
}

func (s *ImportService) expandPaths(paths []string, log *apperrors.ImportLog) []string {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.AddError(p, apperrors.NewNotFoundError(fmt.Sprintf("path %s", p)))
			continue
		}
		if !info.IsDir() {
			if err := s.files.ValidateDataFile(p); err != nil {
				log.AddError(p, apperrors.NewAppValidationError(err.Error()))
				continue
			}
			files = append(files, p)
			continue
		}
		found, err := s.discovery.FindDataFiles(p)
		if err != nil {
			log.AddError(p, err)
			continue
		}
		for _, f := range found {
			files = append(files, f.Path)
		}
	}
	return files
}

// load reads files in parallel and returns their datasets in file order
func (s *ImportService) load(ctx context.Context, files []string, cfg *sources.ImportConfiguration, log *apperrors.ImportLog) ([]dataimport.DataSet, error) {
	loader := sources.NewLoader(cfg, s.logger)

	loaded, err := concurrency.Run(ctx, s.manager, 0, files,
		func(ctx context.Context, slot int, path string) ([]dataimport.DataSet, error) {
			sets, err := loader.Load(ctx, path)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.AddError(path, err)
				return nil, nil
			}
			return sets, nil
		})
	if err != nil {
		return nil, err
	}

	var sets []dataimport.DataSet
	for _, f := range files {
		sets = append(sets, loaded[f]...)
		delete(loaded, f)
	}
	return sets, nil
}

// persist saves repos in one store transaction, replacing repositories
// previously imported from the same files and removing those that no longer
// have a counterpart
func (s *ImportService) persist(ctx context.Context, repos []*domain.DataRepository, files []string) (*dataimport.ReloadDataSets, error) {
	existing, err := s.existingFor(ctx, files)
	if err != nil {
		return nil, err
	}

	reload := dataimport.CompareForReload(repos, existing)
	for i, repo := range reload.Overwritten {
		repo.ID = reload.Replaced[i].ID
	}
	deleteIDs := make([]string, 0, len(reload.Deleted))
	for _, repo := range reload.Deleted {
		deleteIDs = append(deleteIDs, repo.ID)
	}
	if err := s.store.ReplaceRepositories(ctx, repos, deleteIDs); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "repositories persisted",
		slog.Int("new", len(reload.New)),
		slog.Int("overwritten", len(reload.Overwritten)),
		slog.Int("deleted", len(reload.Deleted)))
	return &reload, nil
}

// existingFor loads the stored repositories whose source file is one of files
func (s *ImportService) existingFor(ctx context.Context, files []string) ([]*domain.DataRepository, error) {
	wanted := make(map[string]bool, len(files))
	for _, f := range files {
		wanted[f] = true
	}

	summaries, err := s.store.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	var existing []*domain.DataRepository
	for _, sum := range summaries {
		repo, err := s.store.GetRepository(ctx, sum.ID)
		if err != nil {
			return nil, err
		}
		if source, ok := repo.ExtendedProperty(domain.PropertySourceFile); ok && wanted[source] {
			existing = append(existing, repo)
		}
	}
	return existing, nil
}

// FileNameFor replaces characters that are not allowed in file names
func FileNameFor(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}

func countErrors(log *apperrors.ImportLog) int {
	n := 0
	for _, e := range log.Entries() {
		if e.Severity == apperrors.SeverityError {
			n++
		}
	}
	return n
}
