package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Yuri05/OSPSuite.Core/internal/concurrency"
	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/exporter"
	"github.com/Yuri05/OSPSuite.Core/internal/infrastructure"
	"github.com/Yuri05/OSPSuite.Core/internal/pkanalysis"
	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/internal/validation"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// PKParameterStore persists imported PK parameters
type PKParameterStore interface {
	SavePKParameters(ctx context.Context, params []*domain.QuantityPKParameter) error
}

// PKImportResult maps each successfully imported file to its parameters
type PKImportResult struct {
	Parameters map[string][]*domain.QuantityPKParameter
	Log        *apperrors.ImportLog
}

// Files returns the imported file paths in sorted order
func (r *PKImportResult) Files() []string {
	files := make([]string, 0, len(r.Parameters))
	for f := range r.Parameters {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// PKService imports and exports PK-analysis files
type PKService struct {
	importer *pkanalysis.Importer
	exporter *pkanalysis.Exporter
	manager  *concurrency.Manager
	files    *validation.FileValidator
	store    PKParameterStore
	metrics  *infrastructure.ImportMetrics
	logger   *slog.Logger
}

// NewPKService creates a PK service
func NewPKService(resolver units.Resolver, manager *concurrency.Manager, writer *exporter.CSVWriter, logger *slog.Logger) *PKService {
	if logger == nil {
		logger = slog.Default()
	}
	if manager == nil {
		manager = concurrency.NewManager(0, logger)
	}
	return &PKService{
		importer: pkanalysis.NewImporter(resolver, logger),
		exporter: pkanalysis.NewExporter(writer, resolver),
		manager:  manager,
		files:    validation.NewFileValidator(logger),
		logger:   infrastructure.WithComponent(logger, "pk_service"),
	}
}

// WithDelimiter sets the field delimiter of imported files
func (s *PKService) WithDelimiter(delimiter rune) *PKService {
	s.importer = s.importer.WithDelimiter(delimiter)
	return s
}

// WithStore enables persistence of imported parameters
func (s *PKService) WithStore(st PKParameterStore) *PKService {
	s.store = st
	return s
}

// WithMetrics records pipeline metrics
func (s *PKService) WithMetrics(m *infrastructure.ImportMetrics) *PKService {
	s.metrics = m
	if m != nil {
		s.manager.SetObserver(m)
	}
	return s
}

// ImportFiles imports every file in parallel. Files that fail are left
// out of the result and reported in its log.
func (s *PKService) ImportFiles(ctx context.Context, paths []string) (*PKImportResult, error) {
	if len(paths) == 0 {
		return nil, apperrors.NewImportError("nothing to import", ErrNoFilesFound)
	}

	result := &PKImportResult{Log: apperrors.NewImportLog()}
	valid := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := s.files.ValidatePKAnalysisFile(p); err != nil {
			result.Log.AddError(p, apperrors.NewAppValidationError(err.Error()))
			continue
		}
		valid = append(valid, p)
	}

	params, err := s.importer.ImportFiles(ctx, s.manager, valid, result.Log)
	if err != nil {
		return result, err
	}
	result.Parameters = params

	if s.metrics != nil {
		for file, p := range params {
			s.metrics.AddPKParameters(ctx, file, len(p))
		}
		s.metrics.AddErrors(ctx, "pk_analysis", countErrors(result.Log))
	}

	if s.store != nil {
		for _, file := range result.Files() {
			if err := s.store.SavePKParameters(ctx, params[file]); err != nil {
				return result, err
			}
		}
	}

	s.logger.InfoContext(ctx, "PK-analysis files imported",
		slog.Int("requested", len(paths)),
		slog.Int("imported", len(params)),
		slog.Bool("has_errors", result.Log.HasErrors()))
	return result, nil
}

// Export writes params to fileName. displayUnits maps parameter names to
// output units; parameters without an entry use their base unit.
func (s *PKService) Export(ctx context.Context, params []*domain.QuantityPKParameter, fileName string, displayUnits map[string]string) (string, error) {
	if len(params) == 0 {
		return "", apperrors.NewAppValidationError(ErrNoParameters.Error())
	}
	path, err := s.exporter.Export(params, fileName, displayUnits)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "PK parameters exported",
		slog.String("path", path),
		slog.Int("parameters", len(params)))
	return path, nil
}
