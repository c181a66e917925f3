package dataimport

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/internal/validation"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// Builder turns datasets into repositories. It keeps no state between
// calls and can be shared by concurrent workers.
type Builder struct {
	resolver   units.Resolver
	normalizer *Normalizer
	validator  *validation.StructValidator
	logger     *slog.Logger
	tracer     trace.Tracer
	newID      func() string
}

// NewBuilder creates a builder using resolver for unit lookup
func NewBuilder(resolver units.Resolver, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		resolver:   resolver,
		normalizer: NewNormalizer(resolver),
		validator:  validation.Default(),
		logger:     logger.With(slog.String("component", "repository_builder")),
		tracer:     otel.Tracer("github.com/Yuri05/OSPSuite.Core/internal/dataimport"),
		newID:      func() string { return uuid.New().String() },
	}
}

// Build creates a repository from ds. Base grids are materialized first,
// then dependent columns in input order, then related-column links, then
// provenance. Any failure discards the whole repository.
func (b *Builder) Build(ctx context.Context, ds DataSet) (*domain.DataRepository, error) {
	name := repositoryName(ds)
	ctx, span := b.tracer.Start(ctx, "dataimport.Build", trace.WithAttributes(
		attribute.String("repository", name),
		attribute.Int("columns", len(ds.Columns)),
	))
	defer span.End()

	repo, err := b.build(ctx, name, ds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.logger.WarnContext(ctx, "repository build failed",
			slog.String("repository", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	b.logger.DebugContext(ctx, "repository built",
		slog.String("repository", name),
		slog.Int("columns", repo.Len()))
	return repo, nil
}

func (b *Builder) build(ctx context.Context, name string, ds DataSet) (*domain.DataRepository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classes := make([]Classification, len(ds.Columns))
	for i, col := range ds.Columns {
		if err := b.validator.Struct(col.Info); err != nil {
			return nil, &BuildError{Repository: name, Column: col.Info.Name, Err: fmt.Errorf("%w: %w", ErrInvalidColumn, err)}
		}
		classes[i] = Classify(col.Info)
	}

	repo := domain.NewDataRepository(b.newID(), name)

	for i, col := range ds.Columns {
		if classes[i].Role != RoleBaseAxis {
			continue
		}
		if err := b.addBaseGrid(ctx, repo, ds, col); err != nil {
			return nil, err
		}
	}

	for i, col := range ds.Columns {
		if classes[i].Role == RoleBaseAxis {
			continue
		}
		if err := b.addDependent(ctx, repo, ds, col, classes[i]); err != nil {
			return nil, err
		}
	}

	for i, col := range ds.Columns {
		if classes[i].RelatedTo == "" {
			continue
		}
		if err := repo.AddRelatedColumn(classes[i].RelatedTo, col.Info.Name); err != nil {
			return nil, &BuildError{Repository: name, Column: col.Info.Name, Err: err}
		}
	}

	for _, md := range ds.Metadata {
		repo.AddExtendedProperty(md.Name, md.Value)
	}
	if ds.FileName != "" {
		repo.AddExtendedProperty(domain.PropertySourceFile, ds.FileName)
		repo.AddExtendedProperty(domain.PropertySheet, ds.SheetName)
	}

	if err := repo.Validate(); err != nil {
		return nil, &BuildError{Repository: name, Err: err}
	}
	return repo, nil
}

func (b *Builder) addBaseGrid(ctx context.Context, repo *domain.DataRepository, ds DataSet, col ParsedColumn) error {
	unit := col.Unit()
	dim := b.dimensionFor(ctx, unit, col.Info.Name)

	values, err := b.normalize(ctx, col, dim, unit)
	if err != nil {
		return &BuildError{Repository: repo.Name, Column: col.Info.Name, Err: err}
	}

	grid := domain.NewBaseGrid(b.newID(), col.Info.Name, dim, values)
	grid.DataInfo.Source = ds.FileName
	grid.DataInfo.DisplayUnitName = unit
	if err := repo.Add(grid); err != nil {
		return &BuildError{Repository: repo.Name, Column: col.Info.Name, Err: err}
	}
	return nil
}

func (b *Builder) addDependent(ctx context.Context, repo *domain.DataRepository, ds DataSet, col ParsedColumn, class Classification) error {
	grid, ok := repo.Column(class.BaseGridName)
	if !ok || !grid.IsBaseGrid() {
		return &BuildError{
			Repository: repo.Name,
			Column:     col.Info.Name,
			Err:        fmt.Errorf("%w: %q", ErrBaseGridNotFound, class.BaseGridName),
		}
	}

	unit := col.Unit()
	dim := b.dimensionFor(ctx, unit, col.Info.Name)
	values, err := b.normalize(ctx, col, dim, unit)
	if err != nil {
		return &BuildError{Repository: repo.Name, Column: col.Info.Name, Err: err}
	}
	if len(values) != len(grid.Values) {
		return &BuildError{
			Repository: repo.Name,
			Column:     col.Info.Name,
			Err:        fmt.Errorf("%w: %d values, base grid %q has %d", ErrLengthMismatch, len(values), grid.Name, len(grid.Values)),
		}
	}

	if class.Role == RoleAuxiliary {
		ApplyAuxiliaryPolicy(class.AuxiliaryKind, values)
	}

	column := &domain.DataColumn{
		ID:           b.newID(),
		Name:         col.Info.Name,
		Dimension:    dim,
		Values:       values,
		BaseGridName: grid.Name,
		DataInfo: domain.DataInfo{
			Origin:          Origin(class),
			AuxiliaryType:   class.AuxiliaryKind,
			Source:          ds.FileName,
			DisplayUnitName: unit,
		},
	}
	if err := repo.Add(column); err != nil {
		return &BuildError{Repository: repo.Name, Column: col.Info.Name, Err: err}
	}
	return nil
}

// dimensionFor resolves the dimension of a column's unit. An absent or
// unknown unit yields the dimensionless sentinel.
func (b *Builder) dimensionFor(ctx context.Context, unit, column string) *domain.Dimension {
	if unit == "" {
		return b.resolver.NoDimension()
	}
	dim, ok := b.resolver.DimensionForUnit(unit)
	if !ok {
		b.logger.WarnContext(ctx, "unit not found in any dimension, importing without dimension",
			slog.String("column", column),
			slog.String("unit", unit))
		return b.resolver.NoDimension()
	}
	return dim
}

func (b *Builder) normalize(ctx context.Context, col ParsedColumn, dim *domain.Dimension, unit string) ([]float64, error) {
	for _, cell := range col.Cells {
		if !b.normalizer.Resolvable(cell, dim) {
			b.logger.WarnContext(ctx, "cell unit not defined in column dimension, using display unit",
				slog.String("column", col.Info.Name),
				slog.String("unit", cell.Unit),
				slog.String("dimension", dim.Name()))
			break
		}
	}
	return b.normalizer.NormalizeColumn(col.Cells, dim, unit)
}

func repositoryName(ds DataSet) string {
	if ds.Name != "" {
		return ds.Name
	}
	if ds.FileName == "" {
		return ds.SheetName
	}
	base := strings.TrimSuffix(filepath.Base(ds.FileName), filepath.Ext(ds.FileName))
	if ds.SheetName == "" {
		return base
	}
	return base + "." + ds.SheetName
}
