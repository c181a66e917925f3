package dataimport

import (
	"context"
	"log/slog"

	"github.com/Yuri05/OSPSuite.Core/internal/concurrency"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// Importer builds many datasets in parallel
type Importer struct {
	builder *Builder
	manager *concurrency.Manager
	logger  *slog.Logger
}

// NewImporter creates an importer sharing builder between workers
func NewImporter(builder *Builder, manager *concurrency.Manager, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		builder: builder,
		manager: manager,
		logger:  logger.With(slog.String("component", "importer")),
	}
}

// ImportDataSets builds every dataset and returns the repositories in input
// order. The batch is all-or-nothing: the first build error is returned.
func (im *Importer) ImportDataSets(ctx context.Context, sets []DataSet) ([]*domain.DataRepository, error) {
	indices := make([]int, len(sets))
	for i := range sets {
		indices[i] = i
	}

	built, err := concurrency.Run(ctx, im.manager, 0, indices,
		func(ctx context.Context, slot int, i int) (*domain.DataRepository, error) {
			return im.builder.Build(ctx, sets[i])
		})
	if err != nil {
		return nil, err
	}

	repos := make([]*domain.DataRepository, len(sets))
	for i := range sets {
		repos[i] = built[i]
	}
	im.logger.InfoContext(ctx, "datasets imported", slog.Int("repositories", len(repos)))
	return repos, nil
}
