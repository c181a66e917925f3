package pkanalysis

import (
	"context"

	"github.com/Yuri05/OSPSuite.Core/internal/concurrency"
	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// ImportFiles imports every path in parallel. Each file succeeds or fails
// on its own; failures are recorded in log and the file is absent from the
// result. Only cancellation fails the whole batch.
func (im *Importer) ImportFiles(ctx context.Context, m *concurrency.Manager, paths []string, log *apperrors.ImportLog) (map[string][]*domain.QuantityPKParameter, error) {
	results, err := concurrency.Run(ctx, m, 0, paths,
		func(ctx context.Context, slot int, path string) ([]*domain.QuantityPKParameter, error) {
			return im.ImportFile(ctx, path, log), nil
		})
	if err != nil {
		return nil, err
	}

	for path, params := range results {
		if params == nil {
			delete(results, path)
		}
	}
	return results, nil
}
