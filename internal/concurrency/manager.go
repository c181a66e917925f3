package concurrency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrCancelled is returned when the context is done before all items were
// started. It is distinct from a worker failure.
var ErrCancelled = errors.New("operation cancelled")

// WorkerFunc transforms one item. slot identifies the worker goroutine
// (0 <= slot < effective worker count) and can index per-worker state.
type WorkerFunc[T comparable, R any] func(ctx context.Context, slot int, item T) (R, error)

// Observer receives one notification per processed item
type Observer interface {
	ItemProcessed(ctx context.Context, elapsed time.Duration, err error)
}

// Manager carries the parallelism settings shared by every Run.
type Manager struct {
	maxDegree int
	logger    *slog.Logger
	tracer    trace.Tracer
	observer  Observer
}

// DefaultMaxDegreeOfParallelism keeps one core free for the caller.
func DefaultMaxDegreeOfParallelism() int {
	return max(1, runtime.NumCPU()-1)
}

// NewManager creates a manager. maxDegree <= 0 selects the default.
func NewManager(maxDegree int, logger *slog.Logger) *Manager {
	if maxDegree <= 0 {
		maxDegree = DefaultMaxDegreeOfParallelism()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		maxDegree: maxDegree,
		logger:    logger.With(slog.String("component", "concurrency")),
		tracer:    otel.Tracer("github.com/Yuri05/OSPSuite.Core/internal/concurrency"),
	}
}

// MaxDegreeOfParallelism returns the configured worker cap
func (m *Manager) MaxDegreeOfParallelism() int { return m.maxDegree }

// SetObserver registers an observer for processed items
func (m *Manager) SetObserver(o Observer) { m.observer = o }

// Workers normalizes a requested worker count: values <= 0 select the
// manager default, and the result never exceeds itemCount.
func (m *Manager) Workers(requested, itemCount int) int {
	if requested <= 0 {
		requested = m.maxDegree
	}
	return max(0, min(requested, itemCount))
}

// Run applies fn to every item using at most maxWorkers goroutines pulling
// from a shared queue. The result is keyed by item; equal items share one
// entry and the last one to finish wins, so callers needing a result per
// item must pass unique items.
//
// The context is checked before each item. Once it is done no further item
// starts and Run returns ErrCancelled. A worker error cancels the remaining
// work and the first error is returned. No partial results are returned on
// failure.
func Run[T comparable, R any](ctx context.Context, m *Manager, maxWorkers int, items []T, fn WorkerFunc[T, R]) (map[T]R, error) {
	if m == nil {
		m = NewManager(0, nil)
	}
	results := make(map[T]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	workers := m.Workers(maxWorkers, len(items))
	ctx, span := m.tracer.Start(ctx, "concurrency.Run", trace.WithAttributes(
		attribute.Int("items", len(items)),
		attribute.Int("workers", workers),
	))
	defer span.End()

	queue := make(chan T, len(items))
	for _, item := range items {
		queue <- item
	}
	close(queue)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for slot := 0; slot < workers; slot++ {
		slot := slot
		g.Go(func() error {
			for item := range queue {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("%w: %w", ErrCancelled, err)
				}
				// a sibling failed; its error is already recorded
				if gctx.Err() != nil {
					return gctx.Err()
				}

				start := time.Now()
				result, err := fn(gctx, slot, item)
				if m.observer != nil {
					m.observer.ItemProcessed(ctx, time.Since(start), err)
				}
				if err != nil {
					return err
				}

				mu.Lock()
				results[item] = result
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) && !errors.Is(err, ErrCancelled) {
			err = fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, ErrCancelled) {
			m.logger.InfoContext(ctx, "run cancelled", slog.Int("items", len(items)))
		} else {
			m.logger.ErrorContext(ctx, "run failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	m.logger.DebugContext(ctx, "run completed",
		slog.Int("items", len(items)),
		slog.Int("workers", workers),
		slog.Int("results", len(results)))
	return results, nil
}
