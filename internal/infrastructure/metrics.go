package infrastructure

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Yuri05/OSPSuite.Core/internal/concurrency"
)

// ImportMetrics holds the pipeline counters. It also observes worker pools.
type ImportMetrics struct {
	ItemsProcessed       metric.Int64Counter
	ItemDuration         metric.Float64Histogram
	RepositoriesBuilt    metric.Int64Counter
	PKParametersImported metric.Int64Counter
	PartitionsWritten    metric.Int64Counter
	ImportErrors         metric.Int64Counter
}

var _ concurrency.Observer = (*ImportMetrics)(nil)

// NewImportMetrics creates the instruments on meter, or on the global
// meter when nil
func NewImportMetrics(meter metric.Meter) (*ImportMetrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}

	var m ImportMetrics
	var err error
	if m.ItemsProcessed, err = meter.Int64Counter(
		"ospsuite_items_processed",
		metric.WithDescription("Work items processed by worker pools"),
	); err != nil {
		return nil, err
	}
	if m.ItemDuration, err = meter.Float64Histogram(
		"ospsuite_item_duration",
		metric.WithDescription("Time spent on one work item"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.RepositoriesBuilt, err = meter.Int64Counter(
		"ospsuite_repositories_built",
		metric.WithDescription("Observed-data repositories built"),
	); err != nil {
		return nil, err
	}
	if m.PKParametersImported, err = meter.Int64Counter(
		"ospsuite_pk_parameters_imported",
		metric.WithDescription("PK parameters imported from PK-analysis files"),
	); err != nil {
		return nil, err
	}
	if m.PartitionsWritten, err = meter.Int64Counter(
		"ospsuite_population_partitions_written",
		metric.WithDescription("Population partition files written"),
	); err != nil {
		return nil, err
	}
	if m.ImportErrors, err = meter.Int64Counter(
		"ospsuite_import_errors",
		metric.WithDescription("Import log entries with error severity"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// ItemProcessed implements concurrency.Observer
func (m *ImportMetrics) ItemProcessed(ctx context.Context, elapsed time.Duration, err error) {
	status := "success"
	switch {
	case errors.Is(err, concurrency.ErrCancelled), errors.Is(err, context.Canceled):
		status = "cancelled"
	case err != nil:
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.ItemsProcessed.Add(ctx, 1, attrs)
	m.ItemDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// AddRepositories counts built repositories
func (m *ImportMetrics) AddRepositories(ctx context.Context, n int) {
	m.RepositoriesBuilt.Add(ctx, int64(n))
}

// AddPKParameters counts imported PK parameters of one file
func (m *ImportMetrics) AddPKParameters(ctx context.Context, file string, n int) {
	m.PKParametersImported.Add(ctx, int64(n), metric.WithAttributes(attribute.String("file", file)))
}

// AddPartitions counts written population partitions
func (m *ImportMetrics) AddPartitions(ctx context.Context, n int) {
	m.PartitionsWritten.Add(ctx, int64(n))
}

// AddErrors counts import errors by kind
func (m *ImportMetrics) AddErrors(ctx context.Context, kind string, n int) {
	if n == 0 {
		return
	}
	m.ImportErrors.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}
