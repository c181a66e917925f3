package pkanalysis

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// Column positions of the PK-analysis format
const (
	colIndividualID = iota
	colQuantityPath
	colParameter
	colValue
	colUnit
	columnCount
)

// Header of exported PK-analysis files
var Header = []string{"IndividualId", "QuantityPath", "Parameter", "Value", "Unit"}

var (
	// ErrInvalidHeader is returned when the header line does not look like a PK-analysis header
	ErrInvalidHeader = errors.New("invalid PK-analysis header")
	// ErrInvalidRow is returned for a malformed data row
	ErrInvalidRow = errors.New("invalid PK-analysis row")
)

// maxIndividualsPerRow bounds how sparse the individual ids of one
// parameter may be: ids beyond rows*maxIndividualsPerRow are rejected.
const maxIndividualsPerRow = 1000

type pendingValue struct {
	individualID int
	value        float64
}

// aggregation is the per-call state of one import pass
type aggregation struct {
	order      []string
	parameters map[string]*domain.QuantityPKParameter
	pending    map[string][]pendingValue
	maxID      map[string]int
}

// Importer reads PK-analysis CSV files into QuantityPKParameters. It holds
// no per-call state and can be shared by concurrent workers.
type Importer struct {
	resolver  units.Resolver
	delimiter rune
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewImporter creates an importer for comma separated files
func NewImporter(resolver units.Resolver, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		resolver:  resolver,
		delimiter: ',',
		logger:    logger.With(slog.String("component", "pk_importer")),
		tracer:    otel.Tracer("github.com/Yuri05/OSPSuite.Core/internal/pkanalysis"),
	}
}

// WithDelimiter returns a copy of the importer using delimiter
func (im *Importer) WithDelimiter(delimiter rune) *Importer {
	clone := *im
	clone.delimiter = delimiter
	return &clone
}

// ImportFile imports the file at path. See Import.
func (im *Importer) ImportFile(ctx context.Context, path string, log *apperrors.ImportLog) []*domain.QuantityPKParameter {
	file, err := os.Open(path)
	if err != nil {
		log.AddError(path, apperrors.NewImportError("failed to open PK-analysis file", err))
		return nil
	}
	defer file.Close()
	return im.Import(ctx, file, path, log)
}

// Import reads every row from r and returns the parameters in order of first
// appearance. Import is all-or-nothing: on any error the error is added to
// log under source and nil is returned.
func (im *Importer) Import(ctx context.Context, r io.Reader, source string, log *apperrors.ImportLog) []*domain.QuantityPKParameter {
	ctx, span := im.tracer.Start(ctx, "pkanalysis.Import", trace.WithAttributes(attribute.String("source", source)))
	defer span.End()

	params, err := im.aggregate(ctx, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		im.logger.WarnContext(ctx, "PK-analysis import failed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		log.AddError(source, err)
		return nil
	}

	span.SetAttributes(attribute.Int("parameters", len(params)))
	im.logger.DebugContext(ctx, "PK-analysis imported",
		slog.String("source", source),
		slog.Int("parameters", len(params)))
	return params
}

func (im *Importer) aggregate(ctx context.Context, r io.Reader) ([]*domain.QuantityPKParameter, error) {
	reader := csv.NewReader(r)
	reader.Comma = im.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewParsingError("PK-analysis file is empty", ErrInvalidHeader)
		}
		return nil, apperrors.NewParsingError("failed to read PK-analysis header", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	agg := &aggregation{
		parameters: make(map[string]*domain.QuantityPKParameter),
		pending:    make(map[string][]pendingValue),
		maxID:      make(map[string]int),
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read line %d", line), err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		if err := im.addRow(agg, record, line); err != nil {
			return nil, err
		}
	}

	return agg.finalize()
}

// validateHeader rejects headers with fewer than five fields and headerless
// files whose first line starts with a number.
func validateHeader(header []string) error {
	if len(header) < columnCount {
		return apperrors.NewParsingError(
			fmt.Sprintf("header has %d columns, expected %d", len(header), columnCount), ErrInvalidHeader)
	}
	first := strings.TrimPrefix(strings.TrimSpace(header[colIndividualID]), "\ufeff")
	if _, err := strconv.ParseFloat(first, 64); err == nil {
		return apperrors.NewParsingError(
			fmt.Sprintf("first header field %q is numeric", first), ErrInvalidHeader)
	}
	return nil
}

func (im *Importer) addRow(agg *aggregation, record []string, line int) error {
	if len(record) < columnCount {
		return apperrors.NewParsingError(
			fmt.Sprintf("line %d has %d fields, expected %d", line, len(record), columnCount), ErrInvalidRow)
	}

	idText := strings.TrimSpace(record[colIndividualID])
	id, err := strconv.Atoi(idText)
	if err != nil || id < 0 {
		return apperrors.NewParsingError(
			fmt.Sprintf("line %d: invalid individual id %q", line, idText), ErrInvalidRow)
	}

	valueText := strings.TrimSpace(record[colValue])
	value, err := strconv.ParseFloat(valueText, 64)
	if err != nil {
		return apperrors.NewParsingError(
			fmt.Sprintf("line %d: invalid value %q", line, valueText), ErrInvalidRow)
	}

	path := strings.TrimSpace(record[colQuantityPath])
	name := strings.TrimSpace(record[colParameter])
	unit := strings.TrimSpace(record[colUnit])
	key := domain.PKParameterID(path, name)

	param, seen := agg.parameters[key]
	if !seen {
		dim, err := im.dimensionForUnit(unit)
		if err != nil {
			return err
		}
		param = domain.NewQuantityPKParameter(path, name, dim)
		agg.parameters[key] = param
		agg.order = append(agg.order, key)
		agg.maxID[key] = -1
	}

	base, err := im.resolver.ConvertUnitToBase(param.Dimension, unit, value)
	if err != nil {
		return err
	}

	agg.pending[key] = append(agg.pending[key], pendingValue{individualID: id, value: base})
	agg.maxID[key] = max(agg.maxID[key], id)
	return nil
}

func (im *Importer) dimensionForUnit(unit string) (*domain.Dimension, error) {
	if unit == "" {
		return im.resolver.NoDimension(), nil
	}
	dim, ok := im.resolver.DimensionForUnit(unit)
	if !ok {
		return nil, apperrors.NewDimensionError("could not resolve unit",
			fmt.Errorf("%w %q", units.ErrUnknownUnit, unit)).WithContext("unit", unit)
	}
	return dim, nil
}

func (agg *aggregation) finalize() ([]*domain.QuantityPKParameter, error) {
	out := make([]*domain.QuantityPKParameter, 0, len(agg.order))
	for _, key := range agg.order {
		param := agg.parameters[key]
		rows := len(agg.pending[key])
		if agg.maxID[key] >= rows*maxIndividualsPerRow {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("parameter %s: individual id %d is out of range for %d rows", key, agg.maxID[key], rows),
				ErrInvalidRow)
		}
		param.SetNumberOfIndividuals(agg.maxID[key] + 1)
		for _, p := range agg.pending[key] {
			if err := param.SetValue(p.individualID, p.value); err != nil {
				return nil, err
			}
		}
		out = append(out, param)
	}
	return out, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
