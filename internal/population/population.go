package population

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/exporter"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// Read parses a population CSV whose first column holds individual ids.
func Read(r io.Reader) (*domain.Population, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read population", err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, apperrors.NewParsingError("population file has no header", nil)
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	pop := &domain.Population{Headers: append([]string(nil), header[1:]...)}
	for _, rec := range records[1:] {
		pop.IDs = append(pop.IDs, rec[0])
		pop.Rows = append(pop.Rows, append([]string(nil), rec[1:]...))
	}
	return pop, nil
}

// ReadFile reads the population file at path
func ReadFile(path string) (*domain.Population, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("population file %s", path)).WithContext("error", err.Error())
	}
	defer file.Close()
	return Read(file)
}

// Partition is a contiguous range [From, To) of individuals
type Partition struct {
	From int
	To   int
}

// Len returns the number of individuals in the partition
func (p Partition) Len() int { return p.To - p.From }

// Split divides count individuals into parts contiguous ranges. The first
// count%parts ranges receive one extra individual; trailing ranges are empty
// when parts exceeds count.
func Split(count, parts int) []Partition {
	if parts < 1 {
		parts = 1
	}
	size, extra := count/parts, count%parts
	out := make([]Partition, parts)
	from := 0
	for i := range out {
		n := size
		if i < extra {
			n++
		}
		out[i] = Partition{From: from, To: from + n}
		from += n
	}
	return out
}

// Splitter writes population partitions for parallel simulation
type Splitter struct {
	logger *slog.Logger
}

// NewSplitter creates a splitter
func NewSplitter(logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{logger: logger.With(slog.String("component", "population_splitter"))}
}

// SplitFile reads the population at path and writes one file per non-empty
// partition to outDir, named {baseName}_{i}.csv with i starting at 1. It
// returns only the paths actually written.
func (s *Splitter) SplitFile(ctx context.Context, path string, cores int, outDir, baseName string) ([]string, error) {
	pop, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.Split(ctx, pop, cores, outDir, baseName)
}

// Split writes the partitions of pop. See SplitFile.
func (s *Splitter) Split(ctx context.Context, pop *domain.Population, cores int, outDir, baseName string) ([]string, error) {
	writer := exporter.NewCSVWriter(outDir, s.logger)

	var written []string
	for i, part := range Split(pop.Count(), cores) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if part.Len() == 0 {
			continue
		}

		slice := pop.Slice(part.From, part.To)
		records := slice.Records()
		fileName := fmt.Sprintf("%s_%d.csv", baseName, i+1)
		path, err := writer.WriteCSV(fileName, exporter.WriteOptions{Headers: records[0], Records: records[1:]})
		if err != nil {
			return nil, apperrors.NewStorageError("failed to write population partition", err).
				WithContext("file", filepath.Join(outDir, fileName))
		}
		written = append(written, path)
	}

	s.logger.InfoContext(ctx, "population split",
		slog.Int("individuals", pop.Count()),
		slog.Int("requested", cores),
		slog.Int("files", len(written)))
	return written, nil
}
