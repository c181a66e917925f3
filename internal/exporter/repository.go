package exporter

import (
	"fmt"

	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// RepositoryExporter writes data repositories as CSV tables, one file per
// repository, with values converted back to each column's display unit.
type RepositoryExporter struct {
	writer   *CSVWriter
	resolver units.Resolver
	bom      bool
}

// NewRepositoryExporter creates an exporter
func NewRepositoryExporter(writer *CSVWriter, resolver units.Resolver) *RepositoryExporter {
	return &RepositoryExporter{writer: writer, resolver: resolver}
}

// WithBOM prefixes exported files with a UTF-8 BOM
func (e *RepositoryExporter) WithBOM(bom bool) *RepositoryExporter {
	e.bom = bom
	return e
}

// ColumnHeader renders "Name [unit]", or just the name without a unit
func ColumnHeader(col *domain.DataColumn) string {
	if col.DataInfo.DisplayUnitName == "" {
		return col.Name
	}
	return fmt.Sprintf("%s [%s]", col.Name, col.DataInfo.DisplayUnitName)
}

// Records renders repo as a header line plus one record per base grid row.
// Only columns sharing the first base grid are written.
func (e *RepositoryExporter) Records(repo *domain.DataRepository) ([]string, [][]string, error) {
	grids := repo.BaseGrids()
	if len(grids) == 0 {
		return nil, nil, fmt.Errorf("repository %q has no base grid", repo.Name)
	}
	grid := grids[0]

	columns := []*domain.DataColumn{grid}
	for _, c := range repo.ObservationColumns() {
		if c.BaseGridName == grid.Name {
			columns = append(columns, c)
		}
	}

	headers := make([]string, len(columns))
	display := make([][]float64, len(columns))
	for i, c := range columns {
		headers[i] = ColumnHeader(c)
		values, err := e.displayValues(c)
		if err != nil {
			return nil, nil, err
		}
		display[i] = values
	}

	records := make([][]string, len(grid.Values))
	for row := range grid.Values {
		record := make([]string, len(columns))
		for i := range columns {
			record[i] = FormatFloat(display[i][row])
		}
		records[row] = record
	}
	return headers, records, nil
}

func (e *RepositoryExporter) displayValues(col *domain.DataColumn) ([]float64, error) {
	unit := col.DataInfo.DisplayUnitName
	if col.Dimension.IsNoDimension() || unit == "" || !col.Dimension.HasUnit(unit) {
		return col.Values, nil
	}
	values := make([]float64, len(col.Values))
	for i, v := range col.Values {
		converted, err := e.resolver.ConvertBaseToUnit(col.Dimension, unit, v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		values[i] = converted
	}
	return values, nil
}

// Export writes repo to fileName and returns the written path
func (e *RepositoryExporter) Export(repo *domain.DataRepository, fileName string) (string, error) {
	headers, records, err := e.Records(repo)
	if err != nil {
		return "", err
	}
	return e.writer.WriteCSV(fileName, WriteOptions{Headers: headers, Records: records, BOMPrefix: e.bom})
}
