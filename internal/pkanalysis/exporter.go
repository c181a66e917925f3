package pkanalysis

import (
	"fmt"

	"github.com/Yuri05/OSPSuite.Core/internal/exporter"
	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// Exporter writes parameters back to the five column PK-analysis format
type Exporter struct {
	writer   *exporter.CSVWriter
	resolver units.Resolver
}

// NewExporter creates an exporter
func NewExporter(writer *exporter.CSVWriter, resolver units.Resolver) *Exporter {
	return &Exporter{writer: writer, resolver: resolver}
}

// Records renders one row per parameter and individual. displayUnits maps
// a parameter name to the unit its values are written in; parameters
// without an entry are written in their base unit.
func (e *Exporter) Records(params []*domain.QuantityPKParameter, displayUnits map[string]string) ([][]string, error) {
	var records [][]string
	for _, p := range params {
		unit := displayUnit(p, displayUnits)
		for id, base := range p.Values {
			value, err := e.resolver.ConvertBaseToUnit(p.Dimension, unit, base)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", p.ID(), err)
			}
			records = append(records, []string{
				exporter.FormatInt(id),
				p.QuantityPath,
				p.Name,
				exporter.FormatFloat(value),
				unit,
			})
		}
	}
	return records, nil
}

// Export writes params to fileName and returns the written path
func (e *Exporter) Export(params []*domain.QuantityPKParameter, fileName string, displayUnits map[string]string) (string, error) {
	records, err := e.Records(params, displayUnits)
	if err != nil {
		return "", err
	}
	return e.writer.WriteCSV(fileName, exporter.WriteOptions{Headers: Header, Records: records})
}

func displayUnit(p *domain.QuantityPKParameter, displayUnits map[string]string) string {
	if p.Dimension.IsNoDimension() {
		return ""
	}
	if unit, ok := displayUnits[p.Name]; ok && p.Dimension.HasUnit(unit) {
		return unit
	}
	return p.Dimension.BaseUnit().Name
}
