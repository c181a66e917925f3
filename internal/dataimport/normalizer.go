package dataimport

import (
	"math"

	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// TruncateUsingLLOQ applies the below-quantification policy. The result is
// expressed in the cell's unit.
func TruncateUsingLLOQ(cell domain.RawCell) float64 {
	if cell.Absent {
		return math.NaN()
	}
	if math.IsNaN(cell.LLOQ) {
		return cell.Measurement
	}
	if math.IsNaN(cell.Measurement) || cell.Measurement < cell.LLOQ {
		return cell.LLOQ / 2
	}
	return cell.Measurement
}

// Normalizer converts raw cells to base unit values
type Normalizer struct {
	resolver units.Resolver
}

// NewNormalizer creates a normalizer backed by resolver
func NewNormalizer(resolver units.Resolver) *Normalizer {
	return &Normalizer{resolver: resolver}
}

// Normalize applies the LLOQ policy and converts the result to the base
// unit of dim. The cell's own unit takes precedence over displayUnit. When
// the unit is not defined in dim, or dim is dimensionless, the value is
// passed through unconverted.
func (n *Normalizer) Normalize(cell domain.RawCell, dim *domain.Dimension, displayUnit string) (float64, error) {
	value := TruncateUsingLLOQ(cell)
	if math.IsNaN(value) || dim.IsNoDimension() {
		return value, nil
	}

	unit := n.conversionUnit(cell, dim, displayUnit)
	if unit == "" {
		return value, nil
	}
	return n.resolver.ConvertUnitToBase(dim, unit, value)
}

// conversionUnit picks the unit a cell value is expressed in, or "" when
// none is resolvable for dim.
func (n *Normalizer) conversionUnit(cell domain.RawCell, dim *domain.Dimension, displayUnit string) string {
	if cell.Unit != "" && dim.HasUnit(cell.Unit) {
		return cell.Unit
	}
	if displayUnit != "" && dim.HasUnit(displayUnit) {
		return displayUnit
	}
	return ""
}

// Resolvable reports whether the cell's own unit, if any, is defined in dim
func (n *Normalizer) Resolvable(cell domain.RawCell, dim *domain.Dimension) bool {
	return cell.Unit == "" || dim.IsNoDimension() || dim.HasUnit(cell.Unit)
}

// NormalizeColumn normalizes every cell of a column in order
func (n *Normalizer) NormalizeColumn(cells []domain.RawCell, dim *domain.Dimension, displayUnit string) ([]float64, error) {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := n.Normalize(cell, dim, displayUnit)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ApplyAuxiliaryPolicy replaces physically invalid deviations with NaN in
// place: negative arithmetic deviations and geometric deviations below 1.
func ApplyAuxiliaryPolicy(kind domain.AuxiliaryKind, values []float64) {
	for i, v := range values {
		switch kind {
		case domain.AuxiliaryArithmeticStdDev:
			if v < 0 {
				values[i] = math.NaN()
			}
		case domain.AuxiliaryGeometricStdDev:
			if v < 1 {
				values[i] = math.NaN()
			}
		}
	}
}
