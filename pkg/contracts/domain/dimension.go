package domain

import "math"

// NoDimensionName is the name of the dimension used for values without a physical unit.
const NoDimensionName = "Dimensionless"

// Unit is a named unit of a dimension. A value v expressed in this unit is
// (v + Offset) * Factor in the dimension's base unit.
type Unit struct {
	Name   string  `json:"name" yaml:"name"`
	Factor float64 `json:"factor" yaml:"factor"`
	Offset float64 `json:"offset,omitempty" yaml:"offset"`
}

// Dimension identifies a physical quantity kind and the units it can be
// expressed in. Dimensions are immutable once created.
type Dimension struct {
	name     string
	baseUnit string
	units    []Unit
	byName   map[string]int
}

// NoDimension is the sentinel for quantities without a physical dimension.
// Its single unit has an empty name and values pass through unchanged.
var NoDimension = NewDimension(NoDimensionName, "", Unit{Name: "", Factor: 1})

// NewDimension creates a dimension. The base unit must be one of the given
// units; if it is missing it is added with factor 1.
func NewDimension(name, baseUnit string, units ...Unit) *Dimension {
	d := &Dimension{
		name:     name,
		baseUnit: baseUnit,
		byName:   make(map[string]int, len(units)+1),
	}
	for _, u := range units {
		if u.Factor == 0 {
			u.Factor = 1
		}
		if _, exists := d.byName[u.Name]; exists {
			continue
		}
		d.byName[u.Name] = len(d.units)
		d.units = append(d.units, u)
	}
	if _, ok := d.byName[baseUnit]; !ok {
		d.byName[baseUnit] = len(d.units)
		d.units = append(d.units, Unit{Name: baseUnit, Factor: 1})
	}
	return d
}

// NewUserDefinedDimension creates a dimension with a single unit that is
// also its base unit. Values are assumed to be stored in that unit already.
func NewUserDefinedDimension(unit string) *Dimension {
	return NewDimension(unit, unit, Unit{Name: unit, Factor: 1})
}

// Name returns the dimension name
func (d *Dimension) Name() string { return d.name }

// BaseUnit returns the canonical unit all values are stored in
func (d *Dimension) BaseUnit() Unit {
	return d.units[d.byName[d.baseUnit]]
}

// IsNoDimension reports whether d is the dimensionless sentinel
func (d *Dimension) IsNoDimension() bool {
	return d == nil || d == NoDimension
}

// Unit looks up a unit by name
func (d *Dimension) Unit(name string) (Unit, bool) {
	i, ok := d.byName[name]
	if !ok {
		return Unit{}, false
	}
	return d.units[i], true
}

// HasUnit reports whether the dimension defines a unit with the given name
func (d *Dimension) HasUnit(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Units returns a copy of the units in declaration order
func (d *Dimension) Units() []Unit {
	out := make([]Unit, len(d.units))
	copy(out, d.units)
	return out
}

// UnitNames returns the unit names in declaration order
func (d *Dimension) UnitNames() []string {
	names := make([]string, len(d.units))
	for i, u := range d.units {
		names[i] = u.Name
	}
	return names
}

// UnitValueToBaseUnitValue converts a value expressed in unit to the base unit.
func (d *Dimension) UnitValueToBaseUnitValue(unit Unit, value float64) float64 {
	if math.IsNaN(value) {
		return value
	}
	return (value + unit.Offset) * unit.Factor
}

// BaseUnitValueToUnitValue converts a base unit value to unit.
func (d *Dimension) BaseUnitValueToUnitValue(unit Unit, value float64) float64 {
	if math.IsNaN(value) {
		return value
	}
	return value/unit.Factor - unit.Offset
}

// String implements fmt.Stringer
func (d *Dimension) String() string {
	if d == nil {
		return NoDimensionName
	}
	return d.name
}
