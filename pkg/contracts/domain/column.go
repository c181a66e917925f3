package domain

import "math"

// AuxiliaryKind tags the deviation type of an error column.
type AuxiliaryKind string

const (
	AuxiliaryNone             AuxiliaryKind = ""
	AuxiliaryArithmeticStdDev AuxiliaryKind = "ArithmeticStdDev"
	AuxiliaryGeometricStdDev  AuxiliaryKind = "GeometricStdDev"
)

// IsDeviation reports whether k names a resolved deviation kind
func (k AuxiliaryKind) IsDeviation() bool {
	return k == AuxiliaryArithmeticStdDev || k == AuxiliaryGeometricStdDev
}

// ColumnOrigin is used downstream to filter observed data columns.
type ColumnOrigin string

const (
	OriginUndefined            ColumnOrigin = "Undefined"
	OriginBaseGrid             ColumnOrigin = "BaseGrid"
	OriginObservation          ColumnOrigin = "Observation"
	OriginObservationAuxiliary ColumnOrigin = "ObservationAuxiliary"
)

// ColumnInfo is the static, per-session descriptor of an imported column.
type ColumnInfo struct {
	Name            string        `json:"name" yaml:"name" validate:"required"`
	IsBase          bool          `json:"is_base" yaml:"is_base"`
	IsAuxiliary     bool          `json:"is_auxiliary" yaml:"is_auxiliary"`
	BaseGridName    string        `json:"base_grid_name,omitempty" yaml:"base_grid_name" validate:"required_unless=IsBase true"`
	RelatedColumnOf string        `json:"related_column_of,omitempty" yaml:"related_column_of"`
	ErrorDeviation  AuxiliaryKind `json:"error_deviation,omitempty" yaml:"error_deviation" validate:"omitempty,oneof=ArithmeticStdDev GeometricStdDev"`
	DisplayUnit     string        `json:"display_unit,omitempty" yaml:"display_unit"`
}

// RawCell is one tokenized cell as produced by a file reader.
// Absent marks a null cell; NaN in Measurement or LLOQ means "not given".
type RawCell struct {
	Measurement float64 `json:"measurement"`
	Unit        string  `json:"unit,omitempty"`
	LLOQ        float64 `json:"lloq"`
	Absent      bool    `json:"absent,omitempty"`
}

// NewCell returns a cell with a measurement and no censoring limit
func NewCell(value float64, unit string) RawCell {
	return RawCell{Measurement: value, Unit: unit, LLOQ: math.NaN()}
}

// NewCensoredCell returns a cell carrying an LLOQ
func NewCensoredCell(value, lloq float64, unit string) RawCell {
	return RawCell{Measurement: value, Unit: unit, LLOQ: lloq}
}

// AbsentCell returns a null cell
func AbsentCell() RawCell {
	return RawCell{Measurement: math.NaN(), LLOQ: math.NaN(), Absent: true}
}

// DataInfo holds classification and provenance of a column.
type DataInfo struct {
	Origin          ColumnOrigin  `json:"origin"`
	AuxiliaryType   AuxiliaryKind `json:"auxiliary_type,omitempty"`
	Source          string        `json:"source,omitempty"`
	DisplayUnitName string        `json:"display_unit_name"`
}

// DataColumn is an ordered sequence of base-unit values. BaseGridName and
// RelatedColumns are names resolved against the owning repository.
type DataColumn struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Dimension      *Dimension `json:"-"`
	Values         []float64  `json:"values"`
	BaseGridName   string     `json:"base_grid_name,omitempty"`
	DataInfo       DataInfo   `json:"data_info"`
	RelatedColumns []string   `json:"related_columns,omitempty"`
}

// NewBaseGrid creates an independent-axis column
func NewBaseGrid(id, name string, dim *Dimension, values []float64) *DataColumn {
	return &DataColumn{
		ID:        id,
		Name:      name,
		Dimension: dim,
		Values:    values,
		DataInfo:  DataInfo{Origin: OriginBaseGrid},
	}
}

// IsBaseGrid reports whether the column is an independent axis
func (c *DataColumn) IsBaseGrid() bool {
	return c.BaseGridName == "" && c.DataInfo.Origin == OriginBaseGrid
}

// Len returns the number of values
func (c *DataColumn) Len() int { return len(c.Values) }

// DimensionName returns the dimension name, or the dimensionless name when unset
func (c *DataColumn) DimensionName() string {
	return c.Dimension.String()
}
