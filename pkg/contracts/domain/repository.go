package domain

import (
	"errors"
	"fmt"
)

// Extended property keys written by the import pipeline.
const (
	PropertySourceFile = "source file"
	PropertySheet      = "sheet"
)

var (
	// ErrDuplicateColumn is returned when a column name is already used in a repository
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrColumnNotFound is returned when a named column does not exist
	ErrColumnNotFound = errors.New("column not found")
	// ErrBaseGridNotFound is returned when a dependent column names a missing base grid
	ErrBaseGridNotFound = errors.New("base grid not found")
	// ErrLengthMismatch is returned when a dependent column and its base grid differ in length
	ErrLengthMismatch = errors.New("column length does not match base grid")
)

// ExtendedProperty is one provenance entry. Keys may repeat.
type ExtendedProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DataRepository owns a set of uniquely named columns plus provenance.
type DataRepository struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	ExtendedProperties []ExtendedProperty `json:"extended_properties"`

	columns []*DataColumn
	index   map[string]int
}

// NewDataRepository creates an empty repository
func NewDataRepository(id, name string) *DataRepository {
	return &DataRepository{
		ID:    id,
		Name:  name,
		index: make(map[string]int),
	}
}

// Add appends a column. Names must be unique within the repository.
func (r *DataRepository) Add(col *DataColumn) error {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if _, exists := r.index[col.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
	}
	r.index[col.Name] = len(r.columns)
	r.columns = append(r.columns, col)
	return nil
}

// Column looks up a column by name
func (r *DataRepository) Column(name string) (*DataColumn, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.columns[i], true
}

// Columns returns the columns in insertion order
func (r *DataRepository) Columns() []*DataColumn {
	out := make([]*DataColumn, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns
func (r *DataRepository) Len() int { return len(r.columns) }

// BaseGrids returns the independent-axis columns in insertion order
func (r *DataRepository) BaseGrids() []*DataColumn {
	var grids []*DataColumn
	for _, c := range r.columns {
		if c.IsBaseGrid() {
			grids = append(grids, c)
		}
	}
	return grids
}

// ObservationColumns returns dependent columns, excluding base grids
func (r *DataRepository) ObservationColumns() []*DataColumn {
	var cols []*DataColumn
	for _, c := range r.columns {
		if !c.IsBaseGrid() {
			cols = append(cols, c)
		}
	}
	return cols
}

// BaseGridOf resolves the base grid of a dependent column
func (r *DataRepository) BaseGridOf(col *DataColumn) (*DataColumn, error) {
	if col.IsBaseGrid() {
		return col, nil
	}
	grid, ok := r.Column(col.BaseGridName)
	if !ok || !grid.IsBaseGrid() {
		return nil, fmt.Errorf("%w: %q referenced by %q", ErrBaseGridNotFound, col.BaseGridName, col.Name)
	}
	return grid, nil
}

// AddRelatedColumn registers related as an auxiliary of the column named owner.
// The link is navigational only.
func (r *DataRepository) AddRelatedColumn(owner, related string) error {
	ownerCol, ok := r.Column(owner)
	if !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, owner)
	}
	if _, ok := r.Column(related); !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, related)
	}
	for _, name := range ownerCol.RelatedColumns {
		if name == related {
			return nil
		}
	}
	ownerCol.RelatedColumns = append(ownerCol.RelatedColumns, related)
	return nil
}

// RelatedColumnsOf resolves the auxiliary columns linked to col
func (r *DataRepository) RelatedColumnsOf(col *DataColumn) []*DataColumn {
	related := make([]*DataColumn, 0, len(col.RelatedColumns))
	for _, name := range col.RelatedColumns {
		if c, ok := r.Column(name); ok {
			related = append(related, c)
		}
	}
	return related
}

// AddExtendedProperty appends a provenance entry. Existing entries with the
// same name are kept.
func (r *DataRepository) AddExtendedProperty(name, value string) {
	r.ExtendedProperties = append(r.ExtendedProperties, ExtendedProperty{Name: name, Value: value})
}

// ExtendedProperty returns the most recently added value for name
func (r *DataRepository) ExtendedProperty(name string) (string, bool) {
	for i := len(r.ExtendedProperties) - 1; i >= 0; i-- {
		if r.ExtendedProperties[i].Name == name {
			return r.ExtendedProperties[i].Value, true
		}
	}
	return "", false
}

// ExtendedPropertyValues returns every value stored under name, oldest first
func (r *DataRepository) ExtendedPropertyValues(name string) []string {
	var values []string
	for _, p := range r.ExtendedProperties {
		if p.Name == name {
			values = append(values, p.Value)
		}
	}
	return values
}

// Validate checks that every dependent column resolves its base grid and
// matches its length.
func (r *DataRepository) Validate() error {
	for _, c := range r.columns {
		if c.IsBaseGrid() {
			continue
		}
		grid, err := r.BaseGridOf(c)
		if err != nil {
			return err
		}
		if len(c.Values) != len(grid.Values) {
			return fmt.Errorf("%w: %q has %d values, base grid %q has %d",
				ErrLengthMismatch, c.Name, len(c.Values), grid.Name, len(grid.Values))
		}
	}
	return nil
}
