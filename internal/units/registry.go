package units

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v2"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	// ErrUnknownUnit is returned when no dimension defines a unit
	ErrUnknownUnit = errors.New("could not find dimension with unit")
	// ErrUnitNotInDimension is returned when a unit is not part of the requested dimension
	ErrUnitNotInDimension = errors.New("unit is not defined in dimension")
	// ErrUnknownDimension is returned for an unknown dimension name
	ErrUnknownDimension = errors.New("unknown dimension")
)

// Resolver resolves unit names to dimensions and converts between a unit
// and the base unit of a dimension. Implementations must be safe for
// concurrent reads.
type Resolver interface {
	DimensionForUnit(unit string) (*domain.Dimension, bool)
	NoDimension() *domain.Dimension
	Dimension(name string) (*domain.Dimension, bool)
	ConvertUnitToBase(dim *domain.Dimension, unit string, value float64) (float64, error)
	ConvertBaseToUnit(dim *domain.Dimension, unit string, value float64) (float64, error)
}

type catalogFile struct {
	Dimensions []struct {
		Name     string        `yaml:"name"`
		BaseUnit string        `yaml:"base_unit"`
		Units    []domain.Unit `yaml:"units"`
	} `yaml:"dimensions"`
}

// Registry is the catalog backed Resolver. It is immutable after loading.
type Registry struct {
	dimensions []*domain.Dimension
	byName     map[string]*domain.Dimension
	byUnit     map[string]*domain.Dimension
}

var _ Resolver = (*Registry)(nil)

// NewRegistry loads the embedded catalog
func NewRegistry() (*Registry, error) {
	return LoadRegistry(bytes.NewReader(defaultCatalog))
}

// MustNewRegistry loads the embedded catalog and panics on failure
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// LoadRegistry reads a YAML catalog
func LoadRegistry(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read unit catalog", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.NewConfigError("failed to parse unit catalog", err)
	}

	reg := &Registry{
		byName: make(map[string]*domain.Dimension),
		byUnit: make(map[string]*domain.Dimension),
	}
	for _, d := range file.Dimensions {
		if d.Name == "" {
			return nil, apperrors.NewConfigError("unit catalog contains a dimension without name", nil)
		}
		if _, dup := reg.byName[d.Name]; dup {
			return nil, apperrors.NewConfigError(fmt.Sprintf("dimension %q declared twice", d.Name), nil)
		}
		dim := domain.NewDimension(d.Name, d.BaseUnit, d.Units...)
		reg.dimensions = append(reg.dimensions, dim)
		reg.byName[dim.Name()] = dim
		for _, u := range dim.Units() {
			// the empty unit always resolves to NoDimension
			if u.Name == "" {
				continue
			}
			if _, taken := reg.byUnit[u.Name]; !taken {
				reg.byUnit[u.Name] = dim
			}
		}
	}
	return reg, nil
}

// DimensionForUnit returns the first dimension that defines unit. The empty
// unit resolves to NoDimension.
func (r *Registry) DimensionForUnit(unit string) (*domain.Dimension, bool) {
	if unit == "" {
		return domain.NoDimension, true
	}
	dim, ok := r.byUnit[unit]
	return dim, ok
}

// LookupUnit is DimensionForUnit returning a dimension error for unknown units
func (r *Registry) LookupUnit(unit string) (*domain.Dimension, error) {
	dim, ok := r.DimensionForUnit(unit)
	if !ok {
		return nil, apperrors.NewDimensionError("could not resolve unit", fmt.Errorf("%w %q", ErrUnknownUnit, unit)).
			WithContext("unit", unit)
	}
	return dim, nil
}

// NoDimension returns the dimensionless sentinel
func (r *Registry) NoDimension() *domain.Dimension {
	return domain.NoDimension
}

// Dimension looks up a dimension by name
func (r *Registry) Dimension(name string) (*domain.Dimension, bool) {
	if name == domain.NoDimensionName {
		return domain.NoDimension, true
	}
	dim, ok := r.byName[name]
	return dim, ok
}

// Dimensions returns all catalog dimensions in declaration order
func (r *Registry) Dimensions() []*domain.Dimension {
	out := make([]*domain.Dimension, len(r.dimensions))
	copy(out, r.dimensions)
	return out
}

// AllDimensionNames returns the sorted names of all catalog dimensions
func (r *Registry) AllDimensionNames() []string {
	names := make([]string, 0, len(r.dimensions))
	for _, d := range r.dimensions {
		names = append(names, d.Name())
	}
	sort.Strings(names)
	return names
}

// UnitFor resolves a unit of dim. NoDimension accepts any unit name.
func (r *Registry) UnitFor(dim *domain.Dimension, unit string) (domain.Unit, error) {
	return unitFor(dim, unit)
}

func unitFor(dim *domain.Dimension, unit string) (domain.Unit, error) {
	if dim.IsNoDimension() {
		return domain.Unit{Name: unit, Factor: 1}, nil
	}
	u, ok := dim.Unit(unit)
	if !ok {
		return domain.Unit{}, apperrors.NewDimensionError("unit conversion failed",
			fmt.Errorf("%w: %q not in %q", ErrUnitNotInDimension, unit, dim.Name())).
			WithContext("unit", unit).
			WithContext("dimension", dim.Name())
	}
	return u, nil
}

// ConvertUnitToBase converts value from unit to the base unit of dim.
// Values of NoDimension pass through verbatim.
func (r *Registry) ConvertUnitToBase(dim *domain.Dimension, unit string, value float64) (float64, error) {
	if dim.IsNoDimension() {
		return value, nil
	}
	u, err := unitFor(dim, unit)
	if err != nil {
		return 0, err
	}
	return dim.UnitValueToBaseUnitValue(u, value), nil
}

// ConvertBaseToUnit converts a base unit value of dim to unit
func (r *Registry) ConvertBaseToUnit(dim *domain.Dimension, unit string, value float64) (float64, error) {
	if dim.IsNoDimension() {
		return value, nil
	}
	u, err := unitFor(dim, unit)
	if err != nil {
		return 0, err
	}
	return dim.BaseUnitValueToUnitValue(u, value), nil
}

// ConvertToUnit converts base unit values of dim to unit
func (r *Registry) ConvertToUnit(dim *domain.Dimension, unit string, values ...float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		converted, err := r.ConvertBaseToUnit(dim, unit, v)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

// CreateUserDefinedDimension returns a single-unit dimension for a unit
// that is not part of the catalog.
func (r *Registry) CreateUserDefinedDimension(unit string) *domain.Dimension {
	return domain.NewUserDefinedDimension(unit)
}
