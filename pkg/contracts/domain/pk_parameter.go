package domain

import (
	"fmt"
	"math"
)

// PKParameterID builds the composite identity of a PK parameter.
func PKParameterID(quantityPath, name string) string {
	return quantityPath + "|" + name
}

// QuantityPKParameter holds one PK parameter of one quantity for every
// individual of a population. Values are in the dimension's base unit.
type QuantityPKParameter struct {
	QuantityPath string     `json:"quantity_path"`
	Name         string     `json:"name"`
	Dimension    *Dimension `json:"-"`
	Values       []float64  `json:"values"`
}

// NewQuantityPKParameter creates an empty parameter
func NewQuantityPKParameter(quantityPath, name string, dim *Dimension) *QuantityPKParameter {
	return &QuantityPKParameter{QuantityPath: quantityPath, Name: name, Dimension: dim}
}

// ID returns the composite identity
func (p *QuantityPKParameter) ID() string {
	return PKParameterID(p.QuantityPath, p.Name)
}

// SetNumberOfIndividuals resizes the value array and fills it with NaN.
func (p *QuantityPKParameter) SetNumberOfIndividuals(n int) {
	p.Values = make([]float64, n)
	for i := range p.Values {
		p.Values[i] = math.NaN()
	}
}

// SetValue stores the value of an individual
func (p *QuantityPKParameter) SetValue(individualID int, value float64) error {
	if individualID < 0 || individualID >= len(p.Values) {
		return fmt.Errorf("individual %d out of range [0,%d)", individualID, len(p.Values))
	}
	p.Values[individualID] = value
	return nil
}

// ValueFor returns the value of an individual, NaN when unknown
func (p *QuantityPKParameter) ValueFor(individualID int) float64 {
	if individualID < 0 || individualID >= len(p.Values) {
		return math.NaN()
	}
	return p.Values[individualID]
}

// NumberOfIndividuals returns the size of the value array
func (p *QuantityPKParameter) NumberOfIndividuals() int { return len(p.Values) }
