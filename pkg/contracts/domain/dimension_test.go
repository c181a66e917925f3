package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimension_Conversion(t *testing.T) {
	temperature := NewDimension("Temperature", "K",
		Unit{Name: "K", Factor: 1},
		Unit{Name: "°C", Factor: 1, Offset: 273.15},
	)

	celsius, ok := temperature.Unit("°C")
	require.True(t, ok)
	assert.InDelta(t, 310.15, temperature.UnitValueToBaseUnitValue(celsius, 37), 1e-9)
	assert.InDelta(t, 37, temperature.BaseUnitValueToUnitValue(celsius, 310.15), 1e-9)
	assert.True(t, math.IsNaN(temperature.UnitValueToBaseUnitValue(celsius, math.NaN())))
	assert.Equal(t, "K", temperature.BaseUnit().Name)
	assert.Equal(t, []string{"K", "°C"}, temperature.UnitNames())
}

func TestNewDimension_AddsMissingBaseUnit(t *testing.T) {
	d := NewDimension("Time", "min", Unit{Name: "h", Factor: 60})
	assert.True(t, d.HasUnit("min"))
	assert.Equal(t, 1.0, d.BaseUnit().Factor)
	assert.Len(t, d.Units(), 2)
}

func TestNoDimension(t *testing.T) {
	assert.True(t, NoDimension.IsNoDimension())
	assert.True(t, NoDimension.HasUnit(""))

	user := NewUserDefinedDimension("cells/ml")
	assert.False(t, user.IsNoDimension())
	assert.Equal(t, "cells/ml", user.Name())
	assert.Equal(t, "cells/ml", user.BaseUnit().Name)

	var nilDim *Dimension
	assert.True(t, nilDim.IsNoDimension())
	assert.Equal(t, NoDimensionName, nilDim.String())
}
