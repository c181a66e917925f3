package pkoptions

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
)

func TestFactory_CreateFor_MultipleDosing(t *testing.T) {
	sim := &Simulation{
		Name:       "Sim",
		EndTime:    1440,
		BodyWeight: 70,
		Applications: []Application{
			{Name: "Dose 2", Molecule: "Drug", StartTime: 720, Dose: 70},
			{Name: "Dose 1", Molecule: "Drug", StartTime: 0, Dose: 140},
			{Name: "Late", Molecule: "Drug", StartTime: 2000, Dose: 70},
		},
	}

	opts := NewFactory(nil).CreateFor(sim, "Drug")
	assert.Equal(t, "Drug", opts.ApplyingMolecule)
	assert.Equal(t, []DosingInterval{
		{Start: 0, End: 720, DrugMassPerBodyWeight: 2},
		{Start: 720, End: 1440, DrugMassPerBodyWeight: 1},
	}, opts.DosingIntervals)
	assert.Equal(t, 3.0, opts.TotalDrugMassPerBodyWeight)
	assert.False(t, opts.SingleDosing())
	assert.True(t, math.IsNaN(opts.InfusionTime))
}

func TestFactory_CreateFor_SingleDosingInfusion(t *testing.T) {
	sim := &Simulation{
		Name: "Sim", EndTime: 600, BodyWeight: 50,
		Applications: []Application{{Name: "IV", Molecule: "Drug", StartTime: 10, Dose: 100, InfusionTime: 30}},
	}

	opts := NewFactory(nil).CreateFor(sim, "Drug")
	assert.True(t, opts.SingleDosing())
	assert.Equal(t, 30.0, opts.InfusionTime)
	assert.Equal(t, []DosingInterval{{Start: 10, End: 600, DrugMassPerBodyWeight: 2}}, opts.DosingIntervals)
}

func TestApplicationsForMolecule(t *testing.T) {
	tests := []struct {
		name      string
		sim       *Simulation
		molecule  string
		applying  string
		wantCount int
	}{
		{
			name: "metabolite of applied drug",
			sim: &Simulation{
				Applications: []Application{{Molecule: "Parent"}},
				Reactions: []Reaction{
					{Name: "R1", Educts: []string{"Parent"}, Products: []string{"M1"}},
					{Name: "R2", Educts: []string{"M1"}, Products: []string{"M2"}},
				},
			},
			molecule:  "M2",
			applying:  "Parent",
			wantCount: 1,
		},
		{
			name: "ambiguous predecessor",
			sim: &Simulation{
				Applications: []Application{{Molecule: "A"}, {Molecule: "B"}},
				Reactions: []Reaction{
					{Name: "R1", Educts: []string{"A"}, Products: []string{"M"}},
					{Name: "R2", Educts: []string{"B"}, Products: []string{"M"}},
				},
			},
			molecule: "M",
		},
		{
			name: "reaction with two products is ignored",
			sim: &Simulation{
				Applications: []Application{{Molecule: "A"}},
				Reactions:    []Reaction{{Name: "R", Educts: []string{"A"}, Products: []string{"M", "N"}}},
			},
			molecule: "M",
		},
		{
			name: "duplicate reactions count once",
			sim: &Simulation{
				Applications: []Application{{Molecule: "A"}, {Molecule: "A"}},
				Reactions: []Reaction{
					{Name: "R1", Educts: []string{"A"}, Products: []string{"M"}},
					{Name: "R2", Educts: []string{"A"}, Products: []string{"M"}},
				},
			},
			molecule:  "M",
			applying:  "A",
			wantCount: 2,
		},
		{
			name: "cycle terminates",
			sim: &Simulation{
				Reactions: []Reaction{
					{Name: "R1", Educts: []string{"X"}, Products: []string{"Y"}},
					{Name: "R2", Educts: []string{"Y"}, Products: []string{"X"}},
				},
			},
			molecule: "X",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, applying := ApplicationsForMolecule(tt.sim, tt.molecule)
			assert.Equal(t, tt.applying, applying)
			assert.Len(t, apps, tt.wantCount)
		})
	}
}

func TestLoadSimulation(t *testing.T) {
	input := `
name: Oral dosing
end_time: 1440
body_weight: 73
applications:
  - name: Tablet
    molecule: Drug
    start_time: 0
    dose: 100
reactions:
  - name: CYP3A4
    educts: [Drug]
    products: [Metabolite]
`
	sim, err := LoadSimulation(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Oral dosing", sim.Name)
	require.Len(t, sim.Applications, 1)
	require.Len(t, sim.Reactions, 1)

	opts := NewFactory(nil).CreateFor(sim, "Metabolite")
	assert.Equal(t, "Drug", opts.ApplyingMolecule)
	assert.InDelta(t, 100.0/73, opts.TotalDrugMassPerBodyWeight, 1e-12)

	_, err = LoadSimulation(strings.NewReader("name: x\nend_time: 0\nbody_weight: 1\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
