package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *DataRepository {
	t.Helper()
	repo := NewDataRepository("repo-1", "Study 1")
	require.NoError(t, repo.Add(NewBaseGrid("t", "Time", NoDimension, []float64{0, 1, 2})))
	require.NoError(t, repo.Add(&DataColumn{
		ID:           "c",
		Name:         "Conc",
		Values:       []float64{1, 2, 3},
		BaseGridName: "Time",
		DataInfo:     DataInfo{Origin: OriginObservation},
	}))
	require.NoError(t, repo.Add(&DataColumn{
		ID:           "e",
		Name:         "Error",
		Values:       []float64{0.1, 0.2, 0.3},
		BaseGridName: "Time",
		DataInfo:     DataInfo{Origin: OriginObservationAuxiliary, AuxiliaryType: AuxiliaryArithmeticStdDev},
	}))
	return repo
}

func TestDataRepository_Add(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.Add(&DataColumn{Name: "Conc"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateColumn))
	assert.Equal(t, 3, repo.Len())

	col, ok := repo.Column("Conc")
	require.True(t, ok)
	assert.Equal(t, "c", col.ID)

	_, ok = repo.Column("missing")
	assert.False(t, ok)
}

func TestDataRepository_BaseGridOf(t *testing.T) {
	repo := newTestRepository(t)

	conc, _ := repo.Column("Conc")
	grid, err := repo.BaseGridOf(conc)
	require.NoError(t, err)
	assert.Equal(t, "Time", grid.Name)

	orphan := &DataColumn{Name: "Orphan", BaseGridName: "Hours", DataInfo: DataInfo{Origin: OriginObservation}}
	_, err = repo.BaseGridOf(orphan)
	assert.ErrorIs(t, err, ErrBaseGridNotFound)

	assert.Len(t, repo.BaseGrids(), 1)
	assert.Len(t, repo.ObservationColumns(), 2)
}

func TestDataRepository_AddRelatedColumn(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		related string
		wantErr error
	}{
		{name: "links existing columns", owner: "Conc", related: "Error"},
		{name: "missing owner", owner: "Nope", related: "Error", wantErr: ErrColumnNotFound},
		{name: "missing related", owner: "Conc", related: "Nope", wantErr: ErrColumnNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepository(t)
			err := repo.AddRelatedColumn(tt.owner, tt.related)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			// linking twice keeps a single entry
			require.NoError(t, repo.AddRelatedColumn(tt.owner, tt.related))

			owner, _ := repo.Column(tt.owner)
			related := repo.RelatedColumnsOf(owner)
			require.Len(t, related, 1)
			assert.Equal(t, tt.related, related[0].Name)
		})
	}
}

func TestDataRepository_ExtendedProperties(t *testing.T) {
	repo := NewDataRepository("r", "merged")
	repo.AddExtendedProperty(PropertySheet, "Sheet1")
	repo.AddExtendedProperty(PropertySheet, "Sheet2")
	repo.AddExtendedProperty("Species", "Human")

	value, ok := repo.ExtendedProperty(PropertySheet)
	require.True(t, ok)
	assert.Equal(t, "Sheet2", value)
	assert.Equal(t, []string{"Sheet1", "Sheet2"}, repo.ExtendedPropertyValues(PropertySheet))
	assert.Len(t, repo.ExtendedProperties, 3)

	_, ok = repo.ExtendedProperty(PropertySourceFile)
	assert.False(t, ok)
}

func TestDataRepository_Validate(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, repo.Validate())

	require.NoError(t, repo.Add(&DataColumn{
		Name:         "Short",
		Values:       []float64{1},
		BaseGridName: "Time",
		DataInfo:     DataInfo{Origin: OriginObservation},
	}))
	assert.ErrorIs(t, repo.Validate(), ErrLengthMismatch)
}

func TestQuantityPKParameter(t *testing.T) {
	p := NewQuantityPKParameter("Organism|Plasma", "AUC", NoDimension)
	assert.Equal(t, "Organism|Plasma|AUC", p.ID())

	p.SetNumberOfIndividuals(3)
	require.Equal(t, 3, p.NumberOfIndividuals())
	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(p.ValueFor(i)))
	}

	require.NoError(t, p.SetValue(1, 4.2))
	assert.Equal(t, 4.2, p.ValueFor(1))
	assert.Error(t, p.SetValue(3, 1))
	assert.Error(t, p.SetValue(-1, 1))
	assert.True(t, math.IsNaN(p.ValueFor(10)))
}

func TestPopulation_SliceAndRecords(t *testing.T) {
	pop := &Population{
		Headers: []string{"Age", "Weight"},
		IDs:     []string{"0", "1", "2"},
		Rows:    [][]string{{"30", "70"}, {"40", "80"}, {"50", "90"}},
	}

	part := pop.Slice(1, 3)
	assert.Equal(t, 2, part.Count())
	assert.Equal(t, [][]string{
		{"IndividualId", "Age", "Weight"},
		{"1", "40", "80"},
		{"2", "50", "90"},
	}, part.Records())
}
