package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

func setupTestStore(t *testing.T) (*Store, *units.Registry) {
	t.Helper()
	registry := units.MustNewRegistry()
	store, err := Open(filepath.Join(t.TempDir(), "data", DefaultFileName), registry)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store, registry
}

func testRepository(t *testing.T, registry *units.Registry) *domain.DataRepository {
	t.Helper()
	timeDim, ok := registry.Dimension(units.DimensionTime)
	require.True(t, ok)
	concDim, ok := registry.Dimension(units.DimensionMassConcentration)
	require.True(t, ok)

	repo := domain.NewDataRepository("repo-1", "study.Sheet1")
	repo.AddExtendedProperty(domain.PropertySourceFile, "study.xlsx")
	repo.AddExtendedProperty(domain.PropertySheet, "Sheet1")

	require.NoError(t, repo.Add(domain.NewBaseGrid("c1", "Time", timeDim, []float64{0, 60, 120})))
	require.NoError(t, repo.Add(&domain.DataColumn{
		ID:           "c2",
		Name:         "Concentration",
		Dimension:    concDim,
		Values:       []float64{1, math.NaN(), 0.25},
		BaseGridName: "Time",
		DataInfo:     domain.DataInfo{Origin: domain.OriginObservation, DisplayUnitName: "mg/l"},
	}))
	require.NoError(t, repo.Add(&domain.DataColumn{
		ID:           "c3",
		Name:         "Score",
		Dimension:    domain.NewUserDefinedDimension("points"),
		Values:       []float64{3, 4, 5},
		BaseGridName: "Time",
		DataInfo:     domain.DataInfo{Origin: domain.OriginObservationAuxiliary},
	}))
	require.NoError(t, repo.AddRelatedColumn("Concentration", "Score"))
	return repo
}

func TestStore_RepositoryRoundTrip(t *testing.T) {
	store, registry := setupTestStore(t)
	ctx := context.Background()

	repo := testRepository(t, registry)
	require.NoError(t, store.SaveRepository(ctx, repo))

	loaded, err := store.GetRepository(ctx, "repo-1")
	require.NoError(t, err)
	assert.Equal(t, repo.Name, loaded.Name)
	assert.Equal(t, repo.ExtendedProperties, loaded.ExtendedProperties)
	require.Equal(t, 3, loaded.Len())

	timeCol, ok := loaded.Column("Time")
	require.True(t, ok)
	assert.True(t, timeCol.IsBaseGrid())
	assert.Equal(t, units.DimensionTime, timeCol.DimensionName())
	assert.Equal(t, []float64{0, 60, 120}, timeCol.Values)

	conc, ok := loaded.Column("Concentration")
	require.True(t, ok)
	assert.Equal(t, "Time", conc.BaseGridName)
	assert.Equal(t, []string{"Score"}, conc.RelatedColumns)
	assert.True(t, math.IsNaN(conc.Values[1]))
	assert.Equal(t, "mg/l", conc.DataInfo.DisplayUnitName)

	score, ok := loaded.Column("Score")
	require.True(t, ok)
	assert.Equal(t, "points", score.Dimension.BaseUnit().Name)

	require.NoError(t, loaded.Validate())
}

func TestStore_SaveReplacesColumns(t *testing.T) {
	store, registry := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRepository(ctx, testRepository(t, registry)))

	timeDim, _ := registry.Dimension(units.DimensionTime)
	smaller := domain.NewDataRepository("repo-1", "renamed")
	require.NoError(t, smaller.Add(domain.NewBaseGrid("c1", "Time", timeDim, []float64{5})))
	require.NoError(t, store.SaveRepository(ctx, smaller))

	summaries, err := store.ListRepositories(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "renamed", summaries[0].Name)
	assert.Equal(t, 1, summaries[0].Columns)
}

func TestStore_GetMissingRepository(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.GetRepository(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestStore_DeleteRepository(t *testing.T) {
	store, registry := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRepository(ctx, testRepository(t, registry)))
	require.NoError(t, store.DeleteRepository(ctx, "repo-1"))

	summaries, err := store.ListRepositories(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestStore_ReplaceRepositories(t *testing.T) {
	store, registry := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRepository(ctx, testRepository(t, registry)))

	timeDim, _ := registry.Dimension(units.DimensionTime)
	replacement := domain.NewDataRepository("repo-2", "study.Sheet2")
	require.NoError(t, replacement.Add(domain.NewBaseGrid("c1", "Time", timeDim, []float64{0})))

	broken := domain.NewDataRepository("repo-3", "broken")
	require.NoError(t, broken.Add(&domain.DataColumn{ID: "c1", Name: "Conc", BaseGridName: "Missing"}))

	err := store.ReplaceRepositories(ctx, []*domain.DataRepository{replacement, broken}, []string{"repo-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBaseGridNotFound)

	summaries, err := store.ListRepositories(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1, "failed replace leaves the store untouched")
	assert.Equal(t, "repo-1", summaries[0].ID)

	require.NoError(t, store.ReplaceRepositories(ctx, []*domain.DataRepository{replacement}, []string{"repo-1"}))
	summaries, err = store.ListRepositories(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "repo-2", summaries[0].ID)
}

func TestStore_PKParameters(t *testing.T) {
	store, registry := setupTestStore(t)
	ctx := context.Background()

	aucDim, ok := registry.Dimension(units.DimensionAucMolar)
	require.True(t, ok)
	auc := domain.NewQuantityPKParameter("Organism|Plasma|Drug", "AUC", aucDim)
	auc.Values = []float64{1, math.NaN(), 3}
	ratio := domain.NewQuantityPKParameter("Organism|Plasma|Drug", "Ratio", registry.NoDimension())
	ratio.Values = []float64{0.5}

	require.NoError(t, store.SavePKParameters(ctx, []*domain.QuantityPKParameter{ratio, auc}))

	auc.Values = []float64{10, 20, 30}
	require.NoError(t, store.SavePKParameters(ctx, []*domain.QuantityPKParameter{auc}))

	params, err := store.ListPKParameters(ctx)
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "AUC", params[0].Name)
	assert.Equal(t, []float64{10, 20, 30}, params[0].Values)
	assert.Equal(t, units.DimensionAucMolar, params[0].Dimension.Name())
	assert.True(t, params[1].Dimension.IsNoDimension())
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	registry := units.MustNewRegistry()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	first, err := Open(path, registry)
	require.NoError(t, err)
	require.NoError(t, first.SaveRepository(context.Background(), testRepository(t, registry)))
	require.NoError(t, first.Close())

	second, err := Open(path, registry)
	require.NoError(t, err)
	defer second.Close()

	summaries, err := second.ListRepositories(context.Background())
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, path, second.Path())
}
