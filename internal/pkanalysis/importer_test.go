package pkanalysis

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuri05/OSPSuite.Core/internal/concurrency"
	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/exporter"
	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

const sampleCSV = `IndividualId,QuantityPath,Parameter,Value,Unit
0,path1,AUC,12.0,mg/l*h
1,path1,AUC,8.0,mg/l*h
0,path1,Cmax,3.0,mg/l
`

func newTestImporter() *Importer {
	return NewImporter(units.MustNewRegistry(), nil)
}

func TestImporter_Import(t *testing.T) {
	log := apperrors.NewImportLog()
	params := newTestImporter().Import(context.Background(), strings.NewReader(sampleCSV), "sample.csv", log)

	require.False(t, log.HasErrors(), log.String())
	require.Len(t, params, 2)

	auc := params[0]
	assert.Equal(t, "path1|AUC", auc.ID())
	assert.Equal(t, "AUC (mass)", auc.Dimension.Name())
	assert.Equal(t, []float64{720, 480}, auc.Values)

	cmax := params[1]
	assert.Equal(t, "path1|Cmax", cmax.ID())
	assert.Equal(t, []float64{3}, cmax.Values)
	assert.True(t, math.IsNaN(cmax.ValueFor(1)))
}

func TestImporter_RowOrderDoesNotMatter(t *testing.T) {
	shuffled := `IndividualId,QuantityPath,Parameter,Value,Unit
3,p,Cmax,4,mg/l
0,p,Cmax,1,mg/l
2,p,Cmax,3,mg/l
`
	sorted := `IndividualId,QuantityPath,Parameter,Value,Unit
0,p,Cmax,1,mg/l
2,p,Cmax,3,mg/l
3,p,Cmax,4,mg/l
`
	im := newTestImporter()
	a := im.Import(context.Background(), strings.NewReader(shuffled), "a", apperrors.NewImportLog())
	b := im.Import(context.Background(), strings.NewReader(sorted), "b", apperrors.NewImportLog())
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	require.Len(t, a[0].Values, 4)
	for i := range a[0].Values {
		if math.IsNaN(b[0].Values[i]) {
			assert.True(t, math.IsNaN(a[0].Values[i]))
			continue
		}
		assert.Equal(t, b[0].Values[i], a[0].Values[i])
	}
	assert.True(t, math.IsNaN(a[0].Values[1]))
}

func TestImporter_MixedUnitsAndEmptyUnit(t *testing.T) {
	input := `IndividualId,QuantityPath,Parameter,Value,Unit
0,p,Tmax,1,h
1,p,Tmax,30,min
0,p,Ratio,0.5,
`
	log := apperrors.NewImportLog()
	params := newTestImporter().Import(context.Background(), strings.NewReader(input), "mixed", log)
	require.False(t, log.HasErrors(), log.String())
	require.Len(t, params, 2)

	assert.Equal(t, []float64{60, 30}, params[0].Values)
	assert.True(t, params[1].Dimension.IsNoDimension())
	assert.Equal(t, []float64{0.5}, params[1].Values)
}

func TestImporter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		errType apperrors.ErrorType
	}{
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrInvalidHeader,
			errType: apperrors.ErrTypeParsing,
		},
		{
			name:    "header with four columns",
			input:   "IndividualId,QuantityPath,Parameter,Value\n0,p,AUC,1\n",
			wantErr: ErrInvalidHeader,
			errType: apperrors.ErrTypeParsing,
		},
		{
			name:    "headerless file",
			input:   "0,p,AUC,1,mg/l*h\n1,p,AUC,2,mg/l*h\n",
			wantErr: ErrInvalidHeader,
			errType: apperrors.ErrTypeParsing,
		},
		{
			name:    "unknown unit",
			input:   "Id,Path,Param,Value,Unit\n0,p,AUC,1,furlong\n",
			wantErr: units.ErrUnknownUnit,
			errType: apperrors.ErrTypeDimension,
		},
		{
			name:    "unit from another dimension",
			input:   "Id,Path,Param,Value,Unit\n0,p,AUC,1,mg/l*h\n1,p,AUC,1,h\n",
			wantErr: units.ErrUnitNotInDimension,
			errType: apperrors.ErrTypeDimension,
		},
		{
			name:    "short row",
			input:   "Id,Path,Param,Value,Unit\n0,p,AUC\n",
			wantErr: ErrInvalidRow,
			errType: apperrors.ErrTypeParsing,
		},
		{
			name:    "negative individual",
			input:   "Id,Path,Param,Value,Unit\n-1,p,AUC,1,mg/l*h\n",
			wantErr: ErrInvalidRow,
			errType: apperrors.ErrTypeParsing,
		},
		{
			name:    "individual id far beyond row count",
			input:   "Id,Path,Param,Value,Unit\n2000000000,p,AUC,1,mg/l*h\n",
			wantErr: ErrInvalidRow,
			errType: apperrors.ErrTypeParsing,
		},
		{
			name:    "non numeric value",
			input:   "Id,Path,Param,Value,Unit\n0,p,AUC,high,mg/l*h\n",
			wantErr: ErrInvalidRow,
			errType: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := apperrors.NewImportLog()
			params := newTestImporter().Import(context.Background(), strings.NewReader(tt.input), "bad.csv", log)

			assert.Nil(t, params)
			require.True(t, log.HasErrors())
			entries := log.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, "bad.csv", entries[0].Source)
			assert.ErrorIs(t, entries[0].Err, tt.wantErr)
			assert.True(t, apperrors.IsType(entries[0].Err, tt.errType))
		})
	}
}

func TestImporter_SemicolonAndBlankLines(t *testing.T) {
	input := "\ufeffIndividualId;QuantityPath;Parameter;Value;Unit\n0;p;AUC;1;mg/l*min\n\n1;p;AUC;2;mg/l*min\n"
	log := apperrors.NewImportLog()
	params := newTestImporter().WithDelimiter(';').Import(context.Background(), strings.NewReader(input), "semi", log)
	require.False(t, log.HasErrors(), log.String())
	require.Len(t, params, 1)
	assert.Equal(t, []float64{1, 2}, params[0].Values)
}

func TestImporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log := apperrors.NewImportLog()
	params := newTestImporter().Import(ctx, strings.NewReader(sampleCSV), "sample.csv", log)
	assert.Nil(t, params)
	require.True(t, log.HasErrors())
	assert.ErrorIs(t, log.Err(), context.Canceled)
}

func TestImporter_ImportFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(good, []byte(sampleCSV), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("1,2,3\n"), 0644))
	missing := filepath.Join(dir, "missing.csv")

	log := apperrors.NewImportLog()
	results, err := newTestImporter().ImportFiles(context.Background(), concurrency.NewManager(2, nil),
		[]string{good, bad, missing}, log)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Len(t, results[good], 2)
	assert.Len(t, log.Entries(), 2)

	var appErr *apperrors.AppError
	for _, e := range log.Entries() {
		if e.Source == missing {
			require.True(t, errors.As(e.Err, &appErr))
			assert.Equal(t, apperrors.ErrTypeImport, appErr.Type)
		}
	}
}

func TestExporter_RoundTrip(t *testing.T) {
	reg := units.MustNewRegistry()
	im := NewImporter(reg, nil)
	params := im.Import(context.Background(), strings.NewReader(sampleCSV), "sample.csv", apperrors.NewImportLog())
	require.Len(t, params, 2)

	dir := t.TempDir()
	ex := NewExporter(exporter.NewCSVWriter(dir, nil), reg)
	path, err := ex.Export(params, "pk.csv", map[string]string{"AUC": "mg/l*h", "Cmax": "not-a-unit"})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `IndividualId,QuantityPath,Parameter,Value,Unit
0,path1,AUC,12,mg/l*h
1,path1,AUC,8,mg/l*h
0,path1,Cmax,3,mg/l
`, string(content))

	log := apperrors.NewImportLog()
	again := im.ImportFile(context.Background(), path, log)
	require.False(t, log.HasErrors(), log.String())
	require.Len(t, again, 2)
	assert.Equal(t, params[0].Values, again[0].Values)
	assert.Equal(t, params[1].Values, again[1].Values)
}

func TestExporter_NoDimensionWritesEmptyUnit(t *testing.T) {
	p := domain.NewQuantityPKParameter("p", "Ratio", domain.NoDimension)
	p.SetNumberOfIndividuals(2)
	require.NoError(t, p.SetValue(0, 0.25))

	ex := NewExporter(exporter.NewCSVWriter(t.TempDir(), nil), units.MustNewRegistry())
	records, err := ex.Records([]*domain.QuantityPKParameter{p}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"0", "p", "Ratio", "0.25", ""},
		{"1", "p", "Ratio", "NaN", ""},
	}, records)
}
