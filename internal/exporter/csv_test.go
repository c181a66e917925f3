package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuri05/OSPSuite.Core/internal/units"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		wantBOM  bool
		want     [][]string
	}{
		{
			name:     "headers and records",
			filePath: "plain.csv",
			options: WriteOptions{
				Headers: []string{"A", "B"},
				Records: [][]string{{"1", "2"}, {"3", "4"}},
			},
			want: [][]string{{"A", "B"}, {"1", "2"}, {"3", "4"}},
		},
		{
			name:     "bom prefix in nested directory",
			filePath: filepath.Join("nested", "bom.csv"),
			options: WriteOptions{
				Headers:   []string{"Name"},
				Records:   [][]string{{"µg/l"}},
				BOMPrefix: true,
			},
			wantBOM: true,
			want:    [][]string{{"Name"}, {"µg/l"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w := NewCSVWriter(dir, nil)

			path, err := w.WriteCSV(tt.filePath, tt.options)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.filePath), path)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(content, utf8BOM))
			assert.Equal(t, tt.want, readCSV(t, path))
		})
	}
}

func TestCSVWriter_AppendAndDelimiter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	_, err := w.WriteCSV("data.csv", WriteOptions{Headers: []string{"A", "B"}, Records: [][]string{{"1", "2"}}, Delimiter: ';'})
	require.NoError(t, err)
	path, err := w.WriteCSV("data.csv", WriteOptions{Headers: []string{"ignored"}, Records: [][]string{{"3", "4"}}, Append: true, Delimiter: ';'})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A;B\n1;2\n3;4\n", string(content))
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	stream, err := w.CreateStreamWriter("stream.csv", []string{"Id", "Value"}, false)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"0", "1.5"}))
	require.NoError(t, stream.WriteRecord([]string{"1", "NaN"}))
	assert.Equal(t, 2, stream.Count())
	require.NoError(t, stream.Close())

	assert.Equal(t, [][]string{{"Id", "Value"}, {"0", "1.5"}, {"1", "NaN"}}, readCSV(t, stream.Path()))
}

func TestCSVWriter_AbsolutePathIgnoresBaseDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "abs.csv")
	w := NewCSVWriter("/nonexistent-base", nil)

	path, err := w.WriteCSV(target, WriteOptions{Records: [][]string{{"x"}}})
	require.NoError(t, err)
	assert.Equal(t, target, path)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "NaN", FormatFloat(math.NaN()))
	assert.Equal(t, "0.1", FormatFloat(0.1))
	assert.Equal(t, "120", FormatFloat(120))
	assert.Equal(t, "1e-09", FormatFloat(1e-9))
	assert.Equal(t, "7", FormatInt(7))
}

func TestRepositoryExporter_Export(t *testing.T) {
	reg := units.MustNewRegistry()
	timeDim, _ := reg.Dimension("Time")
	massDim, _ := reg.Dimension("Concentration (mass)")

	repo := domain.NewDataRepository("r1", "Patient 1")
	grid := domain.NewBaseGrid("g", "Time", timeDim, []float64{0, 60})
	grid.DataInfo.DisplayUnitName = "h"
	require.NoError(t, repo.Add(grid))
	require.NoError(t, repo.Add(&domain.DataColumn{
		Name:         "Conc",
		Dimension:    massDim,
		Values:       []float64{1000, math.NaN()},
		BaseGridName: "Time",
		DataInfo:     domain.DataInfo{Origin: domain.OriginObservation, DisplayUnitName: "g/l"},
	}))
	require.NoError(t, repo.Add(&domain.DataColumn{
		Name:         "Score",
		Dimension:    domain.NoDimension,
		Values:       []float64{3, 4},
		BaseGridName: "Time",
		DataInfo:     domain.DataInfo{Origin: domain.OriginObservation},
	}))

	e := NewRepositoryExporter(NewCSVWriter(t.TempDir(), nil), reg)
	path, err := e.Export(repo, "patient.csv")
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Time [h]", "Conc [g/l]", "Score"},
		{"0", "1", "3"},
		{"1", "NaN", "4"},
	}, readCSV(t, path))
}

func TestRepositoryExporter_NoBaseGrid(t *testing.T) {
	e := NewRepositoryExporter(NewCSVWriter(t.TempDir(), nil), units.MustNewRegistry())
	_, err := e.Export(domain.NewDataRepository("r", "empty"), "empty.csv")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no base grid"))
}
