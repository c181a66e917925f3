package sources

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
)

// ReadExcel reads every non-empty worksheet of an xlsx workbook. The first
// non-empty row of a sheet is its header line.
func ReadExcel(path string) ([]DataSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("file", path)
	}
	defer f.Close()

	var sheets []DataSheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", name), err).
				WithContext("file", path)
		}

		start := firstNonEmptyRow(rows)
		if start < 0 {
			continue
		}
		headers, data := compact(rows[start], rows[start+1:])
		if len(headers) == 0 {
			continue
		}
		sheets = append(sheets, DataSheet{
			FileName:  path,
			SheetName: name,
			Headers:   headers,
			Rows:      data,
		})
	}
	return sheets, nil
}

// ReadCSV reads a delimited text file as a single sheet named after the file
func ReadCSV(path string, delimiter rune) (DataSheet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return DataSheet{}, apperrors.NewParsingError("failed to read CSV file", err).WithContext("file", path)
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return DataSheet{}, apperrors.NewParsingError("failed to parse CSV file", err).WithContext("file", path)
	}

	start := firstNonEmptyRow(rows)
	if start < 0 {
		return DataSheet{}, apperrors.NewParsingError("CSV file is empty", nil).WithContext("file", path)
	}
	headers, data := compact(rows[start], rows[start+1:])
	return DataSheet{
		FileName:  path,
		SheetName: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Headers:   headers,
		Rows:      data,
	}, nil
}

// ReadFile dispatches on the file extension
func ReadFile(path string, delimiter rune) ([]DataSheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadExcel(path)
	case ".csv", ".txt":
		sheet, err := ReadCSV(path, delimiter)
		if err != nil {
			return nil, err
		}
		return []DataSheet{sheet}, nil
	default:
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported file type %q", filepath.Ext(path))).
			WithContext("file", path)
	}
}

func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}
	return -1
}
