package sources

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/dataimport"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// ParseCell tokenizes one cell. Empty text is absent, "<x" is censored
// below x, and non-numeric text becomes NaN.
func ParseCell(text, unit string, lloq float64) domain.RawCell {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.AbsentCell()
	}
	if strings.HasPrefix(text, "<") {
		limit, err := parseNumber(strings.TrimSpace(text[1:]))
		if err != nil {
			return domain.NewCell(math.NaN(), unit)
		}
		return domain.NewCensoredCell(math.NaN(), limit, unit)
	}
	value, err := parseNumber(text)
	if err != nil {
		value = math.NaN()
	}
	return domain.NewCensoredCell(value, lloq, unit)
}

func parseNumber(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}

type boundColumn struct {
	mapping ColumnMapping
	index   int
	unitIdx int
	unit    string
}

type boundMeta struct {
	mapping MetaDataMapping
	index   int
}

// ToDataSets splits a sheet into datasets according to cfg. Rows sharing
// the values of all column-bound metadata form one dataset, in order of
// first appearance.
func ToDataSets(sheet DataSheet, cfg *ImportConfiguration) ([]dataimport.DataSet, error) {
	index := sheet.HeaderIndex()

	columns := make([]boundColumn, 0, len(cfg.Columns))
	for _, m := range cfg.Columns {
		header, headerUnit := SplitHeader(m.Header)
		idx, ok := index[header]
		if !ok {
			return nil, missingColumn(sheet, m.Header)
		}
		bc := boundColumn{mapping: m, index: idx, unitIdx: -1, unit: m.Unit}
		if bc.unit == "" && m.UnitColumn != "" {
			if bc.unitIdx, ok = index[m.UnitColumn]; !ok {
				return nil, missingColumn(sheet, m.UnitColumn)
			}
		}
		if bc.unit == "" && bc.unitIdx < 0 {
			bc.unit = headerUnit
			if bc.unit == "" {
				_, bc.unit = SplitHeader(sheet.Headers[idx])
			}
		}
		columns = append(columns, bc)
	}

	metas := make([]boundMeta, 0, len(cfg.Metadata))
	for _, m := range cfg.Metadata {
		bm := boundMeta{mapping: m, index: -1}
		if m.Column != "" {
			idx, ok := index[m.Column]
			if !ok {
				return nil, missingColumn(sheet, m.Column)
			}
			bm.index = idx
		}
		metas = append(metas, bm)
	}

	var order []string
	groups := map[string][]int{}
	for r := range sheet.Rows {
		key := groupKey(sheet, r, metas)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	sets := make([]dataimport.DataSet, 0, len(order))
	for _, key := range order {
		rows := groups[key]
		ds := dataimport.DataSet{FileName: sheet.FileName, SheetName: sheet.SheetName}

		for _, bm := range metas {
			value := bm.mapping.Value
			if bm.index >= 0 {
				value = sheet.Cell(rows[0], bm.index)
			}
			ds.Metadata = append(ds.Metadata, dataimport.MetaData{Name: bm.mapping.Name, Value: value})
		}
		ds.Name = ApplyNamingConvention(*cfg.NamingConvention, sheet, ds.Metadata)

		for _, bc := range columns {
			ds.Columns = append(ds.Columns, bc.parse(sheet, rows))
		}
		sets = append(sets, ds)
	}
	return sets, nil
}

func (bc boundColumn) parse(sheet DataSheet, rows []int) dataimport.ParsedColumn {
	m := bc.mapping
	lloq := math.NaN()
	if m.LLOQ != nil {
		lloq = *m.LLOQ
	}

	cells := make([]domain.RawCell, len(rows))
	for i, r := range rows {
		unit := bc.unit
		if bc.unitIdx >= 0 {
			unit = sheet.Cell(r, bc.unitIdx)
		}
		cells[i] = ParseCell(sheet.Cell(r, bc.index), unit, lloq)
	}

	return dataimport.ParsedColumn{
		Info: domain.ColumnInfo{
			Name:            m.ColumnName(),
			IsBase:          m.IsBase,
			IsAuxiliary:     m.IsAuxiliary,
			BaseGridName:    m.BaseGrid,
			RelatedColumnOf: m.RelatedColumnOf,
			ErrorDeviation:  m.ErrorDeviation,
			DisplayUnit:     bc.unit,
		},
		Cells: cells,
	}
}

func groupKey(sheet DataSheet, row int, metas []boundMeta) string {
	var b strings.Builder
	for _, bm := range metas {
		if bm.index < 0 {
			continue
		}
		b.WriteString(sheet.Cell(row, bm.index))
		b.WriteByte(0)
	}
	return b.String()
}

// ApplyNamingConvention substitutes {Source}, {Sheet} and {<metadata>}
// placeholders. Unknown placeholders are left as written.
func ApplyNamingConvention(convention string, sheet DataSheet, metadata []dataimport.MetaData) string {
	source := filepath.Base(sheet.FileName)
	source = strings.TrimSuffix(source, filepath.Ext(source))

	pairs := []string{"{Source}", source, "{Sheet}", sheet.SheetName}
	for _, md := range metadata {
		pairs = append(pairs, "{"+md.Name+"}", md.Value)
	}
	return strings.NewReplacer(pairs...).Replace(convention)
}

func missingColumn(sheet DataSheet, header string) error {
	return apperrors.NewParsingError(fmt.Sprintf("column %q not found", header), ErrMissingColumn).
		WithContext("file", sheet.FileName).
		WithContext("sheet", sheet.SheetName)
}
