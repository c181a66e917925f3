package sources

import (
	"regexp"
	"strings"
)

// DataSheet is a tokenized table: one header line and aligned rows
type DataSheet struct {
	FileName  string
	SheetName string
	Headers   []string
	Rows      [][]string
}

// Cell returns the text at row, col or "" when the row is short
func (s DataSheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

var headerUnitPattern = regexp.MustCompile(`^(.*?)\s*\[([^\]]*)\]\s*$`)

// SplitHeader separates "Concentration [mg/l]" into name and unit
func SplitHeader(header string) (name, unit string) {
	header = strings.TrimSpace(header)
	if m := headerUnitPattern.FindStringSubmatch(header); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return header, ""
}

// HeaderIndex maps header names (without unit) to column positions. The
// first occurrence of a name wins.
func (s DataSheet) HeaderIndex() map[string]int {
	index := make(map[string]int, len(s.Headers))
	for i, h := range s.Headers {
		name, _ := SplitHeader(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return index
}

// compact drops columns whose header is empty and pads rows to the header
// width. Rows without any content are removed.
func compact(headers []string, rows [][]string) ([]string, [][]string) {
	keep := make([]int, 0, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) != "" {
			keep = append(keep, i)
		}
	}

	outHeaders := make([]string, len(keep))
	for j, i := range keep {
		outHeaders[j] = strings.TrimSpace(headers[i])
	}

	outRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		out := make([]string, len(keep))
		empty := true
		for j, i := range keep {
			if i < len(row) {
				out[j] = strings.TrimSpace(row[i])
				if out[j] != "" {
					empty = false
				}
			}
		}
		if !empty {
			outRows = append(outRows, out)
		}
	}
	return outHeaders, outRows
}
