package dataimport

import (
	"errors"
	"fmt"

	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

// Sentinels wrapped by BuildError
var (
	ErrBaseGridNotFound = domain.ErrBaseGridNotFound
	ErrColumnNotFound   = domain.ErrColumnNotFound
	ErrLengthMismatch   = domain.ErrLengthMismatch
	ErrDuplicateColumn  = domain.ErrDuplicateColumn
	ErrInvalidColumn    = errors.New("invalid column descriptor")
)

// MetaData is a named value attached to a dataset, such as species or dose
type MetaData struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ParsedColumn is one tokenized column of a sheet
type ParsedColumn struct {
	Info  domain.ColumnInfo
	Cells []domain.RawCell
}

// Unit returns the display unit of the column: the declared one, else the
// first unit found on a cell.
func (c ParsedColumn) Unit() string {
	if c.Info.DisplayUnit != "" {
		return c.Info.DisplayUnit
	}
	for _, cell := range c.Cells {
		if cell.Unit != "" {
			return cell.Unit
		}
	}
	return ""
}

// DataSet is the reader output for one repository to build
type DataSet struct {
	Name      string
	FileName  string
	SheetName string
	Metadata  []MetaData
	Columns   []ParsedColumn
}

// BuildError reports why a dataset could not be turned into a repository
type BuildError struct {
	Repository string
	Column     string
	Err        error
}

func (e *BuildError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("build repository %q: %v", e.Repository, e.Err)
	}
	return fmt.Sprintf("build repository %q, column %q: %v", e.Repository, e.Column, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
