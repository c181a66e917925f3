package sources

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/validation"
	"github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"
)

var (
	ErrNullNamingConvention  = errors.New("naming convention is not set")
	ErrEmptyNamingConvention = errors.New("naming convention is empty")
	ErrMissingColumn         = errors.New("mapped column not found in sheet")
)

// ColumnMapping maps a sheet header to an imported column
type ColumnMapping struct {
	Header          string               `yaml:"header" validate:"required"`
	Name            string               `yaml:"name"`
	IsBase          bool                 `yaml:"is_base"`
	BaseGrid        string               `yaml:"base_grid" validate:"required_unless=IsBase true"`
	IsAuxiliary     bool                 `yaml:"is_auxiliary"`
	RelatedColumnOf string               `yaml:"related_column_of"`
	ErrorDeviation  domain.AuxiliaryKind `yaml:"error_deviation" validate:"omitempty,oneof=ArithmeticStdDev GeometricStdDev"`
	// Unit fixes the unit of every cell. When empty the unit comes from
	// UnitColumn, then from a "Name [unit]" header.
	Unit       string `yaml:"unit"`
	UnitColumn string `yaml:"unit_column"`
	// LLOQ applies to every cell of the column when set
	LLOQ *float64 `yaml:"lloq"`
}

// ColumnName is the imported column name
func (m ColumnMapping) ColumnName() string {
	if m.Name != "" {
		return m.Name
	}
	name, _ := SplitHeader(m.Header)
	return name
}

// MetaDataMapping attaches a fixed value or the value of a sheet column.
// Column mappings split the sheet into one dataset per distinct value.
type MetaDataMapping struct {
	Name   string `yaml:"name" validate:"required"`
	Value  string `yaml:"value"`
	Column string `yaml:"column" validate:"required_without=Value"`
}

// ImportConfiguration describes how sheets become datasets
type ImportConfiguration struct {
	// NamingConvention builds dataset names from {Source}, {Sheet} and
	// metadata names in braces
	NamingConvention *string           `yaml:"naming_convention"`
	Delimiter        string            `yaml:"delimiter" validate:"omitempty,delimiter"`
	Sheets           []string          `yaml:"sheets"`
	Columns          []ColumnMapping   `yaml:"columns" validate:"required,min=1,dive"`
	Metadata         []MetaDataMapping `yaml:"metadata" validate:"dive"`
}

// DelimiterRune returns the CSV delimiter, ',' by default
func (c *ImportConfiguration) DelimiterRune() rune {
	if c.Delimiter == "" {
		return ','
	}
	return []rune(c.Delimiter)[0]
}

// Validate checks the configuration before any file is read
func (c *ImportConfiguration) Validate() error {
	if c.NamingConvention == nil {
		return apperrors.NewConfigError("invalid import configuration", ErrNullNamingConvention)
	}
	if *c.NamingConvention == "" {
		return apperrors.NewConfigError("invalid import configuration", ErrEmptyNamingConvention)
	}
	if err := validation.Default().Struct(c); err != nil {
		return err
	}

	names := make(map[string]bool, len(c.Columns))
	for _, m := range c.Columns {
		if names[m.ColumnName()] {
			return apperrors.NewConfigError(fmt.Sprintf("column %q mapped twice", m.ColumnName()), domain.ErrDuplicateColumn)
		}
		names[m.ColumnName()] = true
	}
	return nil
}

// wantsSheet reports whether a sheet passes the configured filter
func (c *ImportConfiguration) wantsSheet(name string) bool {
	if len(c.Sheets) == 0 {
		return true
	}
	for _, s := range c.Sheets {
		if s == name {
			return true
		}
	}
	return false
}

// LoadConfiguration parses and validates a YAML import configuration
func LoadConfiguration(r io.Reader) (*ImportConfiguration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read import configuration", err)
	}
	var cfg ImportConfiguration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse import configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigurationFile reads the import configuration at path
func LoadConfigurationFile(path string) (*ImportConfiguration, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("import configuration %s", path))
	}
	defer file.Close()
	return LoadConfiguration(file)
}
