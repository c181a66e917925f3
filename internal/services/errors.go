package services

import "errors"

var (
	ErrNoFilesFound    = errors.New("no files found")
	ErrMissingConfig   = errors.New("import configuration is required")
	ErrNoParameters    = errors.New("no PK parameters to export")
	ErrNothingImported = errors.New("no file could be imported")
)
