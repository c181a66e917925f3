// Package services coordinates the import pipelines used by the command
// line: observed-data import with optional persistence and CSV export, and
// PK-analysis import and export.
//
// Services take their collaborators through constructors and optional
// With* setters. File-level problems are collected in an
// errors.ImportLog; only configuration errors, cancellation and build
// failures abort a call.
package services
