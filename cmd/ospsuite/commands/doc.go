// Package commands implements the ospsuite command line: observed-data
// import, PK-analysis import and export, population splitting, PK option
// derivation and unit catalog queries.
package commands
