// Package exporter writes CSV output: imported data repositories, split
// population files and PK-analysis tables.
//
// CSVWriter resolves relative paths against its base directory. Files can
// carry a UTF-8 BOM for spreadsheet compatibility; files meant to be read
// back by this toolkit are written without one.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter("/data/out", logger)
//	repoExporter := exporter.NewRepositoryExporter(writer, registry)
//	path, err := repoExporter.Export(repo, "Patient 1.csv")
package exporter
