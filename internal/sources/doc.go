// Package sources reads observed data from Excel workbooks and delimited
// text files and maps the tokenized sheets to datasets using an import
// configuration.
package sources
