// Package pkanalysis reads and writes PK-analysis tables.
//
// A PK-analysis file is a CSV with a header line followed by rows of
//
//	IndividualId, QuantityPath, Parameter, Value, Unit
//
// Rows are grouped by (QuantityPath, Parameter) into QuantityPKParameters
// whose value arrays are indexed by individual id. Values are stored in the
// base unit of the dimension resolved from the first row of each group.
package pkanalysis
