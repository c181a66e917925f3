// Package domain contains the data types shared by the import pipeline:
// dimensions and units, column descriptors and raw cells, data columns and
// repositories, PK parameters and populations.
//
// Links between columns (dependent column to base grid, measurement to its
// auxiliary columns) are stored as names and resolved against the owning
// DataRepository.
package domain
