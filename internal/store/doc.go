// Package store persists imported observed-data repositories and PK
// parameters in an embedded SQLite database.
//
// Values are stored as little-endian float64 blobs so NaN markers for
// missing or censored points round-trip unchanged. Dimensions are stored
// by name and restored through the unit registry.
package store
