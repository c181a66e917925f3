// Package population reads population tables and splits them into
// contiguous partitions, one file per simulation core.
package population
