// Package config loads the application configuration.
//
// Values are applied in this order, later sources winning:
//
//  1. Default()
//  2. a YAML file (ospsuite.yaml or configs/ospsuite.yaml, or an explicit path)
//  3. environment variables prefixed with OSPS_
//
// Nested sections map to underscored names:
//
//	OSPS_LOGGING_LEVEL=debug
//	OSPS_CONCURRENCY_MAX_DEGREE_OF_PARALLELISM=4
//	OSPS_STORAGE_ENABLED=true
//
// The merged configuration is validated with struct tags before use.
package config
