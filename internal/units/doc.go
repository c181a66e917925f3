// Package units resolves unit names to physical dimensions and converts
// values between display units and base units.
//
// The Registry is loaded from a YAML catalog embedded in the binary and is
// safe to share between goroutines once loaded.
package units
