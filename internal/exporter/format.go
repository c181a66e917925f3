package exporter

import (
	"math"
	"strconv"
)

// FormatFloat renders a value with the shortest exact representation.
// Missing values are written as NaN so they survive a round trip.
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatInt formats an integer for CSV output
func FormatInt(i int) string {
	return strconv.Itoa(i)
}
