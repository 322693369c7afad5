package exporter

import (
	"strconv"
)

// formatFloat writes the shortest representation that round-trips, so totals
// keep full precision and whole numbers carry no decimal part
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
