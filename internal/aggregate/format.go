// Package aggregate turns raw wait-time records into chart series.
//
// Everything here is pure: the same input always yields the same output and
// no function keeps state between calls.
package aggregate

import (
	"fmt"
	"math"
	"strconv"
)

const minutesPerHour = 60

// MinutesToHours converts a duration in minutes to hours.
func MinutesToHours(minutes float64) float64 {
	return minutes / minutesPerHour
}

// FormatDuration renders fractional hours as "{h}h {m}min".
// Minutes are rounded; a rounding that reaches 60 carries into the hour.
func FormatDuration(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		hours = 0
	}

	whole := math.Floor(hours)
	minutes := math.Round((hours - whole) * minutesPerHour)
	if minutes >= minutesPerHour {
		whole++
		minutes -= minutesPerHour
	}

	return fmt.Sprintf("%.0fh %dmin", whole, int64(minutes))
}

// FormatHours renders a threshold for bucket labels: 6 -> "6", 1.5 -> "1.5".
func FormatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}
