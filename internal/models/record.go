// Package models defines data structures and domain types.
package models

// WaitRecord is a single emergency case's wait duration.
type WaitRecord struct {
	DurationMinutes float64
}

// SeverityRecord is a WaitRecord tagged with a severity category key.
type SeverityRecord struct {
	Category        string
	DurationMinutes float64
}

// Durations projects the wait durations out of a record list.
func Durations(records []WaitRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.DurationMinutes
	}
	return out
}
