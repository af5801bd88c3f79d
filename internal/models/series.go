package models

import (
	"time"
)

// ChartSeries is the label/value pair handed to chart renderers.
// Labels and Values always have the same length.
type ChartSeries struct {
	Labels []string
	Values []float64
}

// Len returns the number of points in the series.
func (s ChartSeries) Len() int {
	return len(s.Values)
}

// Total returns the sum of all values.
func (s ChartSeries) Total() float64 {
	total := 0.0
	for _, v := range s.Values {
		total += v
	}
	return total
}

// CategoryAverage is the mean wait of one severity category.
type CategoryAverage struct {
	Key   string
	Name  string
	Hours float64
	Count int
}

// Snapshot is the output of one fetch-and-aggregate cycle.
type Snapshot struct {
	CycleID   string
	Sequence  uint64
	FetchedAt time.Time

	Permanence ChartSeries
	Severity   ChartSeries
	Averages   []CategoryAverage

	// PermanenceRecords and SeverityRecords count the records that fed each pipeline.
	PermanenceRecords int
	SeverityRecords   int

	// Degraded counts upstream values that could not be read and were treated as zero.
	Degraded int
}

// OverflowCount returns the number of cases in the last permanence bucket.
func (s *Snapshot) OverflowCount() int {
	if s == nil || len(s.Permanence.Values) == 0 {
		return 0
	}
	return int(s.Permanence.Values[len(s.Permanence.Values)-1])
}

// TrendPoint is one snapshot's per-category averages, kept for the session trend.
type TrendPoint struct {
	At    time.Time
	Hours []float64
}
