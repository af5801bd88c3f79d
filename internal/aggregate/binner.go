package aggregate

import (
	"errors"
	"fmt"
	"math"

	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
)

// DefaultBucketHours is the boundary set used when nothing is configured.
var DefaultBucketHours = []float64{6, 12, 24, 48}

var (
	// ErrEmptyBoundaries is returned when no threshold is configured.
	ErrEmptyBoundaries = errors.New("bucket boundaries: at least one threshold is required")
	// ErrNonPositiveBoundary is returned for a zero, negative or non-finite threshold.
	ErrNonPositiveBoundary = errors.New("bucket boundaries: thresholds must be positive")
	// ErrNonAscendingBoundaries is returned when thresholds are not strictly ascending.
	ErrNonAscendingBoundaries = errors.New("bucket boundaries: thresholds must be strictly ascending")
)

// Boundaries is a validated, ascending set of wait thresholds.
type Boundaries struct {
	hours   []float64
	minutes []float64
}

// NewBoundaries validates thresholds expressed in hours.
func NewBoundaries(hours []float64) (Boundaries, error) {
	if len(hours) == 0 {
		return Boundaries{}, ErrEmptyBoundaries
	}

	b := Boundaries{
		hours:   make([]float64, len(hours)),
		minutes: make([]float64, len(hours)),
	}
	for i, h := range hours {
		if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return Boundaries{}, fmt.Errorf("%w: got %v at position %d", ErrNonPositiveBoundary, h, i)
		}
		if i > 0 && h <= hours[i-1] {
			return Boundaries{}, fmt.Errorf("%w: %v follows %v", ErrNonAscendingBoundaries, h, hours[i-1])
		}
		b.hours[i] = h
		b.minutes[i] = hoursToMinutes(h)
	}

	return b, nil
}

// hoursToMinutes rounds away float noise so 4.1h compares equal to 246min.
func hoursToMinutes(h float64) float64 {
	m := h * minutesPerHour
	if r := math.Round(m*1e9) / 1e9; !math.IsInf(r, 0) {
		return r
	}
	return m
}

// MustBoundaries is like NewBoundaries but panics on invalid input.
func MustBoundaries(hours []float64) Boundaries {
	b, err := NewBoundaries(hours)
	if err != nil {
		panic(err)
	}
	return b
}

// Hours returns a copy of the thresholds in hours.
func (b Boundaries) Hours() []float64 {
	out := make([]float64, len(b.hours))
	copy(out, b.hours)
	return out
}

// BucketCount is the number of histogram buckets, including overflow.
func (b Boundaries) BucketCount() int {
	return len(b.minutes) + 1
}

// Bucket returns the bucket index for a wait in minutes: the first bucket
// whose threshold is >= the value, or the overflow bucket.
func (b Boundaries) Bucket(minutes float64) int {
	for i, limit := range b.minutes {
		if minutes <= limit {
			return i
		}
	}
	return len(b.minutes)
}

// Bin counts wait durations (minutes) into buckets.
func (b Boundaries) Bin(minutes []float64) []int {
	counts := make([]int, b.BucketCount())
	for _, v := range minutes {
		counts[b.Bucket(v)]++
	}
	return counts
}

// Labels returns one axis label per bucket. They depend only on the thresholds.
func (b Boundaries) Labels() []string {
	n := len(b.hours)
	labels := make([]string, n+1)
	for i := range labels {
		switch {
		case i == 0:
			labels[i] = fmt.Sprintf("up to %sh", FormatHours(b.hours[0]))
		case i == n:
			labels[i] = fmt.Sprintf("more than %sh", FormatHours(b.hours[n-1]))
		default:
			labels[i] = fmt.Sprintf("%sh to %sh", FormatHours(b.hours[i-1]), FormatHours(b.hours[i]))
		}
	}
	return labels
}

// Series bins the durations and pairs the counts with their labels.
func (b Boundaries) Series(minutes []float64) models.ChartSeries {
	counts := b.Bin(minutes)
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	return models.ChartSeries{
		Labels: b.Labels(),
		Values: values,
	}
}
