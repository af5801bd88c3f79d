package aggregate

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNewBoundaries_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		hours []float64
		want  error
	}{
		{"Empty", nil, ErrEmptyBoundaries},
		{"Zero", []float64{0, 6}, ErrNonPositiveBoundary},
		{"Negative", []float64{-6}, ErrNonPositiveBoundary},
		{"NaN", []float64{math.NaN()}, ErrNonPositiveBoundary},
		{"Descending", []float64{12, 6}, ErrNonAscendingBoundaries},
		{"Duplicate", []float64{6, 6}, ErrNonAscendingBoundaries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBoundaries(tt.hours)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewBoundaries(%v) error = %v, want %v", tt.hours, err, tt.want)
			}
		})
	}
}

func TestNewBoundaries_CopiesInput(t *testing.T) {
	in := []float64{6, 12}
	b := MustBoundaries(in)
	in[0] = 100

	if got := b.Hours(); got[0] != 6 {
		t.Errorf("Boundaries should not alias input, got %v", got)
	}
}

func TestBin_DefaultBoundaries(t *testing.T) {
	b := MustBoundaries(DefaultBucketHours)

	got := b.Bin([]float64{100, 360, 361, 2881})
	want := []int{2, 1, 0, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bin() = %v, want %v", got, want)
	}
}

func TestBin_ValueOnThresholdGoesBelow(t *testing.T) {
	tests := []struct {
		name   string
		hours  []float64
		limits []float64
	}{
		{"Default", DefaultBucketHours, []float64{360, 720, 1440, 2880}},
		{"Fractional", []float64{0.1, 1.05, 4.1}, []float64{6, 63, 246}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := MustBoundaries(tt.hours)
			for i, limit := range tt.limits {
				if got := b.Bucket(limit); got != i {
					t.Errorf("Bucket(%v) = %d, want %d", limit, got, i)
				}
				if got := b.Bucket(limit + 0.001); got != i+1 {
					t.Errorf("Bucket(%v) = %d, want %d", limit+0.001, got, i+1)
				}
			}
		})
	}
}

func TestBin_AnyBoundaryLength(t *testing.T) {
	tests := []struct {
		name   string
		hours  []float64
		values []float64
		want   []int
	}{
		{"Single", []float64{1}, []float64{0, 60, 61, 1000}, []int{2, 2}},
		{"Two", []float64{1, 2}, []float64{30, 90, 121}, []int{1, 1, 1}},
		{"Six", []float64{1, 2, 3, 4, 5, 6}, []float64{400}, []int{0, 0, 0, 0, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustBoundaries(tt.hours).Bin(tt.values)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bin(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestBin_SumEqualsInputLength(t *testing.T) {
	b := MustBoundaries(DefaultBucketHours)
	values := make([]float64, 0, 500)
	for i := range 500 {
		values = append(values, float64(i*7%4000))
	}

	total := 0
	for _, c := range b.Bin(values) {
		total += c
	}
	if total != len(values) {
		t.Errorf("sum of counts = %d, want %d", total, len(values))
	}
}

func TestBin_EmptyInput(t *testing.T) {
	b := MustBoundaries(DefaultBucketHours)

	s := b.Series(nil)
	if !reflect.DeepEqual(s.Values, []float64{0, 0, 0, 0, 0}) {
		t.Errorf("Values = %v, want all zero", s.Values)
	}
	if len(s.Labels) != 5 {
		t.Fatalf("Labels length = %d, want 5", len(s.Labels))
	}
	for i, l := range s.Labels {
		if l == "" {
			t.Errorf("label %d is empty", i)
		}
	}
}

func TestLabels(t *testing.T) {
	got := MustBoundaries(DefaultBucketHours).Labels()
	want := []string{"up to 6h", "6h to 12h", "12h to 24h", "24h to 48h", "more than 48h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}

	got = MustBoundaries([]float64{1.5}).Labels()
	want = []string{"up to 1.5h", "more than 1.5h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
}

func TestBoundariesSeries_LabelsIndependentOfData(t *testing.T) {
	b := MustBoundaries(DefaultBucketHours)

	first := b.Series([]float64{1, 2, 3})
	second := b.Series([]float64{5000, 700})
	if !reflect.DeepEqual(first.Labels, second.Labels) {
		t.Errorf("labels differ: %v vs %v", first.Labels, second.Labels)
	}
}

func TestBoundariesSeries_Deterministic(t *testing.T) {
	b := MustBoundaries(DefaultBucketHours)
	in := []float64{10, 400, 800, 2000, 3000}

	first := b.Series(in)
	second := b.Series(in)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Series not deterministic: %v vs %v", first, second)
	}
	if len(first.Labels) != len(first.Values) {
		t.Errorf("labels/values length mismatch: %d vs %d", len(first.Labels), len(first.Values))
	}
}

func TestHoursToMinutes(t *testing.T) {
	tests := []struct {
		hours float64
		want  float64
	}{
		{0.1, 6},
		{1.05, 63},
		{4.1, 246},
		{48, 2880},
	}
	for _, tt := range tests {
		if got := hoursToMinutes(tt.hours); got != tt.want {
			t.Errorf("hoursToMinutes(%v) = %v, want %v", tt.hours, got, tt.want)
		}
	}

	if got := hoursToMinutes(1e300); math.IsInf(got, 0) || got < 1e301 {
		t.Errorf("hoursToMinutes(1e300) = %v, want finite", got)
	}
}
