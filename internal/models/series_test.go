package models

import (
	"testing"
	"time"
)

func TestDurations(t *testing.T) {
	got := Durations([]WaitRecord{{DurationMinutes: 10}, {DurationMinutes: 2.5}})
	if len(got) != 2 || got[0] != 10 || got[1] != 2.5 {
		t.Errorf("Durations() = %v", got)
	}

	if got := Durations(nil); len(got) != 0 {
		t.Errorf("Durations(nil) = %v, want empty", got)
	}
}

func TestChartSeries_Total(t *testing.T) {
	s := ChartSeries{Labels: []string{"a", "b", "c"}, Values: []float64{1, 2, 3}}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if s.Total() != 6 {
		t.Errorf("Total() = %v, want 6", s.Total())
	}
}

func TestSnapshot_OverflowCount(t *testing.T) {
	var nilSnap *Snapshot
	if nilSnap.OverflowCount() != 0 {
		t.Error("nil snapshot should have zero overflow")
	}

	snap := &Snapshot{
		FetchedAt:  time.Now(),
		Permanence: ChartSeries{Values: []float64{2, 1, 0, 0, 4}},
	}
	if got := snap.OverflowCount(); got != 4 {
		t.Errorf("OverflowCount() = %d, want 4", got)
	}
}
