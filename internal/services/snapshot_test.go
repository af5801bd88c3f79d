package services

import (
	"testing"
	"time"

	"github.com/j-veylop/erwait-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/services/upstream"
)

func TestBuildSnapshot_Empty(t *testing.T) {
	b := aggregate.MustBoundaries(aggregate.DefaultBucketHours)
	c := aggregate.MustCategories(aggregate.DefaultCategories)

	snap := buildSnapshot(b, c, upstream.Batch[models.WaitRecord]{}, upstream.Batch[models.SeverityRecord]{}, time.Now())

	if snap.Permanence.Len() != 5 || snap.Permanence.Total() != 0 {
		t.Errorf("permanence = %+v, want 5 zero buckets", snap.Permanence)
	}
	if len(snap.Permanence.Labels) != 5 {
		t.Errorf("labels = %v, want 5", snap.Permanence.Labels)
	}
	if snap.Severity.Len() != 3 {
		t.Errorf("severity = %+v, want 3 categories", snap.Severity)
	}
	for _, a := range snap.Averages {
		if a.Hours != 0 || a.Count != 0 {
			t.Errorf("average %+v, want zero", a)
		}
	}
}

func TestBuildSnapshot_SumsDegraded(t *testing.T) {
	b := aggregate.MustBoundaries([]float64{1})
	c := aggregate.MustCategories(aggregate.DefaultCategories)

	snap := buildSnapshot(b, c,
		upstream.Batch[models.WaitRecord]{Records: make([]models.WaitRecord, 3), Degraded: 2},
		upstream.Batch[models.SeverityRecord]{Records: make([]models.SeverityRecord, 4), Degraded: 1},
		time.Now(),
	)

	if snap.Degraded != 3 {
		t.Errorf("Degraded = %d, want 3", snap.Degraded)
	}
	if snap.PermanenceRecords != 3 || snap.SeverityRecords != 4 {
		t.Errorf("record counts = %d/%d, want 3/4", snap.PermanenceRecords, snap.SeverityRecords)
	}
}

func TestAppendTrend_Bounded(t *testing.T) {
	var trend []models.TrendPoint
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < maxTrendPoints+10; i++ {
		snap := &models.Snapshot{
			FetchedAt: base.Add(time.Duration(i) * time.Minute),
			Averages:  []models.CategoryAverage{{Hours: float64(i)}},
		}
		trend = appendTrend(trend, snap)
	}

	if len(trend) != maxTrendPoints {
		t.Fatalf("len = %d, want %d", len(trend), maxTrendPoints)
	}
	if trend[0].Hours[0] != 10 {
		t.Errorf("oldest point = %v, want 10", trend[0].Hours[0])
	}
	if trend[len(trend)-1].Hours[0] != float64(maxTrendPoints+9) {
		t.Errorf("newest point = %v", trend[len(trend)-1].Hours[0])
	}
}
