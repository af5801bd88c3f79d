package services

import (
	"time"

	"github.com/j-veylop/erwait-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/services/upstream"
)

// maxTrendPoints bounds the in-memory session trend.
const maxTrendPoints = 60

// buildSnapshot runs both pipelines over one cycle's records. It does no I/O.
func buildSnapshot(
	b aggregate.Boundaries,
	c aggregate.Categories,
	perm upstream.Batch[models.WaitRecord],
	sev upstream.Batch[models.SeverityRecord],
	at time.Time,
) *models.Snapshot {
	severity, avgs := c.Series(sev.Records)

	return &models.Snapshot{
		FetchedAt:         at,
		Permanence:        b.Series(models.Durations(perm.Records)),
		Severity:          severity,
		Averages:          avgs,
		PermanenceRecords: len(perm.Records),
		SeverityRecords:   len(sev.Records),
		Degraded:          perm.Degraded + sev.Degraded,
	}
}

// appendTrend adds the snapshot's averages, dropping the oldest point past the cap.
func appendTrend(trend []models.TrendPoint, s *models.Snapshot) []models.TrendPoint {
	hours := make([]float64, len(s.Averages))
	for i, a := range s.Averages {
		hours[i] = a.Hours
	}

	trend = append(trend, models.TrendPoint{At: s.FetchedAt, Hours: hours})
	if over := len(trend) - maxTrendPoints; over > 0 {
		trend = append(trend[:0:0], trend[over:]...)
	}
	return trend
}
