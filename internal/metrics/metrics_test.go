package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
)

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Permanence: models.ChartSeries{
			Labels: []string{"up to 6h", "more than 6h"},
			Values: []float64{3, 1},
		},
		Averages: []models.CategoryAverage{
			{Key: "Baixa", Name: "Low", Hours: 1.5, Count: 2},
			{Key: "Alta", Name: "High", Hours: 0, Count: 0},
		},
		Degraded: 2,
	}
}

func TestObserveSnapshot(t *testing.T) {
	m := New()
	m.ObserveSnapshot(sampleSnapshot())

	if got := testutil.ToFloat64(m.bucketCases.WithLabelValues("up to 6h")); got != 3 {
		t.Errorf("bucket up to 6h = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.bucketCases.WithLabelValues("more than 6h")); got != 1 {
		t.Errorf("bucket more than 6h = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.categoryHours.WithLabelValues("Low")); got != 1.5 {
		t.Errorf("Low avg = %v, want 1.5", got)
	}
	if got := testutil.ToFloat64(m.categoryCases.WithLabelValues("Low")); got != 2 {
		t.Errorf("Low cases = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.degraded); got != 2 {
		t.Errorf("degraded = %v, want 2", got)
	}
}

func TestObserveSnapshot_ReplacesPrevious(t *testing.T) {
	m := New()
	m.ObserveSnapshot(sampleSnapshot())
	m.ObserveSnapshot(&models.Snapshot{
		Permanence: models.ChartSeries{Labels: []string{"up to 12h"}, Values: []float64{7}},
	})

	if n := testutil.CollectAndCount(m.bucketCases); n != 1 {
		t.Errorf("bucket series = %d, want 1", n)
	}
	if n := testutil.CollectAndCount(m.categoryHours); n != 0 {
		t.Errorf("category series = %d, want 0", n)
	}
}

func TestObserveSnapshot_Nil(t *testing.T) {
	m := New()
	m.ObserveSnapshot(nil)

	if n := testutil.CollectAndCount(m.bucketCases); n != 0 {
		t.Errorf("bucket series = %d, want 0", n)
	}
}

func TestObserveRefreshAndFetch(t *testing.T) {
	m := New()
	m.ObserveRefresh(ResultSuccess)
	m.ObserveRefresh(ResultSuccess)
	m.ObserveRefresh(ResultError)
	m.ObserveFetch("permanence", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.refreshes.WithLabelValues(ResultSuccess)); got != 2 {
		t.Errorf("success refreshes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.refreshes.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("error refreshes = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.fetchDuration); n != 1 {
		t.Errorf("fetch histogram series = %d, want 1", n)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSnapshot(sampleSnapshot())

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if !strings.Contains(string(body), `erwait_bucket_cases{bucket="up to 6h"} 3`) {
		t.Errorf("metrics output missing bucket gauge:\n%s", body)
	}
}

func TestShutdownWithoutServe(t *testing.T) {
	if err := New().Shutdown(t.Context()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
