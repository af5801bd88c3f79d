// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/j-veylop/erwait-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/erwait-dashboard-tui/internal/config"
	"github.com/j-veylop/erwait-dashboard-tui/internal/logger"
	"github.com/j-veylop/erwait-dashboard-tui/internal/metrics"
	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/services/upstream"
)

// ErrSuperseded is returned by Refresh when a newer cycle made this one obsolete.
var ErrSuperseded = errors.New("refresh superseded by a newer cycle")

type (
	// RefreshingEvent is emitted when a refresh cycle starts.
	RefreshingEvent struct {
		CycleID  string
		Sequence uint64
	}

	// SnapshotEvent is emitted when a refresh cycle publishes new data.
	SnapshotEvent struct {
		Snapshot *models.Snapshot
		Trend    []models.TrendPoint
	}

	// ErrorEvent is emitted when a refresh cycle fails.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (RefreshingEvent) isServiceEvent() {}
func (SnapshotEvent) isServiceEvent()   {}
func (ErrorEvent) isServiceEvent()      {}

// Manager runs refresh cycles and routes their results to subscribers.
type Manager struct {
	mu          sync.RWMutex
	subscribers []chan<- ServiceEvent

	source     upstream.Source
	fileSource *upstream.FileSource
	boundaries aggregate.Boundaries
	categories aggregate.Categories
	metrics    *metrics.Metrics

	refreshInterval time.Duration
	notifications   bool
	notify          func(title, message string) error

	// cycleMu guards the fields below.
	cycleMu      sync.Mutex
	sequence     uint64
	inFlightSeq  uint64
	cancelFlight context.CancelFunc
	published    uint64
	latest       *models.Snapshot
	trend        []models.TrendPoint

	ctx       context.Context
	cancel    context.CancelFunc
	stopChan  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewManager creates a new service manager. It reads from RecordsFile when
// set and from the HTTP backend otherwise.
func NewManager(cfg *config.Config) (*Manager, error) {
	var (
		src        upstream.Source
		fileSource *upstream.FileSource
	)

	if cfg.RecordsFile != "" {
		fileSource = upstream.NewFileSource(cfg.RecordsFile)
		if err := fileSource.Watch(); err != nil {
			return nil, fmt.Errorf("failed to watch records file: %w", err)
		}
		logger.Info("watching records file", "path", fileSource.Path())
		src = fileSource
	} else {
		src = upstream.NewClient(cfg.APIBaseURL, cfg.PermanencePath, cfg.SeverityPath, cfg.HTTPTimeout)
	}

	m := newManager(cfg, src)
	m.fileSource = fileSource

	if cfg.MetricsAddr != "" {
		m.metrics.Serve(cfg.MetricsAddr)
	}

	return m, nil
}

func newManager(cfg *config.Config, src upstream.Source) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		source:          src,
		boundaries:      cfg.Boundaries,
		categories:      cfg.Severities,
		metrics:         metrics.New(),
		refreshInterval: cfg.RefreshInterval,
		notifications:   cfg.Notifications,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),
	}
}

// Start launches the auto-refresh ticker and the records file watch loop.
func (m *Manager) Start() {
	if m.refreshInterval <= 0 && m.fileSource == nil {
		return
	}
	m.wg.Add(1)
	go m.run()
}

func (m *Manager) run() {
	defer m.wg.Done()

	var tick <-chan time.Time
	if m.refreshInterval > 0 {
		ticker := time.NewTicker(m.refreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var changes <-chan struct{}
	if m.fileSource != nil {
		changes = m.fileSource.Changes()
	}

	for {
		select {
		case <-tick:
			m.refreshAsync("interval")
		case <-changes:
			m.refreshAsync("records file changed")
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) refreshAsync(reason string) {
	logger.Debug("refresh triggered", "reason", reason)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_, _ = m.Refresh(m.ctx)
	}()
}

// Refresh runs one fetch-and-aggregate cycle and publishes the result.
// Starting a cycle cancels the one in flight; a cycle that ends after a newer
// one was published returns ErrSuperseded and leaves the newer data in place.
func (m *Manager) Refresh(ctx context.Context) (*models.Snapshot, error) {
	cycleCtx, seq, cycleID := m.beginCycle(ctx)
	defer m.endCycle(seq)

	m.broadcast(RefreshingEvent{CycleID: cycleID, Sequence: seq})
	logger.Debug("refresh started", "cycle", cycleID, "sequence", seq)

	// Severity first, then permanence.
	start := time.Now()
	sev, err := m.source.FetchSeverity(cycleCtx)
	m.metrics.ObserveFetch(upstream.EndpointSeverity, time.Since(start))
	if err != nil {
		return nil, m.fail(seq, cycleID, fmt.Errorf("failed to fetch severity records: %w", err))
	}

	start = time.Now()
	perm, err := m.source.FetchPermanence(cycleCtx)
	m.metrics.ObserveFetch(upstream.EndpointPermanence, time.Since(start))
	if err != nil {
		return nil, m.fail(seq, cycleID, fmt.Errorf("failed to fetch permanence records: %w", err))
	}

	snap := buildSnapshot(m.boundaries, m.categories, perm, sev, time.Now())
	snap.CycleID = cycleID
	snap.Sequence = seq

	return m.publish(snap)
}

func (m *Manager) beginCycle(parent context.Context) (context.Context, uint64, string) {
	ctx, cancel := context.WithCancel(parent)

	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	if m.cancelFlight != nil {
		m.cancelFlight()
	}
	m.sequence++
	m.inFlightSeq = m.sequence
	m.cancelFlight = cancel

	return ctx, m.sequence, uuid.NewString()
}

func (m *Manager) endCycle(seq uint64) {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	if m.inFlightSeq == seq && m.cancelFlight != nil {
		m.cancelFlight()
		m.cancelFlight = nil
	}
}

// fail reports err unless the cycle was superseded, which is expected.
func (m *Manager) fail(seq uint64, cycleID string, err error) error {
	m.cycleMu.Lock()
	superseded := seq < m.sequence
	m.cycleMu.Unlock()

	if superseded {
		m.metrics.ObserveRefresh(metrics.ResultStale)
		logger.Debug("superseded refresh abandoned", "cycle", cycleID, "error", err)
		return ErrSuperseded
	}

	m.metrics.ObserveRefresh(metrics.ResultError)
	logger.Error("refresh failed", "cycle", cycleID, "error", err)
	m.broadcast(ErrorEvent{Service: "refresh", Error: err})
	return err
}

func (m *Manager) publish(snap *models.Snapshot) (*models.Snapshot, error) {
	m.cycleMu.Lock()
	if snap.Sequence <= m.published {
		m.cycleMu.Unlock()
		m.metrics.ObserveRefresh(metrics.ResultStale)
		logger.Debug("stale snapshot discarded", "cycle", snap.CycleID, "sequence", snap.Sequence)
		return nil, ErrSuperseded
	}

	previous := m.latest
	m.published = snap.Sequence
	m.latest = snap
	m.trend = appendTrend(m.trend, snap)
	trend := make([]models.TrendPoint, len(m.trend))
	copy(trend, m.trend)
	m.cycleMu.Unlock()

	m.metrics.ObserveSnapshot(snap)
	m.metrics.ObserveRefresh(metrics.ResultSuccess)
	logger.Info("refresh completed",
		"cycle", snap.CycleID,
		"permanence_records", snap.PermanenceRecords,
		"severity_records", snap.SeverityRecords,
		"degraded", snap.Degraded)

	m.broadcast(SnapshotEvent{Snapshot: snap, Trend: trend})
	m.checkNotifications(previous, snap)

	return snap, nil
}

// checkNotifications alerts when the longest-wait bucket grows.
func (m *Manager) checkNotifications(previous, current *models.Snapshot) {
	if !m.notifications || previous == nil || current == nil {
		return
	}

	before, after := previous.OverflowCount(), current.OverflowCount()
	if after <= before {
		return
	}

	labels := current.Permanence.Labels
	bucket := labels[len(labels)-1]
	title := fmt.Sprintf("Long waits: %d cases %s", after, bucket)
	body := fmt.Sprintf("Up from %d at the previous refresh.", before)
	if err := m.notify(title, body); err != nil {
		logger.Warn("failed to send notification", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Latest returns the last published snapshot, or nil before the first one.
func (m *Manager) Latest() *models.Snapshot {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()
	return m.latest
}

// Trend returns a copy of the session trend, oldest first.
func (m *Manager) Trend() []models.TrendPoint {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	out := make([]models.TrendPoint, len(m.trend))
	copy(out, m.trend)
	return out
}

// Categories returns the severity categories in use.
func (m *Manager) Categories() aggregate.Categories {
	return m.categories
}

// Close stops background refreshes and releases the source.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.cancel()
		m.wg.Wait()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.fileSource != nil {
			if err := m.fileSource.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}
