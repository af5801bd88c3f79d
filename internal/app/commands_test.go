package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/services"
)

// MockServices implements Services for testing
type MockServices struct {
	RefreshFunc  func(ctx context.Context) (*models.Snapshot, error)
	latest       *models.Snapshot
	trend        []models.TrendPoint
	ch           chan services.ServiceEvent
	unsubscribed bool
}

func (m *MockServices) Refresh(ctx context.Context) (*models.Snapshot, error) {
	if m.RefreshFunc == nil {
		return &models.Snapshot{Sequence: 1}, nil
	}
	return m.RefreshFunc(ctx)
}

func (m *MockServices) Subscribe() (chan services.ServiceEvent, tea.Cmd) {
	if m.ch == nil {
		m.ch = make(chan services.ServiceEvent, 10)
	}
	return m.ch, services.WaitForEvent(m.ch)
}

func (m *MockServices) Unsubscribe(ch chan services.ServiceEvent) {
	if ch == m.ch && !m.unsubscribed {
		m.unsubscribed = true
		close(ch)
	}
}

func (m *MockServices) Latest() *models.Snapshot {
	return m.latest
}

func (m *MockServices) Trend() []models.TrendPoint {
	return m.trend
}

func TestTickCmd(t *testing.T) {
	msg := tickCmd(time.Millisecond)()
	if _, ok := msg.(TickMsg); !ok {
		t.Errorf("expected TickMsg, got %T", msg)
	}
}

func TestNotifyCmd(t *testing.T) {
	tests := []struct {
		notifType NotificationType
		want      time.Duration
	}{
		{NotificationSuccess, 3 * time.Second},
		{NotificationInfo, 3 * time.Second},
		{NotificationWarning, 5 * time.Second},
		{NotificationError, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.notifType.String(), func(t *testing.T) {
			msg := notifyCmd(tt.notifType, "msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.notifType {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.notifType)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration != tt.want {
				t.Errorf("Duration = %v, want %v", addMsg.Duration, tt.want)
			}
		})
	}
}

func TestClearNotificationCmd(t *testing.T) {
	msg := clearNotificationCmd("id", time.Millisecond)()
	if remove, ok := msg.(RemoveNotificationMsg); !ok || remove.ID != "id" {
		t.Errorf("clearNotificationCmd() msg = %v", msg)
	}
}

func TestRefreshCmd(t *testing.T) {
	tests := []struct {
		name    string
		snap    *models.Snapshot
		err     error
		wantErr bool
	}{
		{name: "success", snap: &models.Snapshot{Sequence: 4}},
		{name: "failure", err: errors.New("backend down"), wantErr: true},
		{name: "superseded", err: services.ErrSuperseded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockServices{
				RefreshFunc: func(ctx context.Context) (*models.Snapshot, error) {
					return tt.snap, tt.err
				},
			}

			msg, ok := refreshCmd(svc)().(RefreshResultMsg)
			if !ok {
				t.Fatalf("expected RefreshResultMsg, got %T", msg)
			}
			if (msg.Error != nil) != tt.wantErr {
				t.Errorf("Error = %v, wantErr %v", msg.Error, tt.wantErr)
			}
			if msg.Snapshot != tt.snap {
				t.Errorf("Snapshot = %v, want %v", msg.Snapshot, tt.snap)
			}
		})
	}
}

func TestSubscribeAndWaitForServiceEvent(t *testing.T) {
	published := &models.Snapshot{Sequence: 3}
	svc := &MockServices{
		latest: published,
		trend:  []models.TrendPoint{{Hours: []float64{1}}},
	}

	msg, ok := subscribeToServicesCmd(svc)().(SubscriptionEventMsg)
	if !ok {
		t.Fatalf("expected SubscriptionEventMsg, got %T", msg)
	}
	if msg.Latest != published || len(msg.Trend) != 1 {
		t.Error("subscription should carry what was already published")
	}

	msg.Channel <- services.RefreshingEvent{Sequence: 1}
	got, ok := waitForServiceEventCmd(msg.Channel)().(ServiceEventMsg)
	if !ok {
		t.Fatalf("expected ServiceEventMsg, got %T", got)
	}
	if _, ok := got.Event.(services.RefreshingEvent); !ok {
		t.Errorf("Event = %T, want RefreshingEvent", got.Event)
	}

	close(msg.Channel)
	if m := waitForServiceEventCmd(msg.Channel)(); m != nil {
		t.Errorf("closed channel should yield nil, got %v", m)
	}
}
