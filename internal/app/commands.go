package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/services"
)

// DefaultTickInterval is how often expired toasts are swept.
const DefaultTickInterval = 2 * time.Second

// notificationDurations is how long each kind of toast stays on screen.
// Errors linger so a failed refresh is not missed.
var notificationDurations = map[NotificationType]time.Duration{
	NotificationSuccess: 3 * time.Second,
	NotificationInfo:    3 * time.Second,
	NotificationWarning: 5 * time.Second,
	NotificationError:   10 * time.Second,
}

// Services is the part of the service manager the UI depends on.
type Services interface {
	Refresh(ctx context.Context) (*models.Snapshot, error)
	Subscribe() (chan services.ServiceEvent, tea.Cmd)
	Unsubscribe(ch chan services.ServiceEvent)
	Latest() *models.Snapshot
	Trend() []models.TrendPoint
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// refreshCmd runs one refresh cycle. Superseded cycles report no error.
func refreshCmd(svc Services) tea.Cmd {
	return func() tea.Msg {
		snap, err := svc.Refresh(context.Background())
		if errors.Is(err, services.ErrSuperseded) {
			err = nil
		}
		return RefreshResultMsg{Snapshot: snap, Error: err}
	}
}

// startRefreshCmd marks the refresh as loading and starts it.
func startRefreshCmd(svc Services) tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return StartLoadingMsg{Resource: "refresh"} },
		refreshCmd(svc),
	)
}

// subscribeToServicesCmd subscribes and hands over whatever the manager
// published before the subscription existed.
func subscribeToServicesCmd(svc Services) tea.Cmd {
	ch, _ := svc.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{
			Channel: ch,
			Latest:  svc.Latest(),
			Trend:   svc.Trend(),
		}
	}
}

// waitForServiceEventCmd blocks for the next event; a closed channel ends the loop.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifyCmd shows a toast of the given type for that type's duration.
func notifyCmd(t NotificationType, message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     t,
			Message:  message,
			Duration: notificationDurations[t],
		}
	}
}
