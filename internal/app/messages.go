package app

import (
	"time"

	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
	"github.com/j-veylop/erwait-dashboard-tui/internal/services"
)

// TickMsg drives housekeeping such as expiring toasts.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg marks a resource as loading.
type StartLoadingMsg struct {
	Resource string
}

// RefreshMsg requests a new refresh cycle, as if r was pressed.
type RefreshMsg struct{}

// RefreshResultMsg carries the outcome of a refresh started from the UI.
type RefreshResultMsg struct {
	Snapshot *models.Snapshot
	Error    error
}

// SnapshotUpdatedMsg tells the tabs that State holds a new snapshot.
type SnapshotUpdatedMsg struct {
	Snapshot *models.Snapshot
}

// AddNotificationMsg shows a toast.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg removes a toast by ID.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps an event published by the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg hands the model its service event channel, along
// with the snapshot and trend already published when it subscribed.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
	Latest  *models.Snapshot
	Trend   []models.TrendPoint
}
