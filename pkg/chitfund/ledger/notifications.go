package ledger

import (
	"context"
	"time"

	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// notify prepends a notification. The caller persists. Must hold l.mu.
func (l *Ledger) notify(userID, title, message string, typ models.NotificationType) {
	n := models.Notification{
		ID:      l.opts.NewID(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Date:    l.opts.Clock().UTC().Format(time.RFC3339),
		Type:    typ,
	}
	l.state.Notifications = append([]models.Notification{n}, l.state.Notifications...)
}

// NotificationsFor lists the user's notifications, newest first
func (l *Ledger) NotificationsFor(userID string) []models.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return filter(l.state.Notifications, func(n models.Notification) bool { return n.UserID == userID })
}

// MarkNotificationAsRead sets the read flag
func (l *Ledger) MarkNotificationAsRead(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.state.Notifications {
		if l.state.Notifications[i].ID == id {
			l.state.Notifications[i].Read = true
			l.persist(ctx, kv.KeyNotifications)
			metrics.ObserveOperation("mark_notification_read", nil)
			return nil
		}
	}
	metrics.ObserveOperation("mark_notification_read", ErrNotificationNotFound)
	return ErrNotificationNotFound
}
