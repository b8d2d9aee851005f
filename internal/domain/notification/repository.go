package notification

import (
	"context"
)

// Repository defines the notification repository interface.
// Reads and counts never include soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByUserID(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]*Notification, int, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, ids []string, userID string) (int64, error)
	// MarkAllAsRead is a single UPDATE over the user's unread rows.
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	// Delete soft-deletes; it returns ErrNotificationNotFound when the row is not the user's.
	Delete(ctx context.Context, id string, userID string) error

	// Preferences
	GetPreferences(ctx context.Context, userID string) ([]*NotificationPreference, error)
	UpsertPreference(ctx context.Context, pref *NotificationPreference) error
	IsNotificationEnabled(ctx context.Context, userID string, notifType NotificationType) (bool, error)
}
