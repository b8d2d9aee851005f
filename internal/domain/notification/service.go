package notification

import (
	"context"
)

// Notifier is the part of the service other domains use to raise notifications.
type Notifier interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	NotifyLeaveRequest(ctx context.Context, recipientIDs []string, employeeName, leaveType, startDate, endDate, leaveRequestID string) error
	NotifyLeaveStatus(ctx context.Context, userID string, approved bool, leaveType, startDate, endDate, reason string) error
	NotifyPayslipAvailable(ctx context.Context, userID string, month, year int, payslipID string) error
	NotifyDocumentUploaded(ctx context.Context, userID, documentName, employeeID string) error
	NotifyRoleChanged(ctx context.Context, userID, newRole string) error
	NotifyClaimSubmitted(ctx context.Context, recipientIDs []string, employeeName, claimType string, urgent bool, claimID string) error
	NotifyClaimResolved(ctx context.Context, userID string, processed bool, claimType, note, claimID string) error
	NotifySystem(ctx context.Context, userIDs []string, title, message string, data map[string]interface{}) error
}

// Service defines the notification service interface
type Service interface {
	Notifier

	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	// Direct operations
	GetNotifications(ctx context.Context, userID string, req ListNotificationsRequest) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) (int64, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID string, notificationID string) error

	// Preferences
	GetPreferences(ctx context.Context, userID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req UpdatePreferenceRequest) error

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
