package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveRequest     NotificationType = "leave_request"
	TypeLeaveApproved    NotificationType = "leave_approved"
	TypeLeaveRejected    NotificationType = "leave_rejected"
	TypePayslipAvailable NotificationType = "payslip_available"
	TypeDocumentUploaded NotificationType = "document_uploaded"
	TypeRoleChanged      NotificationType = "role_changed"
	TypeClaimSubmitted   NotificationType = "claim_submitted"
	TypeClaimResolved    NotificationType = "claim_resolved"
	TypeSystem           NotificationType = "system"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeaveRequest,
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypePayslipAvailable,
		TypeDocumentUploaded,
		TypeRoleChanged,
		TypeClaimSubmitted,
		TypeClaimResolved,
		TypeSystem,
	}
}

func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Notification represents a notification entity
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	Read      bool
	ReadAt    *time.Time
	Deleted   bool
	CreatedAt time.Time
}

// NotificationPreference represents user preference for a notification type
type NotificationPreference struct {
	UserID           string
	NotificationType NotificationType
	EmailEnabled     bool
	PushEnabled      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
