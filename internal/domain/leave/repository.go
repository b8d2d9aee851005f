package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	GetPending(ctx context.Context) ([]LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int64, error)
	// HasOverlap checks the employee's pending and approved requests against [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	// UpdateStatus moves a pending request to status. It returns ErrLeaveRequestAlreadyProcessed
	// when the row is no longer pending.
	UpdateStatus(ctx context.Context, id string, status LeaveRequestStatus, approvedBy *string, rejectionReason *string) (LeaveRequest, error)
	// GetApprovedInRange returns approved requests overlapping [start, end].
	GetApprovedInRange(ctx context.Context, start, end time.Time) ([]LeaveRequest, error)
	GetUpcomingForEmployee(ctx context.Context, employeeID string, from time.Time, limit int) ([]LeaveRequest, error)
}
