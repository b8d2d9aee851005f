package leave

import (
	"context"
	"time"
)

type LeaveService interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveRequestResponse, error)
	GetByID(ctx context.Context, id string) (LeaveRequestResponse, error)
	GetMine(ctx context.Context) ([]LeaveRequestResponse, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
	GetPending(ctx context.Context) ([]LeaveRequestResponse, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequestResponse, int64, error)
	Approve(ctx context.Context, id string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, id string, req RejectLeaveRequest) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, id string) (LeaveRequestResponse, error)
	GetForCalendar(ctx context.Context, start, end time.Time) ([]LeaveRequest, error)
}
