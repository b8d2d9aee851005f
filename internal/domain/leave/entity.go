package leave

import (
	"time"
)

type LeaveType string

const (
	LeaveTypeVacation LeaveType = "vacation"
	LeaveTypeSick     LeaveType = "sick"
	LeaveTypePersonal LeaveType = "personal"
	LeaveTypeOther    LeaveType = "other"
)

func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeVacation, LeaveTypeSick, LeaveTypePersonal, LeaveTypeOther:
		return true
	}
	return false
}

func AllLeaveTypes() []LeaveType {
	return []LeaveType{LeaveTypeVacation, LeaveTypeSick, LeaveTypePersonal, LeaveTypeOther}
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected, LeaveRequestStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine allows s -> next.
// Only pending requests move, and only once.
func (s LeaveRequestStatus) CanTransitionTo(next LeaveRequestStatus) bool {
	if s != LeaveRequestStatusPending {
		return false
	}
	switch next {
	case LeaveRequestStatusApproved, LeaveRequestStatusRejected, LeaveRequestStatusCancelled:
		return true
	}
	return false
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	Type       LeaveType

	StartDate time.Time
	EndDate   time.Time
	Reason    string

	Status          LeaveRequestStatus
	ApprovedBy      *string
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	EmployeeName   *string
	EmployeeUserID *string
}

// Days counts calendar days, inclusive of both ends.
func (l LeaveRequest) Days() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

// Overlaps reports whether [start, end] intersects the request's dates.
func (l LeaveRequest) Overlaps(start, end time.Time) bool {
	return !l.StartDate.After(end) && !l.EndDate.Before(start)
}
