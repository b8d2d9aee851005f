package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrLeaveOverlap                 = errors.New("leave request overlaps an existing pending or approved request")
	ErrNotOwner                     = errors.New("only the requesting employee can cancel this leave request")
	ErrNoEmployeeRecord             = errors.New("no employee record is linked to this account")
	ErrForbidden                    = errors.New("not allowed to access leave requests")
)
