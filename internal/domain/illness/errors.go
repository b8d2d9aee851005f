package illness

import "errors"

var (
	ErrIllnessRecordNotFound   = errors.New("illness record not found")
	ErrInvalidStatusTransition = errors.New("illness status can only change from active to recovered or chronic")
	ErrNoEmployeeRecord        = errors.New("no employee record is linked to this account")
	ErrForbidden               = errors.New("not allowed to manage illness records")
)
