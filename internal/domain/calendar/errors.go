package calendar

import "errors"

var (
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrHolidayExists   = errors.New("a holiday with this name already exists on this date")
	ErrForbidden       = errors.New("not allowed to manage holidays")
	ErrInvalidRange    = errors.New("start must be on or before end and the range may span at most 366 days")
)
