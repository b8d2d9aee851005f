package calendar

import (
	"context"
	"io"
	"time"
)

type CalendarService interface {
	GetLeaveEvents(ctx context.Context, start, end time.Time) ([]Event, error)
	GetHolidayEvents(ctx context.Context, start, end time.Time) ([]Event, error)
	GetAllEvents(ctx context.Context, start, end time.Time) ([]Event, error)
	ExportICS(ctx context.Context, start, end time.Time, w io.Writer) error

	GetHolidays(ctx context.Context, year int) ([]HolidayResponse, error)
	CreateHoliday(ctx context.Context, req HolidayRequest) (HolidayResponse, error)
	UpdateHoliday(ctx context.Context, id string, req HolidayRequest) (HolidayResponse, error)
	DeleteHoliday(ctx context.Context, id string) error
	SeedHolidays(ctx context.Context, holidays []HolidayRequest) (inserted int, err error)
}
