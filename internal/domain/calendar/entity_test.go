package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestHolidayEvents_Recurring(t *testing.T) {
	h := Holiday{ID: "h1", Name: "New Year", Date: day("2020-01-01"), IsRecurring: true}

	events := HolidayEvents(h, day("2024-06-01"), day("2026-06-01"))
	require.Len(t, events, 2)
	assert.Equal(t, "h1-2025", events[0].ID)
	assert.Equal(t, "h1-2026", events[1].ID)
	assert.Equal(t, day("2025-01-01"), events[0].Start)
	assert.Equal(t, day("2025-01-02"), events[0].End)
	assert.Equal(t, HolidayColor, events[0].Color)
	assert.True(t, events[0].AllDay)
	assert.Equal(t, EventTypeHoliday, events[0].Type)
}

func TestHolidayEvents_LeapDaySkipped(t *testing.T) {
	h := Holiday{ID: "leap", Name: "Leap", Date: day("2024-02-29"), IsRecurring: true}
	events := HolidayEvents(h, day("2025-01-01"), day("2025-12-31"))
	assert.Empty(t, events)
}

func TestHolidayEvents_OneOff(t *testing.T) {
	h := Holiday{ID: "h2", Name: "Company Day", Date: day("2025-05-15")}

	assert.Len(t, HolidayEvents(h, day("2025-05-01"), day("2025-05-31")), 1)
	assert.Len(t, HolidayEvents(h, day("2025-05-15"), day("2025-05-15")), 1)
	assert.Empty(t, HolidayEvents(h, day("2025-06-01"), day("2025-06-30")))

	events := HolidayEvents(h, day("2025-05-01"), day("2025-05-31"))
	assert.Equal(t, "h2", events[0].ID)
}

func TestLeaveEvent(t *testing.T) {
	e := LeaveEvent("l1", "e1", "Jane Doe", "vacation", "Beach", day("2025-03-10"), day("2025-03-12"))
	assert.Equal(t, "Jane Doe - Vacation Leave", e.Title)
	assert.Equal(t, "#4299e1", e.Color)
	assert.Equal(t, day("2025-03-13"), e.End)
	assert.Equal(t, "Beach", e.Description)
	assert.Equal(t, EventTypeLeave, e.Type)

	anon := LeaveEvent("l2", "e2", "  ", "sick", "", day("2025-03-10"), day("2025-03-10"))
	assert.Equal(t, "Employee - Sick Leave", anon.Title)
	assert.Equal(t, "#f56565", anon.Color)

	assert.Equal(t, "#a0aec0", LeaveColor("unknown"))
	assert.Equal(t, "#9f7aea", LeaveColor("personal"))
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(day("2025-01-01"), day("2025-01-01")))
	assert.NoError(t, ValidateRange(day("2024-01-01"), day("2025-01-01")))
	assert.ErrorIs(t, ValidateRange(day("2025-01-02"), day("2025-01-01")), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(day("2024-01-01"), day("2025-01-02")), ErrInvalidRange)
}

func TestRangeRequest_Validate(t *testing.T) {
	r := RangeRequest{Start: "2025-01-01", End: "2025-01-31"}
	require.NoError(t, r.Validate())
	assert.Equal(t, day("2025-01-31"), r.To)

	bad := RangeRequest{Start: "2025-02-01", End: "2025-01-01"}
	assert.Error(t, bad.Validate())
}
