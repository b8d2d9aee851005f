package calendar

import (
	"strconv"
	"strings"
	"time"
)

const (
	EventTypeLeave   = "leave"
	EventTypeHoliday = "holiday"

	HolidayColor = "#ed8936"

	// MaxRangeDays bounds a single calendar query.
	MaxRangeDays = 366
)

var leaveColors = map[string]string{
	"vacation": "#4299e1",
	"sick":     "#f56565",
	"personal": "#9f7aea",
	"other":    "#a0aec0",
}

// LeaveColor returns the display color of a leave type.
func LeaveColor(leaveType string) string {
	if c, ok := leaveColors[leaveType]; ok {
		return c
	}
	return leaveColors["other"]
}

type Holiday struct {
	ID          string
	Name        string
	Date        time.Time
	IsRecurring bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event is one all-day entry on the shared calendar. End is exclusive.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	AllDay       bool      `json:"all_day"`
	Type         string    `json:"type"`
	Color        string    `json:"color"`
	Description  string    `json:"description,omitempty"`
	EmployeeID   string    `json:"employee_id,omitempty"`
	EmployeeName string    `json:"employee_name,omitempty"`
}

// HolidayEvents expands h into events within [start, end]. Recurring holidays
// produce one event per year in range, with ids of the form "{id}-{year}".
func HolidayEvents(h Holiday, start, end time.Time) []Event {
	if !h.IsRecurring {
		if h.Date.Before(start) || h.Date.After(end) {
			return nil
		}
		return []Event{holidayEvent(h.ID, h.Name, h.Date)}
	}

	var events []Event
	for year := start.Year(); year <= end.Year(); year++ {
		day := time.Date(year, h.Date.Month(), h.Date.Day(), 0, 0, 0, 0, time.UTC)
		// Feb 29 in a non-leap year normalizes into March; skip it.
		if day.Month() != h.Date.Month() {
			continue
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		events = append(events, holidayEvent(h.ID+"-"+strconv.Itoa(year), h.Name, day))
	}
	return events
}

func holidayEvent(id, name string, day time.Time) Event {
	return Event{
		ID:     id,
		Title:  name,
		Start:  day,
		End:    day.AddDate(0, 0, 1),
		AllDay: true,
		Type:   EventTypeHoliday,
		Color:  HolidayColor,
	}
}

// LeaveEvent builds the calendar entry of an approved leave request.
// An empty employee name falls back to "Employee".
func LeaveEvent(id, employeeID, employeeName, leaveType, reason string, start, end time.Time) Event {
	name := strings.TrimSpace(employeeName)
	if name == "" {
		name = "Employee"
	}
	typeLabel := leaveType
	if typeLabel != "" {
		typeLabel = strings.ToUpper(typeLabel[:1]) + typeLabel[1:]
	}
	return Event{
		ID:           id,
		Title:        name + " - " + typeLabel + " Leave",
		Start:        start,
		End:          end.AddDate(0, 0, 1),
		AllDay:       true,
		Type:         EventTypeLeave,
		Color:        LeaveColor(leaveType),
		Description:  reason,
		EmployeeID:   employeeID,
		EmployeeName: name,
	}
}
