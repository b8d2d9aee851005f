package department

import "time"

// Department is a catalogue entry; employees reference it by name.
type Department struct {
	ID          string
	Name        string
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Aggregates
	EmployeeCount int64
	TeamCount     int64
}
