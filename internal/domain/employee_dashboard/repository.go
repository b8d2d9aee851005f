package employee_dashboard

import "context"

// EmployeeDashboardRepository holds per-employee aggregates not served by the domain repositories.
type EmployeeDashboardRepository interface {
	// GetLeaveDaysTaken sums approved leave days per type within year, both ends inclusive.
	GetLeaveDaysTaken(ctx context.Context, employeeID string, year int) (map[string]int64, error)
}
