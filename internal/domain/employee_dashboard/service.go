package employee_dashboard

import "context"

// EmployeeDashboardService defines the interface for employee dashboard operations
type EmployeeDashboardService interface {
	// GetDashboard returns the caller's own overview, gathered concurrently
	GetDashboard(ctx context.Context) (*EmployeeDashboardResponse, error)
}
