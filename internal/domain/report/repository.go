package report

import "context"

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// Payroll Summary Report, published payslips only
	GetPayrollSummaryReport(ctx context.Context, month, year int) ([]PayrollSummaryRow, error)

	// Leave Summary Report
	GetLeaveStatusCounts(ctx context.Context, year int) (map[string]int64, error)
	GetLeaveTypeCounts(ctx context.Context, year int) (map[string]int64, error)
	GetLeaveDaysByEmployee(ctx context.Context, year int) ([]LeaveDaysRow, error)

	// New Hire Report
	GetNewHireReport(ctx context.Context, startDate, endDate string) ([]NewHireRow, error)
}
