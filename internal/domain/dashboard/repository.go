package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeSummary combines headcount figures in a single query
type EmployeeSummary struct {
	Total        int64
	NewHires     int64 // hired within 30 days
	ByDepartment map[string]int64
}

// LeaveSummary combines pending and current-day leave counts
type LeaveSummary struct {
	Pending       int64
	ApprovedToday int64
}

// PayslipSummary counts payslips of one period by state
type PayslipSummary struct {
	Draft     int64
	Published int64
	Viewed    int64
}

type InvoiceTotal struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DashboardRepository holds the aggregate queries behind the HR dashboard.
type DashboardRepository interface {
	GetEmployeeSummary(ctx context.Context, since time.Time) (EmployeeSummary, error)
	GetLeaveSummary(ctx context.Context, today time.Time) (LeaveSummary, error)
	GetPayslipSummary(ctx context.Context, year, month int) (PayslipSummary, error)
	GetInvoiceTotals(ctx context.Context) (map[string]InvoiceTotal, error)
}
