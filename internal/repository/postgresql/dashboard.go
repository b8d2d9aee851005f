package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetEmployeeSummary returns headcount, hires since the given date and the per-department split
func (r *dashboardRepositoryImpl) GetEmployeeSummary(ctx context.Context, since time.Time) (dashboard.EmployeeSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN hire_date >= $1 THEN 1 ELSE 0 END), 0) AS new_count
		FROM employees
	`

	summary := dashboard.EmployeeSummary{ByDepartment: map[string]int64{}}
	if err := q.QueryRow(ctx, query, since).Scan(&summary.Total, &summary.NewHires); err != nil {
		return dashboard.EmployeeSummary{}, fmt.Errorf("failed to get employee summary: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT COALESCE(NULLIF(department, ''), 'Unassigned'), COUNT(*)
		FROM employees
		GROUP BY 1
	`)
	if err != nil {
		return dashboard.EmployeeSummary{}, fmt.Errorf("failed to get department counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dept string
		var count int64
		if err := rows.Scan(&dept, &count); err != nil {
			return dashboard.EmployeeSummary{}, err
		}
		summary.ByDepartment[dept] = count
	}
	return summary, rows.Err()
}

// GetLeaveSummary counts pending requests and approved leave covering today
func (r *dashboardRepositoryImpl) GetLeaveSummary(ctx context.Context, today time.Time) (dashboard.LeaveSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = 'approved' AND start_date <= $1 AND end_date >= $1 THEN 1 ELSE 0 END), 0) AS on_leave
		FROM leave_requests
	`

	var summary dashboard.LeaveSummary
	if err := q.QueryRow(ctx, query, today).Scan(&summary.Pending, &summary.ApprovedToday); err != nil {
		return dashboard.LeaveSummary{}, fmt.Errorf("failed to get leave summary: %w", err)
	}
	return summary, nil
}

func (r *dashboardRepositoryImpl) GetPayslipSummary(ctx context.Context, year, month int) (dashboard.PayslipSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'published' AND viewed_by_employee THEN 1 ELSE 0 END), 0)
		FROM payslips
		WHERE period_year = $1 AND period_month = $2
	`

	var summary dashboard.PayslipSummary
	if err := q.QueryRow(ctx, query, year, month).Scan(&summary.Draft, &summary.Published, &summary.Viewed); err != nil {
		return dashboard.PayslipSummary{}, fmt.Errorf("failed to get payslip summary: %w", err)
	}
	return summary, nil
}

// GetInvoiceTotals groups invoice count and amount by status
func (r *dashboardRepositoryImpl) GetInvoiceTotals(ctx context.Context) (map[string]dashboard.InvoiceTotal, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM invoices
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]dashboard.InvoiceTotal)
	for rows.Next() {
		var status string
		var count int64
		var sum decimal.Decimal
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, err
		}
		totals[status] = dashboard.InvoiceTotal{Count: count, Total: sum}
	}
	return totals, rows.Err()
}
