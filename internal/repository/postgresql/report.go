package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/report"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// ========================================
// PAYROLL SUMMARY REPORT
// ========================================

func (r *reportRepositoryImpl) GetPayrollSummaryReport(ctx context.Context, month, year int) ([]report.PayrollSummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id,
			TRIM(e.first_name || ' ' || e.last_name),
			COALESCE(e.department, ''),
			p.gross_salary,
			p.net_salary,
			p.gross_salary - p.net_salary
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.period_month = $1 AND p.period_year = $2 AND p.status = 'published'
		ORDER BY e.last_name ASC, e.first_name ASC
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll summary: %w", err)
	}
	defer rows.Close()

	result := make([]report.PayrollSummaryRow, 0)
	for rows.Next() {
		var row report.PayrollSummaryRow
		if err := rows.Scan(
			&row.EmployeeID,
			&row.EmployeeName,
			&row.Department,
			&row.GrossSalary,
			&row.NetSalary,
			&row.Deductions,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ========================================
// LEAVE SUMMARY REPORT
// ========================================

func (r *reportRepositoryImpl) countLeaveBy(ctx context.Context, column string, year int) (map[string]int64, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM leave_requests
		WHERE EXTRACT(YEAR FROM start_date)::int = $1
		GROUP BY %s
	`, column, column)

	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to count leave by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

func (r *reportRepositoryImpl) GetLeaveStatusCounts(ctx context.Context, year int) (map[string]int64, error) {
	return r.countLeaveBy(ctx, "status", year)
}

func (r *reportRepositoryImpl) GetLeaveTypeCounts(ctx context.Context, year int) (map[string]int64, error) {
	return r.countLeaveBy(ctx, "type", year)
}

// GetLeaveDaysByEmployee sums approved days per employee, clipped to the year
func (r *reportRepositoryImpl) GetLeaveDaysByEmployee(ctx context.Context, year int) ([]report.LeaveDaysRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id,
			TRIM(e.first_name || ' ' || e.last_name),
			COALESCE(e.department, ''),
			COUNT(*),
			COALESCE(SUM(LEAST(lr.end_date, make_date($1, 12, 31)) - GREATEST(lr.start_date, make_date($1, 1, 1)) + 1), 0)
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		WHERE lr.status = 'approved'
		  AND lr.start_date <= make_date($1, 12, 31)
		  AND lr.end_date >= make_date($1, 1, 1)
		GROUP BY e.id, e.first_name, e.last_name, e.department
		ORDER BY 5 DESC, e.last_name ASC
	`

	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave days by employee: %w", err)
	}
	defer rows.Close()

	result := make([]report.LeaveDaysRow, 0)
	for rows.Next() {
		var row report.LeaveDaysRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.Department, &row.Requests, &row.DaysTaken); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ========================================
// NEW HIRE REPORT
// ========================================

func (r *reportRepositoryImpl) GetNewHireReport(ctx context.Context, startDate, endDate string) ([]report.NewHireRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			id,
			TRIM(first_name || ' ' || last_name),
			email,
			position,
			COALESCE(department, ''),
			TO_CHAR(hire_date, 'YYYY-MM-DD'),
			user_id IS NOT NULL
		FROM employees
		WHERE hire_date BETWEEN $1::date AND $2::date
		ORDER BY hire_date ASC, last_name ASC
	`

	rows, err := q.Query(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get new hires: %w", err)
	}
	defer rows.Close()

	result := make([]report.NewHireRow, 0)
	for rows.Next() {
		var row report.NewHireRow
		if err := rows.Scan(&row.EmployeeID, &row.FullName, &row.Email, &row.Position, &row.Department, &row.HireDate, &row.HasAccount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
