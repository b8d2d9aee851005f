package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee_dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
)

type employeeDashboardRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeDashboardRepository(db *database.DB) employee_dashboard.EmployeeDashboardRepository {
	return &employeeDashboardRepositoryImpl{db: db}
}

// GetLeaveDaysTaken clips each approved request to the year before counting its days.
func (r *employeeDashboardRepositoryImpl) GetLeaveDaysTaken(ctx context.Context, employeeID string, year int) (map[string]int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT type,
		       COALESCE(SUM(LEAST(end_date, make_date($2, 12, 31)) - GREATEST(start_date, make_date($2, 1, 1)) + 1), 0)
		FROM leave_requests
		WHERE employee_id = $1
		  AND status = 'approved'
		  AND start_date <= make_date($2, 12, 31)
		  AND end_date >= make_date($2, 1, 1)
		GROUP BY type
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave days taken: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]int64)
	for rows.Next() {
		var leaveType string
		var days int64
		if err := rows.Scan(&leaveType, &days); err != nil {
			return nil, err
		}
		taken[leaveType] = days
	}
	return taken, rows.Err()
}
