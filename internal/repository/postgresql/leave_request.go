package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestSelect = `
	SELECT lr.id, lr.employee_id, lr.type, lr.start_date, lr.end_date, lr.reason,
	       lr.status, lr.approved_by, lr.rejection_reason, lr.created_at, lr.updated_at,
	       NULLIF(TRIM(e.first_name || ' ' || e.last_name), ''), e.user_id
	FROM leave_requests lr
	JOIN employees e ON e.id = lr.employee_id`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.Type,
		&lr.StartDate,
		&lr.EndDate,
		&lr.Reason,
		&lr.Status,
		&lr.ApprovedBy,
		&lr.RejectionReason,
		&lr.CreatedAt,
		&lr.UpdatedAt,
		&lr.EmployeeName,
		&lr.EmployeeUserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		id, err := newID()
		if err != nil {
			return leave.LeaveRequest{}, err
		}
		request.ID = id
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query,
		request.ID,
		request.EmployeeID,
		request.Type,
		request.StartDate,
		request.EndDate,
		request.Reason,
		request.Status,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	return r.GetByID(ctx, request.ID)
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	return scanLeaveRequest(q.QueryRow(ctx, leaveRequestSelect+` WHERE lr.id = $1`, id))
}

func (r *leaveRequestRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.query(ctx, leaveRequestSelect+` WHERE lr.employee_id = $1 ORDER BY lr.created_at DESC`, employeeID)
}

func (r *leaveRequestRepositoryImpl) GetPending(ctx context.Context) ([]leave.LeaveRequest, error) {
	return r.query(ctx, leaveRequestSelect+` WHERE lr.status = $1 ORDER BY lr.created_at ASC`, leave.LeaveRequestStatusPending)
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var conditions []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("lr.type = $%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("lr.employee_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests lr`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))
	query := fmt.Sprintf(`%s%s ORDER BY lr.created_at DESC LIMIT $%d OFFSET $%d`,
		leaveRequestSelect, where, len(args)-1, len(args))

	requests, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.LeaveRequestStatus, approvedBy *string, rejectionReason *string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, approved_by = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := q.Exec(ctx, query, id, status, approvedBy, rejectionReason)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if tag.RowsAffected() == 0 {
		// distinguish a missing row from one that was already decided
		if _, err := r.GetByID(ctx, id); err != nil {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	return r.GetByID(ctx, id)
}

// GetApprovedInRange covers requests starting in, ending in, or spanning the range.
func (r *leaveRequestRepositoryImpl) GetApprovedInRange(ctx context.Context, start, end time.Time) ([]leave.LeaveRequest, error) {
	query := leaveRequestSelect + `
		WHERE lr.status = 'approved'
		  AND (
		       (lr.start_date BETWEEN $1 AND $2)
		    OR (lr.end_date BETWEEN $1 AND $2)
		    OR (lr.start_date <= $1 AND lr.end_date >= $2)
		  )
		ORDER BY lr.start_date ASC`
	return r.query(ctx, query, start, end)
}

func (r *leaveRequestRepositoryImpl) GetUpcomingForEmployee(ctx context.Context, employeeID string, from time.Time, limit int) ([]leave.LeaveRequest, error) {
	query := leaveRequestSelect + `
		WHERE lr.employee_id = $1
		  AND lr.status IN ('pending', 'approved')
		  AND lr.end_date >= $2
		ORDER BY lr.start_date ASC
		LIMIT $3`
	return r.query(ctx, query, employeeID, from, limit)
}
