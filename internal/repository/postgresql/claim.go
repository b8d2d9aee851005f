package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/claim"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type claimRepositoryImpl struct {
	db *database.DB
}

func NewClaimRepository(db *database.DB) claim.ClaimRepository {
	return &claimRepositoryImpl{db: db}
}

const claimSelect = `
	SELECT c.id, c.employee_id, c.type, c.description, c.is_urgent, c.status,
	       c.attachment_url, c.processed_by, c.resolution_note, c.created_at, c.updated_at,
	       NULLIF(TRIM(e.first_name || ' ' || e.last_name), ''), e.user_id
	FROM claims c
	JOIN employees e ON e.id = c.employee_id`

func scanClaim(row pgx.Row) (claim.Claim, error) {
	var c claim.Claim
	err := row.Scan(
		&c.ID,
		&c.EmployeeID,
		&c.Type,
		&c.Description,
		&c.IsUrgent,
		&c.Status,
		&c.AttachmentURL,
		&c.ProcessedBy,
		&c.ResolutionNote,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.EmployeeName,
		&c.EmployeeUserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return claim.Claim{}, claim.ErrClaimNotFound
		}
		return claim.Claim{}, err
	}
	return c, nil
}

func (r *claimRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]claim.Claim, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]claim.Claim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func (r *claimRepositoryImpl) Create(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	q := GetQuerier(ctx, r.db)

	if c.ID == "" {
		id, err := newID()
		if err != nil {
			return claim.Claim{}, err
		}
		c.ID = id
	}

	_, err := q.Exec(ctx, `
		INSERT INTO claims (id, employee_id, type, description, is_urgent, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.EmployeeID, c.Type, c.Description, c.IsUrgent, c.Status)
	if err != nil {
		return claim.Claim{}, err
	}
	return r.GetByID(ctx, c.ID)
}

func (r *claimRepositoryImpl) GetByID(ctx context.Context, id string) (claim.Claim, error) {
	q := GetQuerier(ctx, r.db)
	return scanClaim(q.QueryRow(ctx, claimSelect+` WHERE c.id = $1`, id))
}

func (r *claimRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]claim.Claim, error) {
	return r.query(ctx, claimSelect+` WHERE c.employee_id = $1 ORDER BY c.created_at DESC`, employeeID)
}

func (r *claimRepositoryImpl) List(ctx context.Context, filter claim.ClaimFilter) ([]claim.Claim, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var conditions []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("c.type = $%d", len(args)))
	}
	if filter.IsUrgent != nil {
		args = append(args, *filter.IsUrgent)
		conditions = append(conditions, fmt.Sprintf("c.is_urgent = $%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("c.employee_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM claims c`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))
	query := fmt.Sprintf(`%s%s ORDER BY c.is_urgent DESC, c.created_at DESC LIMIT $%d OFFSET $%d`,
		claimSelect, where, len(args)-1, len(args))

	claims, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

func (r *claimRepositoryImpl) UpdateStatus(ctx context.Context, id string, status claim.ClaimStatus, processedBy string, note *string) (claim.Claim, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE claims
		SET status = $2, processed_by = $3, resolution_note = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, status, processedBy, note)
	if err != nil {
		return claim.Claim{}, err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return claim.Claim{}, err
		}
		return claim.Claim{}, claim.ErrClaimAlreadyProcessed
	}
	return r.GetByID(ctx, id)
}

func (r *claimRepositoryImpl) SetAttachment(ctx context.Context, id string, url string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, claim.ErrClaimNotFound,
		`UPDATE claims SET attachment_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
}

func (r *claimRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM claims WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return claim.ErrClaimAlreadyProcessed
	}
	return nil
}
