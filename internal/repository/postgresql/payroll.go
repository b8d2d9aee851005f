package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payslipRepositoryImpl struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepositoryImpl{db: db}
}

const payslipSelect = `
	SELECT p.id, p.employee_id, p.period_month, p.period_year, p.issue_date,
	       p.gross_salary, p.net_salary, p.items, p.pdf_url, p.status, p.viewed_by_employee,
	       p.created_at, p.updated_at,
	       NULLIF(TRIM(e.first_name || ' ' || e.last_name), ''), e.user_id
	FROM payslips p
	JOIN employees e ON e.id = p.employee_id`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(
		&p.ID,
		&p.EmployeeID,
		&p.Period.Month,
		&p.Period.Year,
		&p.IssueDate,
		&p.GrossSalary,
		&p.NetSalary,
		&p.Items,
		&p.PDFURL,
		&p.Status,
		&p.ViewedByEmployee,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.EmployeeName,
		&p.EmployeeUserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, err
	}
	if p.Items == nil {
		p.Items = []payroll.PayslipItem{}
	}
	return p, nil
}

func (r *payslipRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payslips := make([]payroll.Payslip, 0)
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}

func (r *payslipRepositoryImpl) Create(ctx context.Context, payslip payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	if payslip.ID == "" {
		id, err := newID()
		if err != nil {
			return payroll.Payslip{}, err
		}
		payslip.ID = id
	}

	query := `
		INSERT INTO payslips (
			id, employee_id, period_month, period_year, issue_date,
			gross_salary, net_salary, items, status, viewed_by_employee
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
	`
	_, err := q.Exec(ctx, query,
		payslip.ID,
		payslip.EmployeeID,
		payslip.Period.Month,
		payslip.Period.Year,
		payslip.IssueDate,
		payslip.GrossSalary,
		payslip.NetSalary,
		payslip.Items,
		payroll.PayslipStatusDraft,
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return payroll.Payslip{}, payroll.ErrPayslipExists
		case database.IsForeignKeyViolation(err):
			return payroll.Payslip{}, payroll.ErrEmployeeNotFound
		}
		return payroll.Payslip{}, err
	}
	return r.GetByID(ctx, payslip.ID)
}

func (r *payslipRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)
	return scanPayslip(q.QueryRow(ctx, payslipSelect+` WHERE p.id = $1`, id))
}

func (r *payslipRepositoryImpl) GetPublishedByEmployeeID(ctx context.Context, employeeID string, limit int) ([]payroll.Payslip, error) {
	query := payslipSelect + `
		WHERE p.employee_id = $1 AND p.status = 'published'
		ORDER BY p.period_year DESC, p.period_month DESC`
	if limit > 0 {
		return r.query(ctx, query+` LIMIT $2`, employeeID, limit)
	}
	return r.query(ctx, query, employeeID)
}

func (r *payslipRepositoryImpl) List(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var conditions []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("p.period_year = $%d", len(args)))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		conditions = append(conditions, fmt.Sprintf("p.period_month = $%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("p.employee_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payslips p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))
	query := fmt.Sprintf(`%s%s ORDER BY p.period_year DESC, p.period_month DESC, e.last_name ASC LIMIT $%d OFFSET $%d`,
		payslipSelect, where, len(args)-1, len(args))

	payslips, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return payslips, total, nil
}

// draftGuard turns a zero-row draft write into NotFound or AlreadyPublished.
func (r *payslipRepositoryImpl) draftGuard(ctx context.Context, id string, affected int64) error {
	if affected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return payroll.ErrPayslipAlreadyPublished
}

func (r *payslipRepositoryImpl) UpdateDraft(ctx context.Context, payslip payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET issue_date = $2, gross_salary = $3, net_salary = $4, items = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
	`
	tag, err := q.Exec(ctx, query, payslip.ID, payslip.IssueDate, payslip.GrossSalary, payslip.NetSalary, payslip.Items)
	if err != nil {
		return err
	}
	return r.draftGuard(ctx, payslip.ID, tag.RowsAffected())
}

func (r *payslipRepositoryImpl) DeleteDraft(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM payslips WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return err
	}
	return r.draftGuard(ctx, id, tag.RowsAffected())
}

func (r *payslipRepositoryImpl) Publish(ctx context.Context, id string, pdfURL string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE payslips
		SET status = 'published', pdf_url = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
	`, id, pdfURL)
	if err != nil {
		return err
	}
	return r.draftGuard(ctx, id, tag.RowsAffected())
}

func (r *payslipRepositoryImpl) SetPDFURL(ctx context.Context, id string, pdfURL string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, payroll.ErrPayslipNotFound,
		`UPDATE payslips SET pdf_url = $2, updated_at = NOW() WHERE id = $1`, id, pdfURL)
}

func (r *payslipRepositoryImpl) MarkViewed(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE payslips
		SET viewed_by_employee = TRUE, updated_at = NOW()
		WHERE id = $1 AND status = 'published'
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotPublished
	}
	return nil
}

func (r *payslipRepositoryImpl) SummaryForPeriod(ctx context.Context, month, year int) ([]payroll.Payslip, error) {
	return r.query(ctx, payslipSelect+`
		WHERE p.period_month = $1 AND p.period_year = $2 AND p.status = 'published'
		ORDER BY e.last_name ASC, e.first_name ASC`, month, year)
}
