package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/invoice"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type invoiceRepositoryImpl struct {
	db *database.DB
}

func NewInvoiceRepository(db *database.DB) invoice.InvoiceRepository {
	return &invoiceRepositoryImpl{db: db}
}

const invoiceSelect = `
	SELECT i.id, i.invoice_number, i.employee_id, i.status, i.issue_date, i.due_date,
	       i.items, i.subtotal, i.tax_rate, i.tax_amount, i.total, i.notes,
	       i.created_at, i.updated_at,
	       NULLIF(TRIM(e.first_name || ' ' || e.last_name), '')
	FROM invoices i
	JOIN employees e ON e.id = i.employee_id`

func scanInvoice(row pgx.Row) (invoice.Invoice, error) {
	var inv invoice.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.EmployeeID,
		&inv.Status,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.Items,
		&inv.Subtotal,
		&inv.TaxRate,
		&inv.TaxAmount,
		&inv.Total,
		&inv.Notes,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invoice.Invoice{}, invoice.ErrInvoiceNotFound
		}
		return invoice.Invoice{}, err
	}
	if inv.Items == nil {
		inv.Items = []invoice.Item{}
	}
	return inv, nil
}

func (r *invoiceRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]invoice.Invoice, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]invoice.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// nextSequence bumps the monthly counter. The row lock it takes serializes concurrent creators.
func nextSequence(ctx context.Context, q database.Querier, period string) (int, error) {
	var seq int
	err := q.QueryRow(ctx, `
		INSERT INTO invoice_sequences (period, last_value)
		VALUES ($1, 1)
		ON CONFLICT (period) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value
	`, period).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return seq, nil
}

func (r *invoiceRepositoryImpl) Create(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	if inv.ID == "" {
		id, err := newID()
		if err != nil {
			return invoice.Invoice{}, err
		}
		inv.ID = id
	}

	insert := func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		seq, err := nextSequence(ctx, q, invoice.SequencePeriod(inv.IssueDate))
		if err != nil {
			return err
		}
		inv.InvoiceNumber = invoice.FormatNumber(inv.IssueDate, seq)

		_, err = q.Exec(ctx, `
			INSERT INTO invoices (
				id, invoice_number, employee_id, status, issue_date, due_date,
				items, subtotal, tax_rate, tax_amount, total, notes
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			inv.ID,
			inv.InvoiceNumber,
			inv.EmployeeID,
			invoice.StatusDraft,
			inv.IssueDate,
			inv.DueDate,
			inv.Items,
			inv.Subtotal,
			inv.TaxRate,
			inv.TaxAmount,
			inv.Total,
			inv.Notes,
		)
		if database.IsForeignKeyViolation(err) {
			return invoice.ErrEmployeeNotFound
		}
		return err
	}

	var err error
	if _, inTx := ctx.Value(txKey).(pgx.Tx); inTx {
		err = insert(ctx)
	} else {
		err = WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
			return insert(TxContext(ctx, tx))
		})
	}
	if err != nil {
		return invoice.Invoice{}, err
	}
	return r.GetByID(ctx, inv.ID)
}

func (r *invoiceRepositoryImpl) GetByID(ctx context.Context, id string) (invoice.Invoice, error) {
	q := GetQuerier(ctx, r.db)
	return scanInvoice(q.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, id))
}

func (r *invoiceRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]invoice.Invoice, error) {
	return r.query(ctx, invoiceSelect+` WHERE i.employee_id = $1 ORDER BY i.created_at DESC`, employeeID)
}

func (r *invoiceRepositoryImpl) List(ctx context.Context, filter invoice.InvoiceFilter) ([]invoice.Invoice, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var conditions []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("i.employee_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices i`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))
	query := fmt.Sprintf(`%s%s ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d`,
		invoiceSelect, where, len(args)-1, len(args))

	invoices, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *invoiceRepositoryImpl) UpdateStatus(ctx context.Context, id string, to invoice.Status, from []invoice.Status) error {
	q := GetQuerier(ctx, r.db)

	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	tag, err := q.Exec(ctx, `
		UPDATE invoices SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
	`, id, to, allowed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return invoice.ErrInvalidStatusTransition
}

func (r *invoiceRepositoryImpl) UpdateDraft(ctx context.Context, inv invoice.Invoice) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE invoices
		SET due_date = $2, items = $3, subtotal = $4, tax_rate = $5, tax_amount = $6,
		    total = $7, notes = $8, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
	`, inv.ID, inv.DueDate, inv.Items, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total, inv.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, inv.ID); err != nil {
		return err
	}
	return invoice.ErrInvoiceNotDraft
}

// MarkOverdue moves sent invoices whose due date is before today to overdue.
func (r *invoiceRepositoryImpl) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE invoices SET status = 'overdue', updated_at = NOW()
		WHERE status = 'sent' AND due_date < $1
	`, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
