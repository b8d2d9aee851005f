package invoice

import (
	"context"
	"time"
)

type InvoiceRepository interface {
	// Create draws the next number for the issue month and inserts, in one transaction.
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	// UpdateStatus moves the invoice only if its current status is one of from.
	UpdateStatus(ctx context.Context, id string, to Status, from []Status) error
	UpdateDraft(ctx context.Context, inv Invoice) error
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}
