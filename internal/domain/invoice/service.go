package invoice

import "context"

type InvoiceService interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (InvoiceResponse, error)
	GetByID(ctx context.Context, id string) (InvoiceResponse, error)
	GetMine(ctx context.Context) ([]InvoiceResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]InvoiceResponse, error)
	GetAll(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (InvoiceResponse, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	// MarkOverdue moves sent invoices past their due date to overdue. Used by cron.
	MarkOverdue(ctx context.Context) (int64, error)
}
