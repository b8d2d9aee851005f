package payroll

import (
	"context"
	"time"
)

// PayslipRepository defines data access methods for payslips.
type PayslipRepository interface {
	Create(ctx context.Context, payslip Payslip) (Payslip, error)
	GetByID(ctx context.Context, id string) (Payslip, error)
	// GetPublishedByEmployeeID orders by year desc then month desc.
	GetPublishedByEmployeeID(ctx context.Context, employeeID string, limit int) ([]Payslip, error)
	List(ctx context.Context, filter PayslipFilter) ([]Payslip, int64, error)
	// UpdateDraft writes items and totals; it returns ErrPayslipAlreadyPublished for non-drafts.
	UpdateDraft(ctx context.Context, payslip Payslip) error
	DeleteDraft(ctx context.Context, id string) error
	Publish(ctx context.Context, id string, pdfURL string) error
	SetPDFURL(ctx context.Context, id string, pdfURL string) error
	MarkViewed(ctx context.Context, id string) error
	// SummaryForPeriod returns published payslips of the period, each with the employee name.
	SummaryForPeriod(ctx context.Context, month, year int) ([]Payslip, error)
}

// PDFRenderer renders a payslip document.
type PDFRenderer interface {
	RenderPayslip(p Payslip, employeeName string, issuedAt time.Time) ([]byte, error)
}
