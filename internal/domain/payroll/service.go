package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	Create(ctx context.Context, req CreatePayslipRequest) (PayslipResponse, error)
	GetByID(ctx context.Context, id string) (PayslipResponse, error)
	GetMine(ctx context.Context) ([]PayslipResponse, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]PayslipResponse, error)
	GetAll(ctx context.Context, filter PayslipFilter) ([]PayslipResponse, int64, error)
	Update(ctx context.Context, id string, req UpdatePayslipRequest) (PayslipResponse, error)
	Delete(ctx context.Context, id string) error
	Publish(ctx context.Context, id string) (PayslipResponse, error)
	MarkAsViewed(ctx context.Context, id string) (PayslipResponse, error)
	UploadPDF(ctx context.Context, id string, req UploadPDFRequest) (PayslipResponse, error)
	DownloadPDF(ctx context.Context, id string) (io.ReadCloser, string, error)
}
