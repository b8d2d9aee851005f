package illness

import "context"

type IllnessService interface {
	Create(ctx context.Context, req CreateIllnessRequest) (IllnessRecordResponse, error)
	GetByID(ctx context.Context, id string) (IllnessRecordResponse, error)
	GetMine(ctx context.Context) ([]IllnessRecordResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]IllnessRecordResponse, error)
	GetAllActive(ctx context.Context) ([]IllnessRecordResponse, error)
	Update(ctx context.Context, id string, req UpdateIllnessRequest) (IllnessRecordResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (IllnessRecordResponse, error)
	UploadMedicalCertificate(ctx context.Context, id string, req UploadCertificateRequest) (IllnessRecordResponse, error)
	GetStatistics(ctx context.Context) (Statistics, error)
	// SendReminders notifies HR about expiring certificates and due follow-ups. Used by cron.
	SendReminders(ctx context.Context) (int, error)
}
