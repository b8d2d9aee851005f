package illness

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
)

type IllnessRepository interface {
	Create(ctx context.Context, record IllnessRecord) (IllnessRecord, error)
	GetByID(ctx context.Context, id string) (IllnessRecord, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]IllnessRecord, error)
	GetAllActive(ctx context.Context) ([]IllnessRecord, error)
	Update(ctx context.Context, id string, req UpdateIllnessRequest, updatedBy string) error
	// UpdateStatus only moves active records; it returns ErrInvalidStatusTransition otherwise.
	UpdateStatus(ctx context.Context, id string, status IllnessStatus, endDate *time.Time, updatedBy string) error
	SetMedicalCertificate(ctx context.Context, id string, path string, expiry *time.Time, doc employee.Document, updatedBy string) error
	GetStatistics(ctx context.Context) (Statistics, error)
	GetCertificatesExpiringBetween(ctx context.Context, from, to time.Time) ([]IllnessRecord, error)
	GetFollowUpsOn(ctx context.Context, day time.Time) ([]IllnessRecord, error)
	// ClaimReminder records that kind was sent for the record's dueOn date.
	// It reports false when an earlier run already claimed it.
	ClaimReminder(ctx context.Context, illnessID string, kind ReminderKind, dueOn time.Time) (bool, error)
	ReleaseReminder(ctx context.Context, illnessID string, kind ReminderKind, dueOn time.Time) error
}
