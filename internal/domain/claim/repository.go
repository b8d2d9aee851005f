package claim

import "context"

type ClaimRepository interface {
	Create(ctx context.Context, claim Claim) (Claim, error)
	GetByID(ctx context.Context, id string) (Claim, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]Claim, error)
	// List orders urgent claims first, newest first within each group.
	List(ctx context.Context, filter ClaimFilter) ([]Claim, int64, error)
	// UpdateStatus moves a pending claim to status. It returns ErrClaimAlreadyProcessed
	// when the row is no longer pending.
	UpdateStatus(ctx context.Context, id string, status ClaimStatus, processedBy string, note *string) (Claim, error)
	SetAttachment(ctx context.Context, id string, url string) error
	// Delete removes a claim only while it is pending.
	Delete(ctx context.Context, id string) error
}
