package claim

import "context"

type ClaimService interface {
	Create(ctx context.Context, req CreateClaimRequest) (ClaimResponse, error)
	GetByID(ctx context.Context, id string) (ClaimResponse, error)
	GetMine(ctx context.Context) ([]ClaimResponse, error)
	List(ctx context.Context, filter ClaimFilter) ([]ClaimResponse, int64, error)
	Process(ctx context.Context, id string, req ProcessClaimRequest) (ClaimResponse, error)
	Reject(ctx context.Context, id string, req RejectClaimRequest) (ClaimResponse, error)
	Delete(ctx context.Context, id string) error
	UploadAttachment(ctx context.Context, id string, req UploadAttachmentRequest) (ClaimResponse, error)
}
