package employee

import (
	"context"
	"io"
)

// EmployeeService defines business logic for employee operations. The caller is read from ctx.
type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// GetByID allows staff with view_employee_details, or the employee themself
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)

	GetMine(ctx context.Context) (EmployeeResponse, error)
	GetByUserID(ctx context.Context, userID string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	UpdateOwnProfile(ctx context.Context, req UpdateOwnProfileRequest) (EmployeeResponse, error)
	List(ctx context.Context, filter EmployeeFilter) ([]EmployeeResponse, int64, error)

	UploadDocument(ctx context.Context, id string, req UploadDocumentRequest) (Document, error)
	UploadAvatar(ctx context.Context, id string, req UploadAvatarRequest) (EmployeeResponse, error)
	DeleteDocument(ctx context.Context, id string, documentID string) error
	OpenDocument(ctx context.Context, id string, documentID string) (io.ReadCloser, Document, error)
}
