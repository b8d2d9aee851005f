package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	// GetNames resolves display names for a set of employee ids in one query.
	GetNames(ctx context.Context, ids []string) (map[string]string, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) error
	UpdateContact(ctx context.Context, id string, req UpdateOwnProfileRequest) error
	UpdateProfilePicture(ctx context.Context, id string, path string) error
	AddDocument(ctx context.Context, id string, doc Document) error
	RemoveDocument(ctx context.Context, id string, documentID string) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
}
