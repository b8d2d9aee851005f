package department

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, department Department) (Department, error)
	GetByID(ctx context.Context, id string) (Department, error)
	List(ctx context.Context) ([]Department, error)
	// Update renames cascade to the employees that reference the old name.
	Update(ctx context.Context, req UpdateDepartmentRequest) error
	// Delete returns ErrDepartmentInUse while employees or teams reference the row.
	Delete(ctx context.Context, id string) error
}
