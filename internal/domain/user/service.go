package user

import "context"

// UserService is the admin-facing user management service.
type UserService interface {
	List(ctx context.Context, filter UserFilter) ([]UserResponse, int64, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	UpdateRole(ctx context.Context, actorID, id string, req UpdateRoleRequest) (UserResponse, error)
	Delete(ctx context.Context, actorID, id string) error
	GetByRole(ctx context.Context, role string) ([]UserResponse, error)
	GetActive(ctx context.Context) ([]UserResponse, error)
}
