package user

import (
	"context"
	"time"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByOAuthID(ctx context.Context, provider, providerID string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ListByRoles(ctx context.Context, roles []Role, activeOnly bool) ([]User, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) error
	UpdateRole(ctx context.Context, id string, role Role) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	LinkGoogleAccount(ctx context.Context, userID, googleID string) error
	Delete(ctx context.Context, id string) error
}
