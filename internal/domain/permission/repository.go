package permission

import "context"

type Repository interface {
	// Get returns ErrCustomPermissionsNotFound when the user has no overrides.
	Get(ctx context.Context, userID string) (CustomUserPermissions, error)
	Upsert(ctx context.Context, custom CustomUserPermissions) error
}

// Cache stores resolved overrides per user.
type Cache interface {
	Get(ctx context.Context, userID string) (CustomUserPermissions, bool)
	Set(ctx context.Context, custom CustomUserPermissions)
	Delete(ctx context.Context, userID string)
	Clear(ctx context.Context)
}
