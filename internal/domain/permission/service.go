package permission

import (
	"context"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
)

// Checker is the subset used by authorization middleware and services.
type Checker interface {
	HasPermission(ctx context.Context, userID string, role user.Role, p user.Permission) (bool, error)
}

type Service interface {
	Checker

	Catalogue() CatalogueResponse
	GetUserCustomPermissions(ctx context.Context, userID string) (CustomUserPermissions, error)
	GetUserPermissions(ctx context.Context, userID string, role user.Role) ([]user.Permission, error)
	GetUserPermissionDetail(ctx context.Context, userID string) (UserPermissionsResponse, error)
	SetUserCustomPermissions(ctx context.Context, userID string, req SetCustomPermissionsRequest) (UserPermissionsResponse, error)
	GrantPermission(ctx context.Context, userID string, p user.Permission) (UserPermissionsResponse, error)
	DenyPermission(ctx context.Context, userID string, p user.Permission) (UserPermissionsResponse, error)
	ResetUserCustomPermissions(ctx context.Context, userID string) error
	ClearCache(ctx context.Context, userID string)
}
