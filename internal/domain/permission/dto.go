package permission

import (
	"fmt"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

// CatalogueResponse lists every permission and the static role table.
type CatalogueResponse struct {
	Permissions []user.Permission               `json:"permissions"`
	Roles       map[user.Role][]user.Permission `json:"roles"`
}

// UserPermissionsResponse shows a user's overrides and resolved set.
type UserPermissionsResponse struct {
	UserID    string            `json:"user_id"`
	Role      user.Role         `json:"role"`
	Granted   []user.Permission `json:"granted_permissions"`
	Denied    []user.Permission `json:"denied_permissions"`
	Effective []user.Permission `json:"effective_permissions"`
}

type SetCustomPermissionsRequest struct {
	GrantedPermissions []string `json:"granted_permissions"`
	DeniedPermissions  []string `json:"denied_permissions"`
}

func (r *SetCustomPermissionsRequest) Validate() error {
	var errs validator.ValidationErrors
	for i, p := range r.GrantedPermissions {
		if !user.Permission(p).IsValid() {
			errs.Add(fmt.Sprintf("granted_permissions[%d]", i), fmt.Sprintf("unknown permission %q", p))
		}
	}
	for i, p := range r.DeniedPermissions {
		if !user.Permission(p).IsValid() {
			errs.Add(fmt.Sprintf("denied_permissions[%d]", i), fmt.Sprintf("unknown permission %q", p))
		}
	}
	return errs.Err()
}

// ToCustom converts the request into normalized overrides for userID.
func (r *SetCustomPermissionsRequest) ToCustom(userID string) CustomUserPermissions {
	custom := Empty(userID)
	for _, p := range r.GrantedPermissions {
		custom.GrantedPermissions = append(custom.GrantedPermissions, user.Permission(p))
	}
	for _, p := range r.DeniedPermissions {
		custom.DeniedPermissions = append(custom.DeniedPermissions, user.Permission(p))
	}
	return custom.Normalize()
}

type PermissionRequest struct {
	Permission string `json:"permission"`
}

func (r *PermissionRequest) Validate() error {
	if validator.IsEmpty(r.Permission) {
		return validator.ValidationErrors{{Field: "permission", Message: "permission is required"}}
	}
	if !user.Permission(r.Permission).IsValid() {
		return validator.ValidationErrors{{Field: "permission", Message: fmt.Sprintf("unknown permission %q", r.Permission)}}
	}
	return nil
}

type ClearCacheRequest struct {
	UserID string `json:"user_id"`
}
