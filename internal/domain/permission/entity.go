package permission

import (
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
)

// CustomUserPermissions holds per-user overrides on top of the static role table.
type CustomUserPermissions struct {
	UserID             string            `json:"user_id"`
	GrantedPermissions []user.Permission `json:"granted_permissions"`
	DeniedPermissions  []user.Permission `json:"denied_permissions"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Empty returns overrides with no grants or denials.
func Empty(userID string) CustomUserPermissions {
	return CustomUserPermissions{
		UserID:             userID,
		GrantedPermissions: []user.Permission{},
		DeniedPermissions:  []user.Permission{},
	}
}

// Normalize dedupes both lists and drops granted entries that are also denied.
func (c CustomUserPermissions) Normalize() CustomUserPermissions {
	denied := dedupe(c.DeniedPermissions)
	deniedSet := toSet(denied)

	granted := make([]user.Permission, 0, len(c.GrantedPermissions))
	for _, p := range dedupe(c.GrantedPermissions) {
		if _, isDenied := deniedSet[p]; !isDenied {
			granted = append(granted, p)
		}
	}

	c.GrantedPermissions = granted
	c.DeniedPermissions = denied
	return c
}

// Grant removes p from the denied list and adds it to the granted list.
func (c CustomUserPermissions) Grant(p user.Permission) CustomUserPermissions {
	c.DeniedPermissions = without(c.DeniedPermissions, p)
	c.GrantedPermissions = append(without(c.GrantedPermissions, p), p)
	return c
}

// Deny removes p from the granted list and adds it to the denied list.
func (c CustomUserPermissions) Deny(p user.Permission) CustomUserPermissions {
	c.GrantedPermissions = without(c.GrantedPermissions, p)
	c.DeniedPermissions = append(without(c.DeniedPermissions, p), p)
	return c
}

// IsGranted reports whether p is explicitly granted.
func (c CustomUserPermissions) IsGranted(p user.Permission) bool {
	return contains(c.GrantedPermissions, p)
}

// IsDenied reports whether p is explicitly denied.
func (c CustomUserPermissions) IsDenied(p user.Permission) bool {
	return contains(c.DeniedPermissions, p)
}

// Effective computes (role ∪ granted) − denied in catalogue order.
func Effective(role user.Role, custom CustomUserPermissions) []user.Permission {
	granted := toSet(custom.GrantedPermissions)
	denied := toSet(custom.DeniedPermissions)

	effective := make([]user.Permission, 0)
	for _, p := range user.AllPermissions() {
		if _, isDenied := denied[p]; isDenied {
			continue
		}
		_, isGranted := granted[p]
		if isGranted || user.HasPermission(role, p) {
			effective = append(effective, p)
		}
	}
	return effective
}

// Has checks one permission: role grant not denied, else explicit grant.
func Has(role user.Role, custom CustomUserPermissions, p user.Permission) bool {
	if user.HasPermission(role, p) && !custom.IsDenied(p) {
		return true
	}
	if custom.IsGranted(p) && !custom.IsDenied(p) {
		return true
	}
	return false
}

func dedupe(perms []user.Permission) []user.Permission {
	seen := make(map[user.Permission]struct{}, len(perms))
	out := make([]user.Permission, 0, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func toSet(perms []user.Permission) map[user.Permission]struct{} {
	set := make(map[user.Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func without(perms []user.Permission, p user.Permission) []user.Permission {
	out := make([]user.Permission, 0, len(perms))
	for _, existing := range perms {
		if existing != p {
			out = append(out, existing)
		}
	}
	return out
}

func contains(perms []user.Permission, p user.Permission) bool {
	for _, existing := range perms {
		if existing == p {
			return true
		}
	}
	return false
}
