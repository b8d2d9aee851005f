package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee  Role = "employee"   // Regular employee
	RoleHRAdvisor Role = "hr_advisor" // HR staff: employee records, leave approval, illness
	RoleAdmin     Role = "admin"      // Full access
)

// roleAliases maps accepted input spellings to their canonical role.
var roleAliases = map[string]Role{
	"employee":   RoleEmployee,
	"advisor":    RoleHRAdvisor,
	"hr_advisor": RoleHRAdvisor,
	"admin":      RoleAdmin,
}

// NormalizeRole returns the canonical role for s. Empty input means employee.
func NormalizeRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleEmployee, true
	}
	role, ok := roleAliases[s]
	return role, ok
}

// AllRoles returns the canonical roles.
func AllRoles() []Role {
	return []Role{RoleEmployee, RoleHRAdvisor, RoleAdmin}
}

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

type User struct {
	ID              string
	Email           string
	DisplayName     string
	PasswordHash    *string
	Role            Role
	Status          Status
	OAuthProvider   *string
	OAuthProviderID *string
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join
	EmployeeID *string
}

// IsActive reports whether the user may sign in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// IsAdmin checks if user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsApprover reports whether the user receives leave approval requests.
func (u *User) IsApprover() bool {
	return u.Role == RoleAdmin || u.Role == RoleHRAdvisor
}
