package user

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"display_name"`
	Role          Role       `json:"role"`
	Status        Status     `json:"status"`
	OAuthProvider *string    `json:"oauth_provider,omitempty"`
	EmployeeID    *string    `json:"employee_id,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToResponse converts a User entity to UserResponse.
func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Role:          u.Role,
		Status:        u.Status,
		OAuthProvider: u.OAuthProvider,
		EmployeeID:    u.EmployeeID,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   *Role
	Status *Status
	Search string
	Page   int
	Limit  int
}

// Normalize clamps paging values.
func (f *UserFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// CreateUserRequest represents request to create a new user
type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Status      string `json:"status"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if validator.IsEmpty(r.DisplayName) {
		errs = append(errs, validator.ValidationError{
			Field:   "display_name",
			Message: "display_name is required",
		})
	} else if len(r.DisplayName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "display_name",
			Message: "display_name must not exceed 255 characters",
		})
	}

	if _, ok := NormalizeRole(r.Role); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of employee, hr_advisor, advisor, admin",
		})
	}

	if r.Status != "" && !Status(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of active, inactive, suspended",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateUserRequest represents request to update user
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DisplayName != nil {
		if validator.IsEmpty(*r.DisplayName) {
			errs = append(errs, validator.ValidationError{
				Field:   "display_name",
				Message: "display_name cannot be empty",
			})
		} else if len(*r.DisplayName) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "display_name",
				Message: "display_name must not exceed 255 characters",
			})
		}
	}

	if r.Status != nil && !Status(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of active, inactive, suspended",
		})
	}

	if r.DisplayName == nil && r.Status == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one field must be provided",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (r *UpdateRoleRequest) Validate() error {
	if validator.IsEmpty(r.Role) {
		return validator.ValidationErrors{{Field: "role", Message: "role is required"}}
	}
	if _, ok := NormalizeRole(r.Role); !ok {
		return validator.ValidationErrors{{Field: "role", Message: "role must be one of employee, hr_advisor, advisor, admin"}}
	}
	return nil
}
