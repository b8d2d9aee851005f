package auth

import (
	"strings"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DisplayName     string `json:"display_name"`
}

func (r *SignUpRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	validateEmail(&errs, r.Email)

	// Display name
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

	validatePassword(&errs, "password", r.Password)
	if validator.IsEmpty(r.ConfirmPassword) {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "confirm_password is required",
		})
	} else if r.ConfirmPassword != r.Password {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "password and confirm_password do not match",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignInRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	validateEmail(&errs, r.Email)

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	// Refresh Token
	if validator.IsEmpty(r.RefreshToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token is required",
		})
	}
	if len(r.RefreshToken) > 2048 {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token must not exceed 2048 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	validateEmail(&errs, r.Email)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs = append(errs, validator.ValidationError{
			Field:   "token",
			Message: "token is required",
		})
	} else if len(r.Token) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "token",
			Message: "token must not exceed 255 characters",
		})
	}

	validatePassword(&errs, "password", r.Password)
	if r.ConfirmPassword != r.Password {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "password and confirm_password do not match",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateEmail(errs *validator.ValidationErrors, email string) {
	if validator.IsEmpty(email) {
		errs.Add("email", "email is required")
		return
	}
	if len(email) > 254 {
		errs.Add("email", "email must not exceed 254 characters")
		return
	}
	if !validator.IsValidEmail(email) {
		errs.Add("email", "email must be a valid email address, e.g. user@example.com")
	}
}

func validatePassword(errs *validator.ValidationErrors, field, password string) {
	if validator.IsEmpty(password) {
		errs.Add(field, field+" is required")
	} else if len(password) < 8 {
		errs.Add(field, field+" must be at least 8 characters long")
	} else if len(password) > 72 {
		// bcrypt ignores bytes past 72
		errs.Add(field, field+" must not exceed 72 characters")
	}
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string   `json:"access_token"`
	AccessTokenExpiresIn  int64    `json:"access_token_expires_in"`
	RefreshToken          string   `json:"refresh_token"`
	RefreshTokenExpiresIn int64    `json:"refresh_token_expires_in"`
	User                  AuthUser `json:"user"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}

// AuthUser is the signed-in identity returned to clients.
type AuthUser struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	DisplayName string            `json:"display_name"`
	Role        user.Role         `json:"role"`
	Status      user.Status       `json:"status"`
	EmployeeID  *string           `json:"employee_id,omitempty"`
	Permissions []user.Permission `json:"permissions,omitempty"`
}

type RoleResponse struct {
	UserID string    `json:"user_id"`
	Role   user.Role `json:"role"`
}
