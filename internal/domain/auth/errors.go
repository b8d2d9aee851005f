package auth

import "errors"

var (
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrUserInactive               = errors.New("account is inactive or suspended")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrTokenExpired               = errors.New("token has expired")
	ErrRefreshTokenRevoked        = errors.New("refresh token has been revoked")
	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrRefreshTokenCookieEmpty    = errors.New("refresh token cookie is empty")
	ErrUserNotFound               = errors.New("user not found")
	ErrEmailAlreadyExists         = errors.New("email already registered")
	ErrInvalidResetToken          = errors.New("invalid or expired password reset token")
	ErrOAuthDisabled              = errors.New("google sign-in is not configured")
	ErrOAuthStateMismatch         = errors.New("oauth state mismatch")
	ErrGoogleEmailNotVerified     = errors.New("google email is not verified")
)
