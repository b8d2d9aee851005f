package auth

import (
	"context"
)

type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest, session SessionTrackingRequest) (TokenResponse, error)
	SignIn(ctx context.Context, req SignInRequest, session SessionTrackingRequest) (TokenResponse, error)
	SignInWithGoogle(ctx context.Context, code string, session SessionTrackingRequest) (TokenResponse, error)
	SignOut(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest, ipAddress string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	GetUserRole(ctx context.Context, userID string) (RoleResponse, error)
	Me(ctx context.Context, userID string) (AuthUser, error)
}

// TokenRepository persists refresh and password reset tokens. Only hashes are stored.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, session SessionTrackingRequest) error
	IsRefreshTokenRevoked(ctx context.Context, token string) (userID string, revoked bool, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpiredRefreshTokens(ctx context.Context, olderThanDays int) (int64, error)

	CreatePasswordResetToken(ctx context.Context, userID string, token string, expiresAt int64, ipAddress string) error
	// ConsumePasswordResetToken marks an unused, unexpired token as used and returns its owner.
	ConsumePasswordResetToken(ctx context.Context, token string) (userID string, err error)
}

// Transactor runs fn in one database transaction. Repositories called with the ctx handed to fn join it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
