package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/auth"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/email"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/oauth"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenTTL  = time.Hour
	googleProvider = "google"
)

type AuthServiceImpl struct {
	user.UserRepository
	auth.TokenRepository
	jwt.Service
	tx           auth.Transactor
	permissions  permission.Service
	emailService email.EmailService
	google       oauth.GoogleService
	frontendURL  string

	// async runs fire-and-forget work such as outgoing mail
	async func(func())
	now   func() time.Time
}

// NewAuthService wires the auth flows. google may be nil when Google sign-in is not configured.
func NewAuthService(
	userRepository user.UserRepository,
	tokenRepository auth.TokenRepository,
	jwtService jwt.Service,
	transactor auth.Transactor,
	permissionService permission.Service,
	emailService email.EmailService,
	google oauth.GoogleService,
	frontendURL string,
) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository:  userRepository,
		TokenRepository: tokenRepository,
		Service:         jwtService,
		tx:              transactor,
		permissions:     permissionService,
		emailService:    emailService,
		google:          google,
		frontendURL:     frontendURL,
		async:           func(f func()) { go f() },
		now:             time.Now,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issueTokens mints an access/refresh pair and persists the refresh token hash.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse
	var err error

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(accessClaims(u))
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	err = a.CreateRefreshToken(ctx, u.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, session)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	tokenResponse.User, err = a.authUser(ctx, u)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return tokenResponse, nil
}

func accessClaims(u user.User) jwt.AccessClaims {
	return jwt.AccessClaims{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		EmployeeID: u.EmployeeID,
	}
}

func (a *AuthServiceImpl) authUser(ctx context.Context, u user.User) (auth.AuthUser, error) {
	perms, err := a.permissions.GetUserPermissions(ctx, u.ID, u.Role)
	if err != nil {
		return auth.AuthUser{}, err
	}
	return auth.AuthUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Status:      u.Status,
		EmployeeID:  u.EmployeeID,
		Permissions: perms,
	}, nil
}

// SignUp implements auth.AuthService. Self sign-up always yields an active employee.
func (a *AuthServiceImpl) SignUp(ctx context.Context, req auth.SignUpRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := a.UserRepository.Create(ctx, user.User{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: &hashedPassword,
		Role:         user.RoleEmployee,
		Status:       user.StatusActive,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return auth.TokenResponse{}, auth.ErrEmailAlreadyExists
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return a.issueTokens(ctx, newUser, session)
}

// SignIn implements auth.AuthService.
func (a *AuthServiceImpl) SignIn(ctx context.Context, req auth.SignInRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Google-only accounts have no password
	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive() {
		return auth.TokenResponse{}, auth.ErrUserInactive
	}

	if err := a.UpdateLastLogin(ctx, userData.ID, a.now()); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to update last login: %w", err)
	}

	return a.issueTokens(ctx, userData, session)
}

// SignInWithGoogle finds the account by Google id, then by email (linking it), else creates an employee.
func (a *AuthServiceImpl) SignInWithGoogle(ctx context.Context, code string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if a.google == nil {
		return auth.TokenResponse{}, auth.ErrOAuthDisabled
	}

	info, err := a.google.FetchUser(ctx, code)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to fetch google user: %w", err)
	}
	if !info.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrGoogleEmailNotVerified
	}

	userData, err := a.UserRepository.GetByOAuthID(ctx, googleProvider, info.GoogleID)
	if errors.Is(err, user.ErrUserNotFound) {
		userData, err = a.UserRepository.GetByEmail(ctx, info.Email)
		switch {
		case err == nil:
			if err := a.UserRepository.LinkGoogleAccount(ctx, userData.ID, info.GoogleID); err != nil {
				return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
			}
		case errors.Is(err, user.ErrUserNotFound):
			provider := googleProvider
			googleID := info.GoogleID
			userData, err = a.UserRepository.Create(ctx, user.User{
				Email:           info.Email,
				DisplayName:     info.Name,
				Role:            user.RoleEmployee,
				Status:          user.StatusActive,
				OAuthProvider:   &provider,
				OAuthProviderID: &googleID,
			})
			if err != nil {
				return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
			}
		default:
			return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
		}
	} else if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by google id: %w", err)
	}

	if !userData.IsActive() {
		return auth.TokenResponse{}, auth.ErrUserInactive
	}
	if err := a.UpdateLastLogin(ctx, userData.ID, a.now()); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to update last login: %w", err)
	}

	return a.issueTokens(ctx, userData, session)
}

// SignOut revokes the refresh token. Unknown or already revoked tokens are not an error.
func (a *AuthServiceImpl) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	_, isRevoked, err := a.IsRefreshTokenRevoked(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
	}
	if isRevoked {
		return nil
	}
	if err := a.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	// 1. Verify signature, expiry and type
	tokenUserID, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 2. Check DB for revocation/expiry
	userID, isRevoked, err := a.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked || userID != tokenUserID {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	// 3. Reload the user so the new token carries the current role
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !userData.IsActive() {
		return auth.AccessTokenResponse{}, auth.ErrUserInactive
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(accessClaims(userData))
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return resp, nil
}

// ForgotPassword never reveals whether the email belongs to an account.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest, ipAddress string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	expiresAt := a.now().Add(resetTokenTTL)
	if err := a.CreatePasswordResetToken(ctx, userData.ID, token, expiresAt.Unix(), ipAddress); err != nil {
		return fmt.Errorf("failed to save password reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", a.frontendURL, url.QueryEscape(token))
	to := userData.Email
	expires := expiresAt.UTC().Format("2006-01-02 15:04 MST")
	a.async(func() {
		if err := a.emailService.SendPasswordReset(to, link, expires); err != nil {
			slog.Error("failed to send password reset email", "error", err, "user_id", userData.ID)
		}
	})
	return nil
}

// ResetPassword consumes the token, sets the new hash and signs the user out everywhere.
// The three writes share a transaction so a failed update leaves the token usable.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return a.tx.InTx(ctx, func(ctx context.Context) error {
		userID, err := a.ConsumePasswordResetToken(ctx, req.Token)
		if err != nil {
			return err
		}
		if err := a.UpdatePassword(ctx, userID, hashedPassword); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.RevokeAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}
		return nil
	})
}

func (a *AuthServiceImpl) GetUserRole(ctx context.Context, userID string) (auth.RoleResponse, error) {
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.RoleResponse{}, auth.ErrUserNotFound
		}
		return auth.RoleResponse{}, err
	}
	return auth.RoleResponse{UserID: userData.ID, Role: userData.Role}, nil
}

func (a *AuthServiceImpl) Me(ctx context.Context, userID string) (auth.AuthUser, error) {
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AuthUser{}, auth.ErrUserNotFound
		}
		return auth.AuthUser{}, err
	}
	return a.authUser(ctx, userData)
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
