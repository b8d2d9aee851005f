package jwt

import (
	"context"
	"net/http"
	"testing"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret", "1h", "168h", false)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_InvalidDuration(t *testing.T) {
	_, err := NewJWTService("secret", "soon", "168h", false)
	assert.Error(t, err)
}

func TestAccessTokenClaims(t *testing.T) {
	svc := newTestService(t)
	empID := "0190a0b0-0000-7000-8000-000000000002"

	tokenString, expiresAt, err := svc.GenerateAccessToken(AccessClaims{
		UserID:     "0190a0b0-0000-7000-8000-000000000001",
		Email:      "jane@example.com",
		Role:       user.RoleHRAdvisor,
		EmployeeID: &empID,
	})
	require.NoError(t, err)
	assert.NotZero(t, expiresAt)

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	actor, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0190a0b0-0000-7000-8000-000000000001", actor.UserID)
	assert.Equal(t, "jane@example.com", actor.Email)
	assert.Equal(t, user.RoleHRAdvisor, actor.Role)
	assert.Equal(t, empID, actor.EmployeeID)
	assert.True(t, actor.HasEmployee())
}

func TestRefreshToken_RoundTripAndType(t *testing.T) {
	svc := newTestService(t)

	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	userID, err := svc.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// An SSE token is not accepted as a refresh token.
	sse, _, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	_, err = svc.ParseRefreshToken(sse)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	again, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, refresh, again)
}

func TestRefreshToken_WrongSecret(t *testing.T) {
	svc := newTestService(t)
	other, err := NewJWTService("another-secret", "1h", "1h", false)
	require.NoError(t, err)

	refresh, _, err := other.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = svc.ParseRefreshToken(refresh)
	assert.Error(t, err)
}

func TestSSEToken(t *testing.T) {
	svc := newTestService(t)

	token, expiresIn, err := svc.GenerateSSEToken("user-9")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)

	_, err = svc.ValidateSSEToken("not-a-token")
	assert.Error(t, err)
}

func TestRefreshTokenCookies(t *testing.T) {
	svc := newTestService(t)

	cookie := svc.RefreshTokenCookie("abc", 1700000000)
	assert.Equal(t, RefreshTokenCookieName, cookie.Name)
	assert.Equal(t, "/api/v1/auth", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	cleared := svc.ClearRefreshTokenCookie()
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}

func TestActorFromContext(t *testing.T) {
	_, err := ActorFromContext(context.Background())
	assert.Error(t, err)

	ctx := ContextWithActor(context.Background(), Actor{UserID: "u1", Role: user.RoleAdmin})
	actor, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", actor.UserID)
	assert.Equal(t, user.RoleAdmin, actor.Role)
	assert.False(t, actor.HasEmployee())
}
