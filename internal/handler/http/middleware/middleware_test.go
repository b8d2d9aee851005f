package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleChecker struct {
	err error
}

func (c roleChecker) HasPermission(ctx context.Context, userID string, role user.Role, p user.Permission) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return permission.Has(role, permission.Empty(userID), p), nil
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func withActor(role user.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := jwt.ContextWithActor(req.Context(), jwt.Actor{UserID: "user-1", Role: role})
	return req.WithContext(ctx)
}

func TestRequirePermission(t *testing.T) {
	h := RequirePermission(roleChecker{}, user.PermissionCreatePayslips, user.PermissionViewPayrollReports)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withActor(user.RoleHRAdvisor))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withActor(user.RoleEmployee))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission_FailsClosed(t *testing.T) {
	h := RequirePermission(roleChecker{err: errors.New("redis down")}, user.PermissionViewOwnProfile)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withActor(user.RoleAdmin))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	svc, err := jwt.NewJWTService("test-secret", "1h", "24h", false)
	require.NoError(t, err)
	ja := svc.JWTAuth()
	h := jwtauth.Verifier(ja)(AuthRequired(ja)(okHandler))

	access, _, err := svc.GenerateAccessToken(jwt.AccessClaims{UserID: "user-1", Role: user.RoleEmployee})
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	for name, tc := range map[string]struct {
		token string
		want  int
	}{
		"access token":  {access, http.StatusNoContent},
		"refresh token": {refresh, http.StatusUnauthorized},
		"no token":      {"", http.StatusUnauthorized},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRateLimitByIP(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	h := RateLimitByIP(limiter)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.GetLimiter("a")
	now = now.Add(idleLimiterTTL + time.Second)
	limiter.GetLimiter("b")

	assert.Len(t, limiter.clients, 1)
	assert.Contains(t, limiter.clients, "b")
}
