package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/auth"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestAccessExp  = "1h"
	handlerTestRefreshExp = "24h"
	handlerTestSecret     = "test-secret-key-for-jwt"
)

// fakeAuthService records what the handler forwarded. Unset methods panic through the nil interface.
type fakeAuthService struct {
	auth.AuthService

	signUpErr  error
	signInErr  error
	signedOut  string
	refreshed  string
	forgotFor  string
	refreshErr error
}

func (f *fakeAuthService) tokens() auth.TokenResponse {
	return auth.TokenResponse{
		AccessToken:           "access",
		AccessTokenExpiresIn:  1700000000,
		RefreshToken:          "refresh",
		RefreshTokenExpiresIn: 1800000000,
		User:                  auth.AuthUser{ID: "u-1", Email: "ana@example.com", Role: user.RoleEmployee, Status: user.StatusActive},
	}
}

func (f *fakeAuthService) SignUp(ctx context.Context, req auth.SignUpRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if f.signUpErr != nil {
		return auth.TokenResponse{}, f.signUpErr
	}
	return f.tokens(), nil
}

func (f *fakeAuthService) SignIn(ctx context.Context, req auth.SignInRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if f.signInErr != nil {
		return auth.TokenResponse{}, f.signInErr
	}
	return f.tokens(), nil
}

func (f *fakeAuthService) SignOut(ctx context.Context, refreshToken string) error {
	f.signedOut = refreshToken
	return nil
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	f.refreshed = req.RefreshToken
	if f.refreshErr != nil {
		return auth.AccessTokenResponse{}, f.refreshErr
	}
	return auth.AccessTokenResponse{AccessToken: "new-access", AccessTokenExpiresIn: 1700000000}, nil
}

func (f *fakeAuthService) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest, ipAddress string) error {
	f.forgotFor = req.Email
	return nil
}

func (f *fakeAuthService) Me(ctx context.Context, userID string) (auth.AuthUser, error) {
	return auth.AuthUser{
		ID:          userID,
		Role:        user.RoleHRAdvisor,
		Permissions: []user.Permission{user.PermissionApproveLeave},
	}, nil
}

func newTestJWTService(t *testing.T) jwt.Service {
	t.Helper()
	svc, err := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp, handlerTestRefreshExp, false)
	require.NoError(t, err)
	return svc
}

func createAuthHandler(t *testing.T, svc *fakeAuthService, google oauth.GoogleService) AuthHandler {
	return NewAuthHandler(newTestJWTService(t), svc, google, "http://localhost:3000", false)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	return httptest.NewRequest(method, target, bytes.NewReader(payload))
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{}, nil)

	req := jsonRequest(http.MethodPost, "/api/v1/auth/signup", auth.SignUpRequest{
		Email:           "Ana@Example.com",
		Password:        "SecurePass123!",
		ConfirmPassword: "SecurePass123!",
		DisplayName:     "Ana",
	})
	w := httptest.NewRecorder()
	handler.SignUp(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	assert.True(t, resp["success"].(bool))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "access", data["access_token"])

	cookie := findCookie(w, jwt.RefreshTokenCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestAuthHandler_SignUp_PasswordMismatch(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{}, nil)

	req := jsonRequest(http.MethodPost, "/api/v1/auth/signup", auth.SignUpRequest{
		Email:           "ana@example.com",
		Password:        "SecurePass123!",
		ConfirmPassword: "DifferentPass123!",
		DisplayName:     "Ana",
	})
	w := httptest.NewRecorder()
	handler.SignUp(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp["success"].(bool))
	details := resp["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "confirm_password")
}

func TestAuthHandler_SignUp_DuplicateEmail(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{signUpErr: auth.ErrEmailAlreadyExists}, nil)

	req := jsonRequest(http.MethodPost, "/api/v1/auth/signup", auth.SignUpRequest{
		Email:           "ana@example.com",
		Password:        "SecurePass123!",
		ConfirmPassword: "SecurePass123!",
		DisplayName:     "Ana",
	})
	w := httptest.NewRecorder()
	handler.SignUp(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_SignUp_InvalidJSON(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader("invalid json"))
	w := httptest.NewRecorder()
	handler.SignUp(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_SignIn(t *testing.T) {
	t.Run("success sets refresh cookie", func(t *testing.T) {
		handler := createAuthHandler(t, &fakeAuthService{}, nil)
		w := httptest.NewRecorder()
		handler.SignIn(w, jsonRequest(http.MethodPost, "/api/v1/auth/signin", auth.SignInRequest{
			Email:    "ana@example.com",
			Password: "password123",
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotNil(t, findCookie(w, jwt.RefreshTokenCookieName))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		handler := createAuthHandler(t, &fakeAuthService{signInErr: auth.ErrInvalidCredentials}, nil)
		w := httptest.NewRecorder()
		handler.SignIn(w, jsonRequest(http.MethodPost, "/api/v1/auth/signin", auth.SignInRequest{
			Email:    "ana@example.com",
			Password: "wrongpassword",
		}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, findCookie(w, jwt.RefreshTokenCookieName))
	})

	t.Run("inactive user", func(t *testing.T) {
		handler := createAuthHandler(t, &fakeAuthService{signInErr: auth.ErrUserInactive}, nil)
		w := httptest.NewRecorder()
		handler.SignIn(w, jsonRequest(http.MethodPost, "/api/v1/auth/signin", auth.SignInRequest{
			Email:    "ana@example.com",
			Password: "password123",
		}))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAuthHandler_SignInWithGoogle(t *testing.T) {
	t.Run("disabled without oauth config", func(t *testing.T) {
		handler := createAuthHandler(t, &fakeAuthService{}, nil)
		w := httptest.NewRecorder()
		handler.SignInWithGoogle(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("redirects with state cookie", func(t *testing.T) {
		google := oauth.NewGoogleService("test-client-id", "test-client-secret", "http://localhost:8080/api/v1/auth/google/callback", []string{"email"})
		handler := createAuthHandler(t, &fakeAuthService{}, google)
		w := httptest.NewRecorder()
		handler.SignInWithGoogle(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google", nil))

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		state := findCookie(w, oauth.StateCookieName)
		require.NotNil(t, state)
		assert.NotEmpty(t, state.Value)
		assert.Contains(t, w.Header().Get("Location"), "state="+state.Value)
	})
}

func TestAuthHandler_GoogleCallback_StateMismatch(t *testing.T) {
	google := oauth.NewGoogleService("test-client-id", "test-client-secret", "http://localhost:8080/cb", []string{"email"})
	handler := createAuthHandler(t, &fakeAuthService{}, google)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=other&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: oauth.StateCookieName, Value: "expected"})
	w := httptest.NewRecorder()
	handler.GoogleCallback(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "http://localhost:3000/auth/callback/google?error=state_mismatch", w.Header().Get("Location"))
}

func TestAuthHandler_SignOut(t *testing.T) {
	t.Run("reads cookie and clears it", func(t *testing.T) {
		svc := &fakeAuthService{}
		handler := createAuthHandler(t, svc, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signout", nil)
		req.AddCookie(&http.Cookie{Name: jwt.RefreshTokenCookieName, Value: "cookie-token"})
		w := httptest.NewRecorder()
		handler.SignOut(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cookie-token", svc.signedOut)
		cleared := findCookie(w, jwt.RefreshTokenCookieName)
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
		assert.Equal(t, -1, cleared.MaxAge)
	})

	t.Run("falls back to body", func(t *testing.T) {
		svc := &fakeAuthService{}
		handler := createAuthHandler(t, svc, nil)

		w := httptest.NewRecorder()
		handler.SignOut(w, jsonRequest(http.MethodPost, "/api/v1/auth/signout", auth.RefreshTokenRequest{RefreshToken: "body-token"}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "body-token", svc.signedOut)
	})

	t.Run("missing token", func(t *testing.T) {
		handler := createAuthHandler(t, &fakeAuthService{}, nil)
		w := httptest.NewRecorder()
		handler.SignOut(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signout", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuthService{}
		handler := createAuthHandler(t, svc, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: jwt.RefreshTokenCookieName, Value: "cookie-token"})
		w := httptest.NewRecorder()
		handler.RefreshToken(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cookie-token", svc.refreshed)
		data := decodeEnvelope(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "new-access", data["access_token"])
	})

	t.Run("revoked", func(t *testing.T) {
		handler := createAuthHandler(t, &fakeAuthService{refreshErr: auth.ErrRefreshTokenRevoked}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: jwt.RefreshTokenCookieName, Value: "cookie-token"})
		w := httptest.NewRecorder()
		handler.RefreshToken(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := createAuthHandler(t, &fakeAuthService{}, nil)
		w := httptest.NewRecorder()
		handler.RefreshToken(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_ForgotPassword_SameAnswer(t *testing.T) {
	svc := &fakeAuthService{}
	handler := createAuthHandler(t, svc, nil)

	w := httptest.NewRecorder()
	handler.ForgotPassword(w, jsonRequest(http.MethodPost, "/api/v1/auth/forgot-password", auth.ForgotPasswordRequest{Email: "nobody@example.com"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nobody@example.com", svc.forgotFor)
}

func TestAuthHandler_Me(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{}, nil)

	t.Run("requires actor", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns permissions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(jwt.ContextWithActor(req.Context(), jwt.Actor{UserID: "u-hr", Role: user.RoleHRAdvisor}))
		w := httptest.NewRecorder()
		handler.Me(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeEnvelope(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "u-hr", data["id"])
		assert.Equal(t, []interface{}{"approve_leave"}, data["permissions"])
	})
}
