package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/auth"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/oauth"
)

const googleCallbackPath = "/api/v1/auth/google/callback"

var errMalformedBody = errors.New("invalid request format")

// writeTokenError answers 400 for an unreadable body and maps everything else.
func writeTokenError(w http.ResponseWriter, err error) {
	if errors.Is(err, errMalformedBody) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	response.HandleError(w, err)
}

type AuthHandler interface {
	SignUp(w http.ResponseWriter, r *http.Request)
	SignIn(w http.ResponseWriter, r *http.Request)
	SignInWithGoogle(w http.ResponseWriter, r *http.Request)
	GoogleCallback(w http.ResponseWriter, r *http.Request)
	SignOut(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	GetUserRole(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService    jwt.Service
	authService   auth.AuthService
	googleService oauth.GoogleService
	frontendURL   string
	secureCookie  bool
}

// NewAuthHandler builds the auth endpoints. googleService is nil when Google sign-in is off.
func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService, googleService oauth.GoogleService, frontendURL string, secureCookie bool) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:    jwtService,
		authService:   authService,
		googleService: googleService,
		frontendURL:   frontendURL,
		secureCookie:  secureCookie,
	}
}

func sessionFrom(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

// SignUp implements AuthHandler.
func (a *AuthHandlerImpl) SignUp(w http.ResponseWriter, r *http.Request) {
	var signUpReq auth.SignUpRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&signUpReq); err != nil {
		slog.Error("SignUp decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validate DTO
	if err := signUpReq.Validate(); err != nil {
		slog.Error("SignUp validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.SignUp(r.Context(), signUpReq, sessionFrom(r))
	if err != nil {
		slog.Error("SignUp service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn))
	slog.Info("User registered successfully", "user_id", tokenResponse.User.ID)
	response.Created(w, "User created successfully", tokenResponse)
}

// SignIn implements AuthHandler.
func (a *AuthHandlerImpl) SignIn(w http.ResponseWriter, r *http.Request) {
	var signInReq auth.SignInRequest

	if err := json.NewDecoder(r.Body).Decode(&signInReq); err != nil {
		slog.Error("SignIn decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := signInReq.Validate(); err != nil {
		slog.Error("SignIn validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.SignIn(r.Context(), signInReq, sessionFrom(r))
	if err != nil {
		slog.Error("SignIn service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn))
	slog.Info("User logged in successfully", "user_id", tokenResponse.User.ID)
	response.SuccessWithMessage(w, "User logged in successfully", tokenResponse)
}

// SignInWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) SignInWithGoogle(w http.ResponseWriter, r *http.Request) {
	if a.googleService == nil {
		response.HandleError(w, auth.ErrOAuthDisabled)
		return
	}

	state, err := a.googleService.GenerateState()
	if err != nil {
		slog.Error("Generate OAuth state error", "error", err)
		response.InternalServerError(w, "Failed to start Google sign-in")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauth.StateCookieName,
		Value:    state,
		Path:     googleCallbackPath,
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, a.googleService.RedirectURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback implements AuthHandler. Failures are reported to the frontend as ?error=.
func (a *AuthHandlerImpl) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	redirectWithError := func(errorMsg string) {
		redirectURL := fmt.Sprintf("%s/auth/callback/google?error=%s", a.frontendURL, url.QueryEscape(errorMsg))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	if a.googleService == nil {
		redirectWithError("google_disabled")
		return
	}

	stateCookie, err := r.Cookie(oauth.StateCookieName)
	if err != nil || stateCookie.Value == "" {
		slog.Error("State cookie not found", "error", err)
		redirectWithError("state_cookie_not_found")
		return
	}
	if errorValue := r.URL.Query().Get("error"); errorValue != "" {
		slog.Error("Error in OAuth callback", "error", errorValue)
		redirectWithError(errorValue)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		slog.Error("State mismatch", "error", auth.ErrOAuthStateMismatch)
		redirectWithError("state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectWithError("code_empty")
		return
	}

	tokenResponse, err := a.authService.SignInWithGoogle(r.Context(), code, sessionFrom(r))
	if err != nil {
		slog.Error("Failed to sign in with Google", "error", err)
		redirectWithError("login_failed")
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn))
	slog.Info("User logged in successfully via Google OAuth", "user_id", tokenResponse.User.ID)

	// Redirect to frontend with access token
	redirectURL := fmt.Sprintf("%s/auth/callback/google?access_token=%s&expires_in=%d",
		a.frontendURL,
		url.QueryEscape(tokenResponse.AccessToken),
		tokenResponse.AccessTokenExpiresIn,
	)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// refreshTokenFrom prefers the cookie and falls back to a JSON body.
func refreshTokenFrom(r *http.Request) (auth.RefreshTokenRequest, error) {
	var req auth.RefreshTokenRequest
	if cookie, err := r.Cookie(jwt.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
		return req, nil
	}
	if r.Body == nil || r.ContentLength == 0 {
		return req, auth.ErrRefreshTokenCookieNotFound
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errMalformedBody
	}
	if req.RefreshToken == "" {
		return req, auth.ErrRefreshTokenCookieEmpty
	}
	return req, nil
}

// SignOut implements AuthHandler.
func (a *AuthHandlerImpl) SignOut(w http.ResponseWriter, r *http.Request) {
	req, err := refreshTokenFrom(r)
	if err != nil {
		slog.Error("SignOut token error", "error", err)
		writeTokenError(w, err)
		return
	}

	if err := a.authService.SignOut(r.Context(), req.RefreshToken); err != nil {
		slog.Error("SignOut service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.ClearRefreshTokenCookie())
	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

// RefreshToken implements AuthHandler.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshTokenReq, err := refreshTokenFrom(r)
	if err != nil {
		slog.Error("Refresh Token decode error", "error", err)
		writeTokenError(w, err)
		return
	}

	if err := refreshTokenReq.Validate(); err != nil {
		slog.Error("Refresh Token validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.RefreshToken(r.Context(), refreshTokenReq)
	if err != nil {
		slog.Error("Refresh Token service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Token refreshed successfully", tokenResponse)
}

// ForgotPassword implements AuthHandler.
func (a *AuthHandlerImpl) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var forgotPasswordReq auth.ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&forgotPasswordReq); err != nil {
		slog.Error("ForgotPassword decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := forgotPasswordReq.Validate(); err != nil {
		slog.Error("ForgotPassword validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ForgotPassword(r.Context(), forgotPasswordReq, r.RemoteAddr); err != nil {
		slog.Error("ForgotPassword service error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Same answer whether or not the account exists
	response.SuccessWithMessage(w, "If the email is registered, a password reset link has been sent", nil)
}

// ResetPassword implements AuthHandler.
func (a *AuthHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var resetPasswordReq auth.ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&resetPasswordReq); err != nil {
		slog.Error("ResetPassword decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := resetPasswordReq.Validate(); err != nil {
		slog.Error("ResetPassword validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ResetPassword(r.Context(), resetPasswordReq); err != nil {
		slog.Error("ResetPassword service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Password reset successfully")
	response.SuccessWithMessage(w, "Password has been reset successfully", nil)
}

// Me implements AuthHandler.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	me, err := a.authService.Me(r.Context(), actor.UserID)
	if err != nil {
		slog.Error("Me service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, me)
}

// GetUserRole implements AuthHandler.
func (a *AuthHandlerImpl) GetUserRole(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	role, err := a.authService.GetUserRole(r.Context(), actor.UserID)
	if err != nil {
		slog.Error("GetUserRole service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, role)
}
