package jwt

import (
	"errors"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSSE     = "sse"

	RefreshTokenCookieName = "refresh_token"
)

var (
	ErrInvalidTokenType = errors.New("unexpected token type")
	ErrMissingUserID    = errors.New("token has no user_id claim")
)

// AccessClaims is the identity carried by an access token.
type AccessClaims struct {
	UserID     string
	Email      string
	Role       user.Role
	EmployeeID *string
}

type Service interface {
	GenerateAccessToken(claims AccessClaims) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	// ParseRefreshToken verifies signature, expiry and type of a refresh token.
	ParseRefreshToken(tokenString string) (userID string, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	ClearRefreshTokenCookie() *http.Cookie
	AccessExpiration() time.Duration
	RefreshExpiration() time.Duration
}

type JWTService struct {
	accessTTL    time.Duration
	refreshTTL   time.Duration
	secureCookie bool
	tokenAuth    *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService builds the token service. Expirations are Go durations such as "1h".
func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string, secureCookie bool) (Service, error) {
	accessTTL, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := time.ParseDuration(refreshTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		secureCookie: secureCookie,
		tokenAuth:    jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) AccessExpiration() time.Duration  { return j.accessTTL }
func (j *JWTService) RefreshExpiration() time.Duration { return j.refreshTTL }

func (j *JWTService) GenerateAccessToken(c AccessClaims) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTTL).Unix()

	claims := map[string]interface{}{
		"user_id": c.UserID,
		"email":   c.Email,
		"role":    string(c.Role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	}
	if c.EmployeeID != nil {
		claims["employee_id"] = *c.EmployeeID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(userID string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.refreshTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"exp":     expiresAt,
		"type":    TokenTypeRefresh,
		// two refresh tokens minted in the same second must still hash differently
		"jti": newTokenID(),
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseRefreshToken(tokenString string) (string, error) {
	return j.verify(tokenString, TokenTypeRefresh)
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) ClearRefreshTokenCookie() *http.Cookie {
	return &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	// SSE tokens are short-lived (5 minutes)
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    TokenTypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the user ID
func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	return j.verify(tokenString, TokenTypeSSE)
}

func (j *JWTService) verify(tokenString, wantType string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != wantType {
		return "", ErrInvalidTokenType
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", ErrMissingUserID
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", ErrMissingUserID
	}

	return userID, nil
}
