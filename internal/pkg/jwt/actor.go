package jwt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrNoActor = errors.New("no authenticated user in context")

// Actor is the caller resolved from the verified access token.
type Actor struct {
	UserID     string
	Email      string
	Role       user.Role
	EmployeeID string
}

// HasEmployee reports whether the caller is linked to an employee record.
func (a Actor) HasEmployee() bool {
	return a.EmployeeID != ""
}

// ActorFromContext reads the claims placed in ctx by jwtauth.Verifier.
func ActorFromContext(ctx context.Context) (Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Actor{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if claims == nil {
		return Actor{}, ErrNoActor
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Actor{}, ErrNoActor
	}

	email, _ := claims["email"].(string)
	employeeID, _ := claims["employee_id"].(string)
	roleClaim, _ := claims["role"].(string)
	role, ok := user.NormalizeRole(roleClaim)
	if !ok {
		return Actor{}, fmt.Errorf("unknown role claim %q", roleClaim)
	}

	return Actor{
		UserID:     userID,
		Email:      email,
		Role:       role,
		EmployeeID: employeeID,
	}, nil
}

// ContextWithActor stores an unsigned token carrying a's claims, as jwtauth.Verifier would.
// Background jobs and tests use it to call services on behalf of a user.
func ContextWithActor(ctx context.Context, a Actor) context.Context {
	token := jwt.New()
	_ = token.Set("user_id", a.UserID)
	_ = token.Set("email", a.Email)
	_ = token.Set("role", string(a.Role))
	_ = token.Set("type", TokenTypeAccess)
	if a.EmployeeID != "" {
		_ = token.Set("employee_id", a.EmployeeID)
	}
	return jwtauth.NewContext(ctx, token, nil)
}

func newTokenID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
