package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin creates an active admin account, or promotes and reactivates an
// existing one and resets its password. It bypasses the actor checks because it
// is the only way to create the first admin.
func EnsureAdmin(ctx context.Context, repo user.UserRepository, email, password, displayName string) (u user.User, created bool, err error) {
	req := user.CreateUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
		Role:        string(user.RoleAdmin),
	}
	if err := req.Validate(); err != nil {
		return user.User{}, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, false, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash := string(hash)

	existing, err := repo.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		u, err = repo.Create(ctx, user.User{
			Email:        req.Email,
			DisplayName:  req.DisplayName,
			PasswordHash: &passwordHash,
			Role:         user.RoleAdmin,
			Status:       user.StatusActive,
		})
		if err != nil {
			return user.User{}, false, err
		}
		return u, true, nil
	case err != nil:
		return user.User{}, false, err
	}

	if err := repo.UpdateRole(ctx, existing.ID, user.RoleAdmin); err != nil {
		return user.User{}, false, err
	}
	if err := repo.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
		return user.User{}, false, err
	}
	active := string(user.StatusActive)
	if err := repo.Update(ctx, existing.ID, user.UpdateUserRequest{Status: &active}); err != nil {
		return user.User{}, false, err
	}

	u, err = repo.GetByID(ctx, existing.ID)
	return u, false, err
}
