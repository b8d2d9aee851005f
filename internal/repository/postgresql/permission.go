package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type permissionRepositoryImpl struct {
	db *database.DB
}

func NewPermissionRepository(db *database.DB) permission.Repository {
	return &permissionRepositoryImpl{db: db}
}

func (r *permissionRepositoryImpl) Get(ctx context.Context, userID string) (permission.CustomUserPermissions, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, granted_permissions, denied_permissions, updated_at
		FROM user_permissions
		WHERE user_id = $1
	`
	var custom permission.CustomUserPermissions
	var granted, denied []string
	err := q.QueryRow(ctx, query, userID).Scan(&custom.UserID, &granted, &denied, &custom.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return permission.CustomUserPermissions{}, permission.ErrCustomPermissionsNotFound
		}
		return permission.CustomUserPermissions{}, err
	}

	custom.GrantedPermissions = toPermissions(granted)
	custom.DeniedPermissions = toPermissions(denied)
	return custom, nil
}

func (r *permissionRepositoryImpl) Upsert(ctx context.Context, custom permission.CustomUserPermissions) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO user_permissions (user_id, granted_permissions, denied_permissions, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET granted_permissions = EXCLUDED.granted_permissions,
		    denied_permissions = EXCLUDED.denied_permissions,
		    updated_at = NOW()
	`
	_, err := q.Exec(ctx, query, custom.UserID, fromPermissions(custom.GrantedPermissions), fromPermissions(custom.DeniedPermissions))
	return err
}

func toPermissions(names []string) []user.Permission {
	out := make([]user.Permission, 0, len(names))
	for _, n := range names {
		out = append(out, user.Permission(n))
	}
	return out
}

func fromPermissions(perms []user.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}
