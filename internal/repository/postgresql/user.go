package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `
	u.id, u.email, u.display_name, u.password_hash, u.role, u.status,
	u.oauth_provider, u.oauth_provider_id, u.last_login_at, u.created_at, u.updated_at,
	e.id`

const userFrom = `FROM users u LEFT JOIN employees e ON e.user_id = u.id`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.OAuthProvider,
		&u.OAuthProviderID,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.EmployeeID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepositoryImpl) getOne(ctx context.Context, where string, arg interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + userColumns + ` ` + userFrom + ` WHERE ` + where
	return scanUser(q.QueryRow(ctx, query, arg))
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "u.email = $1", strings.ToLower(strings.TrimSpace(email)))
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

func (r *userRepositoryImpl) GetByOAuthID(ctx context.Context, provider, providerID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + userColumns + ` ` + userFrom + ` WHERE u.oauth_provider = $1 AND u.oauth_provider_id = $2`
	return scanUser(q.QueryRow(ctx, query, provider, providerID))
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		id, err := newID()
		if err != nil {
			return user.User{}, err
		}
		newUser.ID = id
	}
	if newUser.Status == "" {
		newUser.Status = user.StatusActive
	}

	query := `
		INSERT INTO users (
			id, email, display_name, password_hash, role, status, oauth_provider, oauth_provider_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newUser.ID,
		strings.ToLower(strings.TrimSpace(newUser.Email)),
		newUser.DisplayName,
		newUser.PasswordHash,
		newUser.Role,
		newUser.Status,
		newUser.OAuthProvider,
		newUser.OAuthProviderID,
	).Scan(&newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, err
	}

	newUser.Email = strings.ToLower(strings.TrimSpace(newUser.Email))
	return newUser, nil
}

func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var conditions []string
	var args []interface{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("u.status = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conditions = append(conditions, fmt.Sprintf("(u.email ILIKE $%d OR u.display_name ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))
	query := fmt.Sprintf(`SELECT %s %s%s ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, userFrom, where, len(args)-1, len(args))

	users, err := r.queryUsers(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepositoryImpl) ListByRoles(ctx context.Context, roles []user.Role, activeOnly bool) ([]user.User, error) {
	roleNames := make([]string, len(roles))
	for i, role := range roles {
		roleNames[i] = string(role)
	}

	query := `SELECT ` + userColumns + ` ` + userFrom + ` WHERE u.role = ANY($1)`
	args := []interface{}{roleNames}
	if activeOnly {
		query += ` AND u.status = $2`
		args = append(args, user.StatusActive)
	}
	query += ` ORDER BY u.created_at DESC`

	return r.queryUsers(ctx, query, args...)
}

func (r *userRepositoryImpl) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepositoryImpl) Update(ctx context.Context, id string, req user.UpdateUserRequest) error {
	q := GetQuerier(ctx, r.db)

	var sets []string
	var args []interface{}
	if req.DisplayName != nil {
		args = append(args, strings.TrimSpace(*req.DisplayName))
		sets = append(sets, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if req.Status != nil {
		args = append(args, *req.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	return execOne(ctx, q, user.ErrUserNotFound, query, args...)
}

func (r *userRepositoryImpl) UpdateRole(ctx context.Context, id string, role user.Role) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, user.ErrUserNotFound,
		`UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
}

func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, user.ErrUserNotFound,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
}

func (r *userRepositoryImpl) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, user.ErrUserNotFound,
		`UPDATE users SET last_login_at = $1 WHERE id = $2`, at, userID)
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, user.ErrUserNotFound, `
		UPDATE users
		SET oauth_provider = 'google', oauth_provider_id = $1, updated_at = NOW()
		WHERE id = $2
	`, googleID, userID)
}

// Delete removes the user. Refresh tokens and permission overrides cascade; employees.user_id is set null.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, user.ErrUserNotFound, `DELETE FROM users WHERE id = $1`, id)
}

// execOne runs a write and returns notFound when no row was affected.
func execOne(ctx context.Context, q database.Querier, notFound error, query string, args ...interface{}) error {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
