package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a shared cache fill, which outlives the caller that started it.
const loadTimeout = 5 * time.Second

type PermissionServiceImpl struct {
	repo     permission.Repository
	userRepo user.UserRepository
	cache    permission.Cache
	group    singleflight.Group

	// genMu guards gens and epoch and orders cache writes between fills and saves.
	genMu sync.Mutex
	gens  map[string]uint64
	epoch uint64
}

type fillToken struct {
	epoch, user uint64
}

func NewPermissionService(repo permission.Repository, userRepo user.UserRepository, cache permission.Cache) permission.Service {
	return &PermissionServiceImpl{
		repo:     repo,
		userRepo: userRepo,
		cache:    cache,
		gens:     make(map[string]uint64),
	}
}

// Catalogue implements permission.Service.
func (s *PermissionServiceImpl) Catalogue() permission.CatalogueResponse {
	roles := make(map[user.Role][]user.Permission, len(user.AllRoles()))
	for _, role := range user.AllRoles() {
		roles[role] = user.PermissionsForRole(role)
	}
	return permission.CatalogueResponse{
		Permissions: user.AllPermissions(),
		Roles:       roles,
	}
}

// GetUserCustomPermissions reads through the cache. Concurrent misses for one user share a load.
func (s *PermissionServiceImpl) GetUserCustomPermissions(ctx context.Context, userID string) (permission.CustomUserPermissions, error) {
	if custom, ok := s.cache.Get(ctx, userID); ok {
		return custom, nil
	}

	v, err, _ := s.group.Do(userID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		token := s.token(userID)
		custom, err := s.repo.Get(loadCtx, userID)
		if errors.Is(err, permission.ErrCustomPermissionsNotFound) {
			custom = permission.Empty(userID)
		} else if err != nil {
			return permission.CustomUserPermissions{}, err
		}
		s.fill(loadCtx, userID, token, custom)
		return custom, nil
	})
	if err != nil {
		return permission.CustomUserPermissions{}, fmt.Errorf("failed to load custom permissions: %w", err)
	}
	return v.(permission.CustomUserPermissions), nil
}

func (s *PermissionServiceImpl) GetUserPermissions(ctx context.Context, userID string, role user.Role) ([]user.Permission, error) {
	custom, err := s.GetUserCustomPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return permission.Effective(role, custom), nil
}

// HasPermission fails closed: a load error is returned instead of falling back to the role table.
func (s *PermissionServiceImpl) HasPermission(ctx context.Context, userID string, role user.Role, p user.Permission) (bool, error) {
	custom, err := s.GetUserCustomPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return permission.Has(role, custom, p), nil
}

func (s *PermissionServiceImpl) GetUserPermissionDetail(ctx context.Context, userID string) (permission.UserPermissionsResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return permission.UserPermissionsResponse{}, err
	}
	custom, err := s.GetUserCustomPermissions(ctx, userID)
	if err != nil {
		return permission.UserPermissionsResponse{}, err
	}
	return detail(u, custom), nil
}

func (s *PermissionServiceImpl) SetUserCustomPermissions(ctx context.Context, userID string, req permission.SetCustomPermissionsRequest) (permission.UserPermissionsResponse, error) {
	if err := req.Validate(); err != nil {
		return permission.UserPermissionsResponse{}, err
	}
	return s.write(ctx, userID, func(permission.CustomUserPermissions) permission.CustomUserPermissions {
		return req.ToCustom(userID)
	})
}

func (s *PermissionServiceImpl) GrantPermission(ctx context.Context, userID string, p user.Permission) (permission.UserPermissionsResponse, error) {
	if !p.IsValid() {
		return permission.UserPermissionsResponse{}, permission.ErrUnknownPermission
	}
	return s.write(ctx, userID, func(c permission.CustomUserPermissions) permission.CustomUserPermissions {
		return c.Grant(p)
	})
}

func (s *PermissionServiceImpl) DenyPermission(ctx context.Context, userID string, p user.Permission) (permission.UserPermissionsResponse, error) {
	if !p.IsValid() {
		return permission.UserPermissionsResponse{}, permission.ErrUnknownPermission
	}
	return s.write(ctx, userID, func(c permission.CustomUserPermissions) permission.CustomUserPermissions {
		return c.Deny(p)
	})
}

func (s *PermissionServiceImpl) ResetUserCustomPermissions(ctx context.Context, userID string) error {
	_, err := s.write(ctx, userID, func(permission.CustomUserPermissions) permission.CustomUserPermissions {
		return permission.Empty(userID)
	})
	return err
}

// ClearCache drops one user's entry, or everything when userID is empty.
func (s *PermissionServiceImpl) ClearCache(ctx context.Context, userID string) {
	if userID == "" {
		s.genMu.Lock()
		s.epoch++
		s.cache.Clear(ctx)
		s.genMu.Unlock()
		slog.Info("permission cache cleared")
		return
	}
	s.genMu.Lock()
	s.gens[userID]++
	s.cache.Delete(ctx, userID)
	s.genMu.Unlock()
}

func (s *PermissionServiceImpl) token(userID string) fillToken {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return fillToken{epoch: s.epoch, user: s.gens[userID]}
}

// fill caches a loaded document unless a save for the same user happened after the load began.
func (s *PermissionServiceImpl) fill(ctx context.Context, userID string, token fillToken, custom permission.CustomUserPermissions) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.epoch != token.epoch || s.gens[userID] != token.user {
		return
	}
	s.cache.Set(ctx, custom)
}

// store writes a saved document through to the cache and invalidates in-flight fills.
func (s *PermissionServiceImpl) store(ctx context.Context, custom permission.CustomUserPermissions) {
	s.genMu.Lock()
	s.gens[custom.UserID]++
	s.cache.Set(ctx, custom)
	s.genMu.Unlock()
	s.group.Forget(custom.UserID)
}

// write loads the user's overrides from the database, applies change and stores the result.
func (s *PermissionServiceImpl) write(ctx context.Context, userID string, change func(permission.CustomUserPermissions) permission.CustomUserPermissions) (permission.UserPermissionsResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return permission.UserPermissionsResponse{}, err
	}

	current, err := s.repo.Get(ctx, userID)
	if errors.Is(err, permission.ErrCustomPermissionsNotFound) {
		current = permission.Empty(userID)
	} else if err != nil {
		return permission.UserPermissionsResponse{}, fmt.Errorf("failed to load custom permissions: %w", err)
	}

	updated := change(current).Normalize()
	updated.UserID = userID
	if err := s.repo.Upsert(ctx, updated); err != nil {
		return permission.UserPermissionsResponse{}, fmt.Errorf("failed to save custom permissions: %w", err)
	}
	s.store(ctx, updated)

	return detail(u, updated), nil
}

func detail(u user.User, custom permission.CustomUserPermissions) permission.UserPermissionsResponse {
	return permission.UserPermissionsResponse{
		UserID:    u.ID,
		Role:      u.Role,
		Granted:   custom.GrantedPermissions,
		Denied:    custom.DeniedPermissions,
		Effective: permission.Effective(u.Role, custom),
	}
}
