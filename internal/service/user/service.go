package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/email"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	userRepo     user.UserRepository
	permissions  permission.Service
	notifier     notification.Notifier
	emailService email.EmailService
	frontendURL  string

	async func(func())
}

func NewUserService(
	userRepo user.UserRepository,
	permissions permission.Service,
	notifier notification.Notifier,
	emailService email.EmailService,
	frontendURL string,
) user.UserService {
	return &UserServiceImpl{
		userRepo:     userRepo,
		permissions:  permissions,
		notifier:     notifier,
		emailService: emailService,
		frontendURL:  frontendURL,
		async:        func(f func()) { go f() },
	}
}

func (s *UserServiceImpl) List(ctx context.Context, filter user.UserFilter) ([]user.UserResponse, int64, error) {
	filter.Normalize()
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return toResponses(users), total, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return u.ToResponse(), nil
}

// Create registers an account on behalf of an admin, who may pick any role.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	role, _ := user.NormalizeRole(req.Role)
	status := user.StatusActive
	if req.Status != "" {
		status = user.Status(req.Status)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash := string(hash)

	created, err := s.userRepo.Create(ctx, user.User{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: &passwordHash,
		Role:         role,
		Status:       status,
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	loginLink := s.frontendURL + "/login"
	s.async(func() {
		if err := s.emailService.SendWelcome(created.Email, created.DisplayName, string(created.Role), loginLink); err != nil {
			slog.Error("failed to send welcome email", "error", err, "user_id", created.ID)
		}
	})

	return created.ToResponse(), nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if err := s.userRepo.Update(ctx, id, req); err != nil {
		return user.UserResponse{}, err
	}
	return s.GetByID(ctx, id)
}

// UpdateRole changes the stored role. Issued access tokens keep the old role until refreshed.
func (s *UserServiceImpl) UpdateRole(ctx context.Context, actorID, id string, req user.UpdateRoleRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if actorID == id {
		return user.UserResponse{}, user.ErrCannotChangeOwnRole
	}

	role, _ := user.NormalizeRole(req.Role)
	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	if current.Role == role {
		return current.ToResponse(), nil
	}

	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return user.UserResponse{}, err
	}
	s.permissions.ClearCache(ctx, id)

	if err := s.notifier.NotifyRoleChanged(ctx, id, string(role)); err != nil {
		slog.Error("failed to notify role change", "error", err, "user_id", id)
	}

	current.Role = role
	return current.ToResponse(), nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return user.ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.permissions.ClearCache(ctx, id)
	return nil
}

func (s *UserServiceImpl) GetByRole(ctx context.Context, role string) ([]user.UserResponse, error) {
	normalized, ok := user.NormalizeRole(role)
	if !ok || role == "" {
		return nil, user.ErrInvalidRole
	}
	users, err := s.userRepo.ListByRoles(ctx, []user.Role{normalized}, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return toResponses(users), nil
}

func (s *UserServiceImpl) GetActive(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.userRepo.ListByRoles(ctx, user.AllRoles(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return toResponses(users), nil
}

func toResponses(users []user.User) []user.UserResponse {
	out := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return out
}
