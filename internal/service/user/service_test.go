package user

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	svc      *UserServiceImpl
	repo     *servicetest.UserRepo
	perms    *servicetest.Permissions
	notifier *servicetest.Notifier
	mail     *servicetest.Email
}

func newUserFixture(users ...user.User) userFixture {
	f := userFixture{
		repo:     servicetest.NewUserRepo(users...),
		perms:    &servicetest.Permissions{},
		notifier: &servicetest.Notifier{},
		mail:     &servicetest.Email{},
	}
	svc := NewUserService(f.repo, f.perms, f.notifier, f.mail, "http://frontend.test").(*UserServiceImpl)
	svc.async = func(fn func()) { fn() }
	f.svc = svc
	return f
}

func seeded(id string, role user.Role, status user.Status) user.User {
	return user.User{ID: id, Email: id + "@example.com", DisplayName: id, Role: role, Status: status}
}

func TestUserService_Create_NormalizesAdvisorAndSendsWelcome(t *testing.T) {
	f := newUserFixture()

	resp, err := f.svc.Create(context.Background(), user.CreateUserRequest{
		Email:       "Advisor@Example.com",
		Password:    "password123",
		DisplayName: "Ada",
		Role:        "advisor",
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleHRAdvisor, resp.Role)
	assert.Equal(t, user.StatusActive, resp.Status)
	assert.Equal(t, "advisor@example.com", resp.Email)

	mail := f.mail.All()
	require.Len(t, mail, 1)
	assert.Equal(t, "welcome", mail[0].Kind)
	assert.Equal(t, "http://frontend.test/login", mail[0].Link)
}

func TestUserService_Create_ValidationAndDuplicate(t *testing.T) {
	f := newUserFixture(seeded("u1", user.RoleEmployee, user.StatusActive))

	_, err := f.svc.Create(context.Background(), user.CreateUserRequest{Email: "bad", Password: "short", DisplayName: "", Role: "boss"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "display_name")
	assert.Contains(t, fields, "role")

	_, err = f.svc.Create(context.Background(), user.CreateUserRequest{Email: "u1@example.com", Password: "password123", DisplayName: "Dup"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUserService_UpdateRole_ClearsCacheAndNotifies(t *testing.T) {
	f := newUserFixture(seeded("admin", user.RoleAdmin, user.StatusActive), seeded("u1", user.RoleEmployee, user.StatusActive))

	resp, err := f.svc.UpdateRole(context.Background(), "admin", "u1", user.UpdateRoleRequest{Role: "advisor"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleHRAdvisor, resp.Role)

	stored, _ := f.repo.GetByID(context.Background(), "u1")
	assert.Equal(t, user.RoleHRAdvisor, stored.Role)
	assert.Equal(t, []string{"u1"}, f.perms.Cleared)

	sent := f.notifier.All()
	require.Len(t, sent, 1)
	assert.Equal(t, "u1", sent[0].UserID)
	assert.Equal(t, notification.TypeRoleChanged, sent[0].Type)
	assert.Equal(t, notification.TitleRoleChanged, sent[0].Title)
}

func TestUserService_UpdateRole_SameRoleIsNoop(t *testing.T) {
	f := newUserFixture(seeded("u1", user.RoleEmployee, user.StatusActive))

	_, err := f.svc.UpdateRole(context.Background(), "admin", "u1", user.UpdateRoleRequest{Role: "employee"})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.All())
	assert.Empty(t, f.perms.Cleared)
}

func TestUserService_UpdateRole_Errors(t *testing.T) {
	f := newUserFixture(seeded("admin", user.RoleAdmin, user.StatusActive))

	_, err := f.svc.UpdateRole(context.Background(), "admin", "admin", user.UpdateRoleRequest{Role: "employee"})
	assert.ErrorIs(t, err, user.ErrCannotChangeOwnRole)

	_, err = f.svc.UpdateRole(context.Background(), "admin", "missing", user.UpdateRoleRequest{Role: "employee"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.svc.UpdateRole(context.Background(), "admin", "missing", user.UpdateRoleRequest{Role: "owner"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUserService_Delete(t *testing.T) {
	f := newUserFixture(seeded("admin", user.RoleAdmin, user.StatusActive), seeded("u1", user.RoleEmployee, user.StatusActive))

	assert.ErrorIs(t, f.svc.Delete(context.Background(), "admin", "admin"), user.ErrCannotDeleteSelf)
	require.NoError(t, f.svc.Delete(context.Background(), "admin", "u1"))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), "admin", "u1"), user.ErrUserNotFound)
	assert.Equal(t, []string{"u1"}, f.perms.Cleared)
}

func TestUserService_Update(t *testing.T) {
	f := newUserFixture(seeded("u1", user.RoleEmployee, user.StatusActive))
	suspended := string(user.StatusSuspended)

	resp, err := f.svc.Update(context.Background(), "u1", user.UpdateUserRequest{Status: &suspended})
	require.NoError(t, err)
	assert.Equal(t, user.StatusSuspended, resp.Status)

	_, err = f.svc.Update(context.Background(), "u1", user.UpdateUserRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUserService_GetByRoleAndActive(t *testing.T) {
	f := newUserFixture(
		seeded("a", user.RoleHRAdvisor, user.StatusActive),
		seeded("b", user.RoleHRAdvisor, user.StatusInactive),
		seeded("c", user.RoleEmployee, user.StatusActive),
	)

	advisors, err := f.svc.GetByRole(context.Background(), "advisor")
	require.NoError(t, err)
	assert.Len(t, advisors, 2)

	_, err = f.svc.GetByRole(context.Background(), "owner")
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	active, err := f.svc.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, u := range active {
		assert.Equal(t, user.StatusActive, u.Status)
	}
}
