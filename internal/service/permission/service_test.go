package permission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/cache"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu     sync.Mutex
	data   map[string]permission.CustomUserPermissions
	gets   int32
	getErr error
	delay  time.Duration

	// afterRead runs once the stored document has been copied out.
	afterRead func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{data: make(map[string]permission.CustomUserPermissions)}
}

func (r *fakeRepo) Get(ctx context.Context, userID string) (permission.CustomUserPermissions, error) {
	atomic.AddInt32(&r.gets, 1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.getErr != nil {
		return permission.CustomUserPermissions{}, r.getErr
	}
	r.mu.Lock()
	c, ok := r.data[userID]
	r.mu.Unlock()
	if r.afterRead != nil {
		r.afterRead()
	}
	if !ok {
		return permission.CustomUserPermissions{}, permission.ErrCustomPermissionsNotFound
	}
	return c, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, custom permission.CustomUserPermissions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[custom.UserID] = custom
	return nil
}

func newService(repo *fakeRepo) *PermissionServiceImpl {
	users := servicetest.NewUserRepo(
		user.User{ID: "u-emp", Email: "emp@example.com", Role: user.RoleEmployee, Status: user.StatusActive},
		user.User{ID: "u-hr", Email: "hr@example.com", Role: user.RoleHRAdvisor, Status: user.StatusActive},
	)
	return NewPermissionService(repo, users, cache.NewMemoryPermissionCache(time.Minute)).(*PermissionServiceImpl)
}

func TestHasPermission_RoleTable(t *testing.T) {
	svc := newService(newFakeRepo())
	ctx := context.Background()

	ok, err := svc.HasPermission(ctx, "u-emp", user.RoleEmployee, user.PermissionRequestLeave)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasPermission(ctx, "u-emp", user.RoleEmployee, user.PermissionApproveLeave)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermission_DenyWinsOverRoleAndGrant(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.SetUserCustomPermissions(ctx, "u-hr", permission.SetCustomPermissionsRequest{
		GrantedPermissions: []string{"create_payslips", "approve_leave"},
		DeniedPermissions:  []string{"approve_leave"},
	})
	require.NoError(t, err)

	stored := repo.data["u-hr"]
	assert.Equal(t, []user.Permission{user.PermissionCreatePayslips}, stored.GrantedPermissions)
	assert.Equal(t, []user.Permission{user.PermissionApproveLeave}, stored.DeniedPermissions)

	ok, err := svc.HasPermission(ctx, "u-hr", user.RoleHRAdvisor, user.PermissionApproveLeave)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HasPermission(ctx, "u-hr", user.RoleHRAdvisor, user.PermissionCreatePayslips)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasPermission_AgreesWithEffectiveSet(t *testing.T) {
	svc := newService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.GrantPermission(ctx, "u-emp", user.PermissionViewAllLeave)
	require.NoError(t, err)
	_, err = svc.DenyPermission(ctx, "u-emp", user.PermissionRequestLeave)
	require.NoError(t, err)

	effective, err := svc.GetUserPermissions(ctx, "u-emp", user.RoleEmployee)
	require.NoError(t, err)
	set := map[user.Permission]bool{}
	for _, p := range effective {
		set[p] = true
	}

	for _, p := range user.AllPermissions() {
		has, err := svc.HasPermission(ctx, "u-emp", user.RoleEmployee, p)
		require.NoError(t, err)
		assert.Equal(t, set[p], has, "permission %s", p)
	}
	assert.True(t, set[user.PermissionViewAllLeave])
	assert.False(t, set[user.PermissionRequestLeave])
}

func TestGrantThenDenyMovesPermission(t *testing.T) {
	svc := newService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.GrantPermission(ctx, "u-emp", user.PermissionViewAllEmployees)
	require.NoError(t, err)
	detail, err := svc.DenyPermission(ctx, "u-emp", user.PermissionViewAllEmployees)
	require.NoError(t, err)

	assert.Empty(t, detail.Granted)
	assert.Equal(t, []user.Permission{user.PermissionViewAllEmployees}, detail.Denied)
	assert.NotContains(t, detail.Effective, user.PermissionViewAllEmployees)
}

func TestHasPermission_FailsClosedOnLoadError(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("connection refused")
	svc := newService(repo)

	ok, err := svc.HasPermission(context.Background(), "u-hr", user.RoleHRAdvisor, user.PermissionViewAllLeave)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestGetUserCustomPermissions_CachesMissingDocument(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		custom, err := svc.GetUserCustomPermissions(ctx, "u-emp")
		require.NoError(t, err)
		assert.Empty(t, custom.GrantedPermissions)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.gets))
}

func TestGetUserCustomPermissions_ConcurrentMissesShareLoad(t *testing.T) {
	repo := newFakeRepo()
	repo.delay = 50 * time.Millisecond
	svc := newService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetUserCustomPermissions(context.Background(), "u-hr")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, atomic.LoadInt32(&repo.gets), int32(10))
}

func TestWriteInvalidatesCache(t *testing.T) {
	svc := newService(newFakeRepo())
	ctx := context.Background()

	ok, err := svc.HasPermission(ctx, "u-emp", user.RoleEmployee, user.PermissionViewAllEmployees)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.GrantPermission(ctx, "u-emp", user.PermissionViewAllEmployees)
	require.NoError(t, err)

	ok, err = svc.HasPermission(ctx, "u-emp", user.RoleEmployee, user.PermissionViewAllEmployees)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetUserCustomPermissions_Validation(t *testing.T) {
	svc := newService(newFakeRepo())

	_, err := svc.SetUserCustomPermissions(context.Background(), "u-emp", permission.SetCustomPermissionsRequest{
		GrantedPermissions: []string{"fly_to_moon"},
	})
	assert.Error(t, err)

	_, err = svc.SetUserCustomPermissions(context.Background(), "missing", permission.SetCustomPermissionsRequest{})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestResetUserCustomPermissions(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.GrantPermission(ctx, "u-emp", user.PermissionViewAllLeave)
	require.NoError(t, err)
	require.NoError(t, svc.ResetUserCustomPermissions(ctx, "u-emp"))

	detail, err := svc.GetUserPermissionDetail(ctx, "u-emp")
	require.NoError(t, err)
	assert.Empty(t, detail.Granted)
	assert.Equal(t, user.PermissionsForRole(user.RoleEmployee), detail.Effective)
}

func TestDeny_WinsOverSlowerCacheFill(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	loaded := make(chan struct{})
	release := make(chan struct{})
	var paused int32
	repo.afterRead = func() {
		if atomic.CompareAndSwapInt32(&paused, 0, 1) {
			close(loaded)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.GetUserCustomPermissions(ctx, "u-hr")
		done <- err
	}()
	<-loaded

	_, err := svc.DenyPermission(ctx, "u-hr", user.PermissionApproveLeave)
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	ok, err := svc.HasPermission(ctx, "u-hr", user.RoleHRAdvisor, user.PermissionApproveLeave)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearCache_DropsInFlightFill(t *testing.T) {
	repo := newFakeRepo()
	repo.data["u-emp"] = permission.CustomUserPermissions{
		UserID:             "u-emp",
		GrantedPermissions: []user.Permission{user.PermissionViewAllLeave},
	}
	svc := newService(repo)
	ctx := context.Background()

	loaded := make(chan struct{})
	release := make(chan struct{})
	var paused int32
	repo.afterRead = func() {
		if atomic.CompareAndSwapInt32(&paused, 0, 1) {
			close(loaded)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.GetUserCustomPermissions(ctx, "u-emp")
		done <- err
	}()
	<-loaded

	repo.mu.Lock()
	repo.data["u-emp"] = permission.Empty("u-emp")
	repo.mu.Unlock()
	svc.ClearCache(ctx, "")

	close(release)
	require.NoError(t, <-done)

	ok, err := svc.HasPermission(ctx, "u-emp", user.RoleEmployee, user.PermissionViewAllLeave)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetUserCustomPermissions_SurvivesCanceledCaller(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	repoCtxErr := make(chan error, 1)
	svc.repo = ctxCheckingRepo{fakeRepo: repo, seen: repoCtxErr}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GetUserCustomPermissions(ctx, "u-hr")
	require.NoError(t, err)
	assert.NoError(t, <-repoCtxErr)
}

type ctxCheckingRepo struct {
	*fakeRepo
	seen chan error
}

func (r ctxCheckingRepo) Get(ctx context.Context, userID string) (permission.CustomUserPermissions, error) {
	r.seen <- ctx.Err()
	return r.fakeRepo.Get(ctx, userID)
}
