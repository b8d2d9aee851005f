package claim

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/claim"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/file"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClaimRepo mirrors the pending-only guards of the SQL repository.
type fakeClaimRepo struct {
	mu        sync.Mutex
	claims    map[string]claim.Claim
	employees *servicetest.EmployeeRepo
	seq       int
}

func newFakeClaimRepo(employees *servicetest.EmployeeRepo) *fakeClaimRepo {
	return &fakeClaimRepo{claims: map[string]claim.Claim{}, employees: employees}
}

func (f *fakeClaimRepo) join(c claim.Claim) claim.Claim {
	if e, err := f.employees.GetByID(context.Background(), c.EmployeeID); err == nil {
		name := e.FullName()
		c.EmployeeName = &name
		c.EmployeeUserID = e.UserID
	}
	return c
}

func (f *fakeClaimRepo) Create(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c.ID = fmt.Sprintf("claim-%d", f.seq)
	c.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Second)
	c.UpdatedAt = c.CreatedAt
	f.claims[c.ID] = c
	return c, nil
}

func (f *fakeClaimRepo) GetByID(ctx context.Context, id string) (claim.Claim, error) {
	f.mu.Lock()
	c, ok := f.claims[id]
	f.mu.Unlock()
	if !ok {
		return claim.Claim{}, claim.ErrClaimNotFound
	}
	return f.join(c), nil
}

func (f *fakeClaimRepo) filter(keep func(claim.Claim) bool) []claim.Claim {
	f.mu.Lock()
	var out []claim.Claim
	for _, c := range f.claims {
		if keep(c) {
			out = append(out, c)
		}
	}
	f.mu.Unlock()
	for i := range out {
		out[i] = f.join(out[i])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsUrgent != out[j].IsUrgent {
			return out[i].IsUrgent
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (f *fakeClaimRepo) GetByEmployeeID(ctx context.Context, employeeID string) ([]claim.Claim, error) {
	return f.filter(func(c claim.Claim) bool { return c.EmployeeID == employeeID }), nil
}

func (f *fakeClaimRepo) List(ctx context.Context, filter claim.ClaimFilter) ([]claim.Claim, int64, error) {
	out := f.filter(func(c claim.Claim) bool {
		return (filter.Status == nil || c.Status == *filter.Status) &&
			(filter.Type == nil || c.Type == *filter.Type) &&
			(filter.IsUrgent == nil || c.IsUrgent == *filter.IsUrgent) &&
			(filter.EmployeeID == nil || c.EmployeeID == *filter.EmployeeID)
	})
	return out, int64(len(out)), nil
}

func (f *fakeClaimRepo) UpdateStatus(ctx context.Context, id string, status claim.ClaimStatus, processedBy string, note *string) (claim.Claim, error) {
	f.mu.Lock()
	c, ok := f.claims[id]
	if !ok {
		f.mu.Unlock()
		return claim.Claim{}, claim.ErrClaimNotFound
	}
	if c.Status != claim.ClaimStatusPending {
		f.mu.Unlock()
		return claim.Claim{}, claim.ErrClaimAlreadyProcessed
	}
	c.Status = status
	c.ProcessedBy = &processedBy
	c.ResolutionNote = note
	f.claims[id] = c
	f.mu.Unlock()
	return f.join(c), nil
}

func (f *fakeClaimRepo) SetAttachment(ctx context.Context, id string, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[id]
	if !ok {
		return claim.ErrClaimNotFound
	}
	c.AttachmentURL = &url
	f.claims[id] = c
	return nil
}

func (f *fakeClaimRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[id]
	if !ok {
		return claim.ErrClaimNotFound
	}
	if c.Status != claim.ClaimStatusPending {
		return claim.ErrClaimAlreadyProcessed
	}
	delete(f.claims, id)
	return nil
}

type claimFixture struct {
	svc      claim.ClaimService
	repo     *fakeClaimRepo
	storage  *servicetest.Storage
	notifier *servicetest.Notifier
	checker  *servicetest.Checker
}

func newClaimFixture() claimFixture {
	ownerID, otherID := "user-owner", "user-other"
	employees := servicetest.NewEmployeeRepo(
		employee.Employee{ID: "emp-owner", UserID: &ownerID, FirstName: "Olive", LastName: "Owner"},
		employee.Employee{ID: "emp-other", UserID: &otherID, FirstName: "Oscar", LastName: "Other"},
	)
	users := servicetest.NewUserRepo(
		user.User{ID: "user-admin", Role: user.RoleAdmin, Status: user.StatusActive},
		user.User{ID: "user-hr", Role: user.RoleHRAdvisor, Status: user.StatusActive},
		user.User{ID: "user-hr-off", Role: user.RoleHRAdvisor, Status: user.StatusInactive},
		user.User{ID: ownerID, Role: user.RoleEmployee, Status: user.StatusActive},
	)
	f := claimFixture{
		repo:     newFakeClaimRepo(employees),
		storage:  servicetest.NewStorage(),
		notifier: &servicetest.Notifier{},
		checker:  &servicetest.Checker{},
	}
	f.svc = NewClaimService(f.repo, employees, users, file.NewFileService(f.storage), f.checker, f.notifier)
	return f
}

func ownerCtx() context.Context { return servicetest.ActorContext("user-owner", user.RoleEmployee, "emp-owner") }
func otherCtx() context.Context { return servicetest.ActorContext("user-other", user.RoleEmployee, "emp-other") }
func hrCtx() context.Context    { return servicetest.ActorContext("user-hr", user.RoleHRAdvisor, "") }

func (f claimFixture) submit(t *testing.T, urgent bool) claim.ClaimResponse {
	t.Helper()
	resp, err := f.svc.Create(ownerCtx(), claim.CreateClaimRequest{Type: "account", Description: "VPN locked", IsUrgent: urgent})
	require.NoError(t, err)
	return resp
}

func TestClaimService_Create_NotifiesActiveReviewers(t *testing.T) {
	f := newClaimFixture()

	resp := f.submit(t, true)
	assert.Equal(t, claim.ClaimStatusPending, resp.Status)
	assert.Equal(t, "emp-owner", resp.EmployeeID)
	assert.True(t, resp.IsUrgent)
	require.NotNil(t, resp.EmployeeName)
	assert.Equal(t, "Olive Owner", *resp.EmployeeName)

	sent := f.notifier.All()
	require.Len(t, sent, 2)
	assert.ElementsMatch(t, []string{"user-admin", "user-hr"}, []string{sent[0].UserID, sent[1].UserID})
	assert.Equal(t, notification.TypeClaimSubmitted, sent[0].Type)
	assert.Equal(t, "Olive Owner has submitted an account claim marked as urgent", sent[0].Message)
	assert.Equal(t, resp.ID, sent[0].Data["claimId"])
	assert.Equal(t, true, sent[0].Data["urgent"])
}

func TestClaimService_Create_RequiresEmployeeRecord(t *testing.T) {
	f := newClaimFixture()

	ctx := servicetest.ActorContext("user-hr", user.RoleHRAdvisor, "")
	_, err := f.svc.Create(ctx, claim.CreateClaimRequest{Type: "material", Description: "Chair"})
	assert.ErrorIs(t, err, claim.ErrNoEmployeeRecord)
	assert.Empty(t, f.notifier.All())
}

func TestClaimService_Create_RevokedPermission(t *testing.T) {
	f := newClaimFixture()
	f.checker.Custom = map[string]permission.CustomUserPermissions{
		"user-owner": {UserID: "user-owner", DeniedPermissions: []user.Permission{user.PermissionSubmitClaim}},
	}

	_, err := f.svc.Create(ownerCtx(), claim.CreateClaimRequest{Type: "material", Description: "Chair"})
	assert.ErrorIs(t, err, claim.ErrForbidden)
}

func TestClaimService_Visibility(t *testing.T) {
	f := newClaimFixture()
	resp := f.submit(t, false)

	got, err := f.svc.GetByID(ownerCtx(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)

	_, err = f.svc.GetByID(otherCtx(), resp.ID)
	assert.ErrorIs(t, err, claim.ErrClaimNotFound)

	_, err = f.svc.GetByID(hrCtx(), resp.ID)
	assert.NoError(t, err)

	_, _, err = f.svc.List(otherCtx(), claim.ClaimFilter{})
	assert.ErrorIs(t, err, claim.ErrForbidden)

	mine, err := f.svc.GetMine(otherCtx())
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestClaimService_List_UrgentFirst(t *testing.T) {
	f := newClaimFixture()
	urgent := f.submit(t, true)
	f.submit(t, false)
	newest := f.submit(t, false)

	list, total, err := f.svc.List(hrCtx(), claim.ClaimFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, urgent.ID, list[0].ID)
	assert.Equal(t, newest.ID, list[1].ID)
}

func TestClaimService_Process_NotifiesOwner(t *testing.T) {
	f := newClaimFixture()
	resp := f.submit(t, false)

	done, err := f.svc.Process(hrCtx(), resp.ID, claim.ProcessClaimRequest{Note: " reset done "})
	require.NoError(t, err)
	assert.Equal(t, claim.ClaimStatusProcessed, done.Status)
	require.NotNil(t, done.ProcessedBy)
	assert.Equal(t, "user-hr", *done.ProcessedBy)
	require.NotNil(t, done.ResolutionNote)
	assert.Equal(t, "reset done", *done.ResolutionNote)

	sent := f.notifier.All()
	last := sent[len(sent)-1]
	assert.Equal(t, "user-owner", last.UserID)
	assert.Equal(t, notification.TypeClaimResolved, last.Type)
	assert.Equal(t, notification.TitleClaimProcessed, last.Title)
	assert.Equal(t, "Your account claim has been processed. Note: reset done", last.Message)
}

func TestClaimService_Reject_RequiresReason(t *testing.T) {
	f := newClaimFixture()
	resp := f.submit(t, false)

	_, err := f.svc.Reject(hrCtx(), resp.ID, claim.RejectClaimRequest{})
	assert.Error(t, err)

	rejected, err := f.svc.Reject(hrCtx(), resp.ID, claim.RejectClaimRequest{Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, claim.ClaimStatusRejected, rejected.Status)

	sent := f.notifier.All()
	last := sent[len(sent)-1]
	assert.Equal(t, notification.TitleClaimRejected, last.Title)
	assert.Equal(t, "Your account claim has been rejected. Note: duplicate", last.Message)
}

func TestClaimService_ResolvesOnce(t *testing.T) {
	f := newClaimFixture()
	resp := f.submit(t, false)

	_, err := f.svc.Process(hrCtx(), resp.ID, claim.ProcessClaimRequest{})
	require.NoError(t, err)

	_, err = f.svc.Reject(hrCtx(), resp.ID, claim.RejectClaimRequest{Reason: "late"})
	assert.ErrorIs(t, err, claim.ErrClaimAlreadyProcessed)
	_, err = f.svc.Process(hrCtx(), resp.ID, claim.ProcessClaimRequest{})
	assert.ErrorIs(t, err, claim.ErrClaimAlreadyProcessed)
}

func TestClaimService_ConcurrentReviewersOneWins(t *testing.T) {
	f := newClaimFixture()
	resp := f.submit(t, false)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Process(hrCtx(), resp.ID, claim.ProcessClaimRequest{})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, claim.ErrClaimAlreadyProcessed)
	}
	assert.Equal(t, 1, wins)
}

func TestClaimService_EmployeeCannotProcess(t *testing.T) {
	f := newClaimFixture()
	resp := f.submit(t, false)

	_, err := f.svc.Process(ownerCtx(), resp.ID, claim.ProcessClaimRequest{})
	assert.ErrorIs(t, err, claim.ErrForbidden)
}

func TestClaimService_Delete(t *testing.T) {
	f := newClaimFixture()
	first := f.submit(t, false)
	second := f.submit(t, false)

	assert.ErrorIs(t, f.svc.Delete(otherCtx(), first.ID), claim.ErrClaimNotFound)
	require.NoError(t, f.svc.Delete(ownerCtx(), first.ID))
	_, err := f.svc.GetByID(ownerCtx(), first.ID)
	assert.ErrorIs(t, err, claim.ErrClaimNotFound)

	_, err = f.svc.Process(hrCtx(), second.ID, claim.ProcessClaimRequest{})
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Delete(ownerCtx(), second.ID), claim.ErrClaimAlreadyProcessed)
}

func TestClaimService_UploadAttachment(t *testing.T) {
	f := newClaimFixture()
	resp := f.submit(t, false)

	req := claim.UploadAttachmentRequest{File: strings.NewReader("png"), FileName: "screen.png", Size: 3}
	_, err := f.svc.UploadAttachment(otherCtx(), resp.ID, req)
	assert.ErrorIs(t, err, claim.ErrClaimNotFound)

	req.File = strings.NewReader("png")
	updated, err := f.svc.UploadAttachment(ownerCtx(), resp.ID, req)
	require.NoError(t, err)

	key := "employees/emp-owner/claims/" + resp.ID + "/screen.png"
	require.NotNil(t, updated.AttachmentURL)
	assert.Equal(t, key, *updated.AttachmentURL)
	assert.Equal(t, []byte("png"), f.storage.Files[key])
}
