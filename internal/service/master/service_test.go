package master

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/department"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/team"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uid(n int) string {
	return fmt.Sprintf("0190a5b2-0000-7000-8000-%012d", n)
}

type fakeDepartmentRepo struct {
	mu    sync.Mutex
	items map[string]department.Department
	seq   int
}

func (f *fakeDepartmentRepo) Create(ctx context.Context, d department.Department) (department.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Name == d.Name {
			return department.Department{}, department.ErrDepartmentNameExists
		}
	}
	f.seq++
	d.ID = uid(100 + f.seq)
	f.items[d.ID] = d
	return d, nil
}

func (f *fakeDepartmentRepo) GetByID(ctx context.Context, id string) (department.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	return d, nil
}

func (f *fakeDepartmentRepo) List(ctx context.Context) ([]department.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]department.Department, 0, len(f.items))
	for _, d := range f.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeDepartmentRepo) Update(ctx context.Context, req department.UpdateDepartmentRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[req.ID]
	if !ok {
		return department.ErrDepartmentNotFound
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	f.items[req.ID] = d
	return nil
}

func (f *fakeDepartmentRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return department.ErrDepartmentNotFound
	}
	delete(f.items, id)
	return nil
}

// fakeTeamRepo keeps one team per employee, like employees.team_id.
type fakeTeamRepo struct {
	mu        sync.Mutex
	teams     map[string]team.Team
	memberOf  map[string]string
	employees *servicetest.EmployeeRepo
	seq       int
}

func newFakeTeamRepo(employees *servicetest.EmployeeRepo) *fakeTeamRepo {
	return &fakeTeamRepo{teams: map[string]team.Team{}, memberOf: map[string]string{}, employees: employees}
}

func (f *fakeTeamRepo) setMembers(teamID string, ids []string) error {
	for _, id := range ids {
		if _, err := f.employees.GetByID(context.Background(), id); err != nil {
			return team.ErrMemberNotFound
		}
		if other, ok := f.memberOf[id]; ok && other != teamID {
			return team.ErrMemberInOtherTeam
		}
	}
	for emp, tid := range f.memberOf {
		if tid == teamID {
			delete(f.memberOf, emp)
		}
	}
	t := f.teams[teamID]
	t.Members = nil
	for _, id := range ids {
		f.memberOf[id] = teamID
		e, _ := f.employees.GetByID(context.Background(), id)
		t.Members = append(t.Members, team.Member{EmployeeID: id, UserID: e.UserID, Name: e.FullName(), Position: e.Position})
	}
	f.teams[teamID] = t
	return nil
}

func (f *fakeTeamRepo) Create(ctx context.Context, t team.Team, memberIDs []string) (team.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.ID = uid(200 + f.seq)
	f.teams[t.ID] = t
	if err := f.setMembers(t.ID, memberIDs); err != nil {
		delete(f.teams, t.ID)
		return team.Team{}, err
	}
	return f.teams[t.ID], nil
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id string) (team.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return team.Team{}, team.ErrTeamNotFound
	}
	return t, nil
}

func (f *fakeTeamRepo) List(ctx context.Context, filter team.TeamFilter) ([]team.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []team.Team
	for _, t := range f.teams {
		if filter.DepartmentID == nil || t.DepartmentID == *filter.DepartmentID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTeamRepo) ListForEmployee(ctx context.Context, employeeID string) ([]team.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []team.Team
	for _, t := range f.teams {
		if t.Includes(employeeID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTeamRepo) Update(ctx context.Context, req team.UpdateTeamRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[req.ID]
	if !ok {
		return team.ErrTeamNotFound
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.ManagerID != nil {
		if *req.ManagerID == "" {
			t.ManagerID = nil
		} else {
			id := *req.ManagerID
			t.ManagerID = &id
		}
	}
	f.teams[req.ID] = t
	return nil
}

func (f *fakeTeamRepo) SetMembers(ctx context.Context, teamID string, memberIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[teamID]; !ok {
		return team.ErrTeamNotFound
	}
	return f.setMembers(teamID, memberIDs)
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return team.ErrTeamNotFound
	}
	for emp, tid := range f.memberOf {
		if tid == id {
			delete(f.memberOf, emp)
		}
	}
	delete(f.teams, id)
	return nil
}

// approvedLeave serves GetApprovedInRange from a fixed list.
type approvedLeave struct {
	leave.LeaveRequestRepository
	requests []leave.LeaveRequest
}

func (a approvedLeave) GetApprovedInRange(ctx context.Context, start, end time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range a.requests {
		if r.Overlaps(start, end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type masterFixture struct {
	svc         MasterService
	departments *fakeDepartmentRepo
	teams       *fakeTeamRepo
	leave       *approvedLeave
}

var (
	alice   = uid(1)
	bob     = uid(2)
	carol   = uid(3)
	dave    = uid(4)
	manager = uid(9)
)

func newMasterFixture() masterFixture {
	aliceUser, daveUser, managerUser := "user-alice", "user-dave", "user-manager"
	employees := servicetest.NewEmployeeRepo(
		employee.Employee{ID: alice, UserID: &aliceUser, FirstName: "Alice", LastName: "A"},
		employee.Employee{ID: bob, FirstName: "Bob", LastName: "B"},
		employee.Employee{ID: carol, FirstName: "Carol", LastName: "C"},
		employee.Employee{ID: dave, UserID: &daveUser, FirstName: "Dave", LastName: "D"},
		employee.Employee{ID: manager, UserID: &managerUser, FirstName: "Mona", LastName: "M"},
	)
	f := masterFixture{
		departments: &fakeDepartmentRepo{items: map[string]department.Department{}},
		teams:       newFakeTeamRepo(employees),
		leave:       &approvedLeave{},
	}
	f.svc = NewMasterService(f.departments, f.teams, employees, f.leave, &servicetest.Checker{})
	return f
}

func hrCtx() context.Context    { return servicetest.ActorContext("user-hr", user.RoleHRAdvisor, "") }
func aliceCtx() context.Context { return servicetest.ActorContext("user-alice", user.RoleEmployee, alice) }
func daveCtx() context.Context  { return servicetest.ActorContext("user-dave", user.RoleEmployee, dave) }

// managerCtx carries no employee claim so the service falls back to the user link.
func managerCtx() context.Context {
	return servicetest.ActorContext("user-manager", user.RoleEmployee, "")
}

func (f masterFixture) createTeam(t *testing.T) team.TeamResponse {
	t.Helper()
	dept, err := f.svc.CreateDepartment(hrCtx(), department.CreateDepartmentRequest{Name: "Engineering"})
	require.NoError(t, err)
	mgr := manager
	resp, err := f.svc.CreateTeam(hrCtx(), team.CreateTeamRequest{
		Name:         "Platform",
		DepartmentID: dept.ID,
		ManagerID:    &mgr,
		MemberIDs:    []string{alice, bob},
	})
	require.NoError(t, err)
	return resp
}

func TestMasterService_DepartmentWritesNeedManageTeams(t *testing.T) {
	f := newMasterFixture()

	_, err := f.svc.CreateDepartment(aliceCtx(), department.CreateDepartmentRequest{Name: "Sales"})
	assert.ErrorIs(t, err, department.ErrForbidden)

	created, err := f.svc.CreateDepartment(hrCtx(), department.CreateDepartmentRequest{Name: "  Sales "})
	require.NoError(t, err)
	assert.Equal(t, "Sales", created.Name)

	_, err = f.svc.CreateDepartment(hrCtx(), department.CreateDepartmentRequest{Name: "Sales"})
	assert.ErrorIs(t, err, department.ErrDepartmentNameExists)

	list, err := f.svc.ListDepartments(aliceCtx())
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.ErrorIs(t, f.svc.DeleteDepartment(aliceCtx(), created.ID), department.ErrForbidden)
	assert.NoError(t, f.svc.DeleteDepartment(hrCtx(), created.ID))
}

func TestMasterService_UpdateDepartment_Validation(t *testing.T) {
	f := newMasterFixture()

	err := f.svc.UpdateDepartment(hrCtx(), department.UpdateDepartmentRequest{ID: uid(1)})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "body")
}

func TestMasterService_CreateTeam(t *testing.T) {
	f := newMasterFixture()
	resp := f.createTeam(t)

	assert.Equal(t, "Platform", resp.Name)
	assert.Equal(t, 2, resp.MemberCount)
	require.NotNil(t, resp.ManagerID)
	assert.Equal(t, manager, *resp.ManagerID)
}

func TestMasterService_CreateTeam_SizeBounds(t *testing.T) {
	f := newMasterFixture()
	dept, err := f.svc.CreateDepartment(hrCtx(), department.CreateDepartmentRequest{Name: "Engineering"})
	require.NoError(t, err)

	_, err = f.svc.CreateTeam(hrCtx(), team.CreateTeamRequest{Name: "Solo", DepartmentID: dept.ID, MemberIDs: []string{alice}})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "member_ids")

	_, err = f.svc.CreateTeam(aliceCtx(), team.CreateTeamRequest{Name: "Pair", DepartmentID: dept.ID, MemberIDs: []string{alice, bob}})
	assert.ErrorIs(t, err, team.ErrForbidden)
}

func TestMasterService_MemberBelongsToOneTeam(t *testing.T) {
	f := newMasterFixture()
	first := f.createTeam(t)

	_, err := f.svc.CreateTeam(hrCtx(), team.CreateTeamRequest{
		Name:         "Data",
		DepartmentID: first.DepartmentID,
		MemberIDs:    []string{bob, carol},
	})
	assert.ErrorIs(t, err, team.ErrMemberInOtherTeam)

	// moving bob out frees him
	updated, err := f.svc.SetTeamMembers(hrCtx(), first.ID, team.SetMembersRequest{MemberIDs: []string{alice, dave}})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MemberCount)

	_, err = f.svc.CreateTeam(hrCtx(), team.CreateTeamRequest{
		Name:         "Data",
		DepartmentID: first.DepartmentID,
		MemberIDs:    []string{bob, carol},
	})
	assert.NoError(t, err)
}

func TestMasterService_TeamVisibility(t *testing.T) {
	f := newMasterFixture()
	resp := f.createTeam(t)

	_, err := f.svc.GetTeam(aliceCtx(), resp.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetTeam(managerCtx(), resp.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetTeam(hrCtx(), resp.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetTeam(daveCtx(), resp.ID)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)

	_, err = f.svc.ListTeams(aliceCtx(), team.TeamFilter{})
	assert.ErrorIs(t, err, team.ErrForbidden)
	all, err := f.svc.ListTeams(hrCtx(), team.TeamFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMasterService_GetMyTeams(t *testing.T) {
	f := newMasterFixture()
	resp := f.createTeam(t)

	mine, err := f.svc.GetMyTeams(managerCtx())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, resp.ID, mine[0].ID)

	mine, err = f.svc.GetMyTeams(daveCtx())
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = f.svc.GetMyTeams(hrCtx())
	assert.ErrorIs(t, err, team.ErrNoEmployeeRecord)
}

func TestMasterService_UpdateTeam_ClearsManager(t *testing.T) {
	f := newMasterFixture()
	resp := f.createTeam(t)

	empty := ""
	require.NoError(t, f.svc.UpdateTeam(hrCtx(), team.UpdateTeamRequest{ID: resp.ID, ManagerID: &empty}))

	got, err := f.svc.GetTeam(hrCtx(), resp.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ManagerID)

	_, err = f.svc.GetTeam(managerCtx(), resp.ID)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

func TestMasterService_GetTeamAbsences(t *testing.T) {
	f := newMasterFixture()
	resp := f.createTeam(t)

	day := func(s string) time.Time {
		d, err := time.Parse(dateLayout, s)
		require.NoError(t, err)
		return d
	}
	aliceName, daveName := "Alice A", "Dave D"
	f.leave.requests = []leave.LeaveRequest{
		{ID: "leave-1", EmployeeID: alice, EmployeeName: &aliceName, Type: leave.LeaveTypeVacation,
			StartDate: day("2025-07-01"), EndDate: day("2025-07-03"), Status: leave.LeaveRequestStatusApproved},
		{ID: "leave-2", EmployeeID: dave, EmployeeName: &daveName, Type: leave.LeaveTypeVacation,
			StartDate: day("2025-07-02"), EndDate: day("2025-07-02"), Status: leave.LeaveRequestStatusApproved},
		{ID: "leave-3", EmployeeID: bob, Type: leave.LeaveTypeVacation,
			StartDate: day("2025-08-01"), EndDate: day("2025-08-02"), Status: leave.LeaveRequestStatusApproved},
	}

	absences, err := f.svc.GetTeamAbsences(aliceCtx(), resp.ID, day("2025-07-01"), day("2025-07-31"))
	require.NoError(t, err)
	require.Len(t, absences, 1)
	assert.Equal(t, team.AbsenceResponse{
		EmployeeID:   alice,
		EmployeeName: "Alice A",
		LeaveID:      "leave-1",
		Type:         "vacation",
		StartDate:    "2025-07-01",
		EndDate:      "2025-07-03",
	}, absences[0])

	_, err = f.svc.GetTeamAbsences(aliceCtx(), resp.ID, day("2025-07-31"), day("2025-07-01"))
	assert.ErrorIs(t, err, team.ErrInvalidDateRange)

	_, err = f.svc.GetTeamAbsences(daveCtx(), resp.ID, day("2025-07-01"), day("2025-07-31"))
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}
