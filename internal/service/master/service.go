package master

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/department"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/team"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
)

const dateLayout = "2006-01-02"

type MasterService interface {
	// Department operations
	CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error)
	GetDepartment(ctx context.Context, id string) (department.DepartmentResponse, error)
	ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, req department.UpdateDepartmentRequest) error
	DeleteDepartment(ctx context.Context, id string) error

	// Team operations
	CreateTeam(ctx context.Context, req team.CreateTeamRequest) (team.TeamResponse, error)
	GetTeam(ctx context.Context, id string) (team.TeamResponse, error)
	ListTeams(ctx context.Context, filter team.TeamFilter) ([]team.TeamResponse, error)
	GetMyTeams(ctx context.Context) ([]team.TeamResponse, error)
	UpdateTeam(ctx context.Context, req team.UpdateTeamRequest) error
	SetTeamMembers(ctx context.Context, id string, req team.SetMembersRequest) (team.TeamResponse, error)
	DeleteTeam(ctx context.Context, id string) error
	GetTeamAbsences(ctx context.Context, id string, start, end time.Time) ([]team.AbsenceResponse, error)
}

type masterServiceImpl struct {
	departmentRepo department.DepartmentRepository
	teamRepo       team.TeamRepository
	employeeRepo   employee.EmployeeRepository
	leaveRepo      leave.LeaveRequestRepository
	permissions    permission.Checker
}

func NewMasterService(
	departmentRepo department.DepartmentRepository,
	teamRepo team.TeamRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRequestRepository,
	permissions permission.Checker,
) MasterService {
	return &masterServiceImpl{
		departmentRepo: departmentRepo,
		teamRepo:       teamRepo,
		employeeRepo:   employeeRepo,
		leaveRepo:      leaveRepo,
		permissions:    permissions,
	}
}

func (s *masterServiceImpl) can(ctx context.Context, actor jwt.Actor, p user.Permission) (bool, error) {
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, p)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", p, err)
	}
	return ok, nil
}

func (s *masterServiceImpl) require(ctx context.Context, p user.Permission, denied error) (jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return jwt.Actor{}, err
	}
	ok, err := s.can(ctx, actor, p)
	if err != nil {
		return jwt.Actor{}, err
	}
	if !ok {
		return jwt.Actor{}, denied
	}
	return actor, nil
}

// ==================== DEPARTMENT OPERATIONS ====================

func (s *masterServiceImpl) CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	if _, err := s.require(ctx, user.PermissionManageTeams, department.ErrForbidden); err != nil {
		return department.DepartmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	created, err := s.departmentRepo.Create(ctx, department.Department{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, department.ErrDepartmentNameExists) {
			return department.DepartmentResponse{}, err
		}
		return department.DepartmentResponse{}, fmt.Errorf("failed to create department: %w", err)
	}
	return created.ToResponse(), nil
}

func (s *masterServiceImpl) GetDepartment(ctx context.Context, id string) (department.DepartmentResponse, error) {
	if _, err := jwt.ActorFromContext(ctx); err != nil {
		return department.DepartmentResponse{}, err
	}
	d, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return d.ToResponse(), nil
}

// ListDepartments is open to every authenticated user; forms need the catalogue.
func (s *masterServiceImpl) ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error) {
	if _, err := jwt.ActorFromContext(ctx); err != nil {
		return nil, err
	}
	departments, err := s.departmentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	responses := make([]department.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		responses = append(responses, d.ToResponse())
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateDepartment(ctx context.Context, req department.UpdateDepartmentRequest) error {
	if _, err := s.require(ctx, user.PermissionManageTeams, department.ErrForbidden); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return s.departmentRepo.Update(ctx, req)
}

// DeleteDepartment refuses while employees or teams still reference the department.
func (s *masterServiceImpl) DeleteDepartment(ctx context.Context, id string) error {
	if _, err := s.require(ctx, user.PermissionManageTeams, department.ErrForbidden); err != nil {
		return err
	}
	return s.departmentRepo.Delete(ctx, id)
}

// ==================== TEAM OPERATIONS ====================

func (s *masterServiceImpl) CreateTeam(ctx context.Context, req team.CreateTeamRequest) (team.TeamResponse, error) {
	if _, err := s.require(ctx, user.PermissionManageTeams, team.ErrForbidden); err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}

	created, err := s.teamRepo.Create(ctx, team.Team{
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		ManagerID:    req.ManagerID,
	}, req.MemberIDs)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return created.ToResponse(), nil
}

// actorEmployeeID resolves the caller's employee id, "" when none is linked.
func (s *masterServiceImpl) actorEmployeeID(ctx context.Context, actor jwt.Actor) (string, error) {
	if actor.EmployeeID != "" {
		return actor.EmployeeID, nil
	}
	emp, err := s.employeeRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get employee by user ID: %w", err)
	}
	return emp.ID, nil
}

// visibleTeam answers not-found to callers outside the team without view_all_employees.
func (s *masterServiceImpl) visibleTeam(ctx context.Context, id string) (team.Team, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return team.Team{}, err
	}
	t, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return team.Team{}, err
	}

	viewAll, err := s.can(ctx, actor, user.PermissionViewAllEmployees)
	if err != nil {
		return team.Team{}, err
	}
	if viewAll {
		return t, nil
	}
	employeeID, err := s.actorEmployeeID(ctx, actor)
	if err != nil {
		return team.Team{}, err
	}
	if t.Includes(employeeID) {
		return t, nil
	}
	return team.Team{}, team.ErrTeamNotFound
}

func (s *masterServiceImpl) GetTeam(ctx context.Context, id string) (team.TeamResponse, error) {
	t, err := s.visibleTeam(ctx, id)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return t.ToResponse(), nil
}

func (s *masterServiceImpl) ListTeams(ctx context.Context, filter team.TeamFilter) ([]team.TeamResponse, error) {
	if _, err := s.require(ctx, user.PermissionViewAllEmployees, team.ErrForbidden); err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return team.ToResponses(teams), nil
}

// GetMyTeams returns the teams the caller belongs to or manages.
func (s *masterServiceImpl) GetMyTeams(ctx context.Context) ([]team.TeamResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	employeeID, err := s.actorEmployeeID(ctx, actor)
	if err != nil {
		return nil, err
	}
	if employeeID == "" {
		return nil, team.ErrNoEmployeeRecord
	}

	teams, err := s.teamRepo.ListForEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get my teams: %w", err)
	}
	return team.ToResponses(teams), nil
}

func (s *masterServiceImpl) UpdateTeam(ctx context.Context, req team.UpdateTeamRequest) error {
	if _, err := s.require(ctx, user.PermissionManageTeams, team.ErrForbidden); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return s.teamRepo.Update(ctx, req)
}

func (s *masterServiceImpl) SetTeamMembers(ctx context.Context, id string, req team.SetMembersRequest) (team.TeamResponse, error) {
	if _, err := s.require(ctx, user.PermissionManageTeams, team.ErrForbidden); err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}
	if err := s.teamRepo.SetMembers(ctx, id, req.MemberIDs); err != nil {
		return team.TeamResponse{}, err
	}

	updated, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return updated.ToResponse(), nil
}

// DeleteTeam releases the members; their team_id is cleared by the database.
func (s *masterServiceImpl) DeleteTeam(ctx context.Context, id string) error {
	if _, err := s.require(ctx, user.PermissionManageTeams, team.ErrForbidden); err != nil {
		return err
	}
	return s.teamRepo.Delete(ctx, id)
}

// GetTeamAbsences lists approved leave of the team's members and manager overlapping [start, end].
func (s *masterServiceImpl) GetTeamAbsences(ctx context.Context, id string, start, end time.Time) ([]team.AbsenceResponse, error) {
	if end.Before(start) {
		return nil, team.ErrInvalidDateRange
	}
	t, err := s.visibleTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	approved, err := s.leaveRepo.GetApprovedInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved leave: %w", err)
	}

	absences := make([]team.AbsenceResponse, 0)
	for _, l := range approved {
		if !t.Includes(l.EmployeeID) {
			continue
		}
		name := ""
		if l.EmployeeName != nil {
			name = *l.EmployeeName
		}
		absences = append(absences, team.AbsenceResponse{
			EmployeeID:   l.EmployeeID,
			EmployeeName: name,
			LeaveID:      l.ID,
			Type:         string(l.Type),
			StartDate:    l.StartDate.Format(dateLayout),
			EndDate:      l.EndDate.Format(dateLayout),
		})
	}
	return absences, nil
}
