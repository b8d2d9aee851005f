package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
)

const dateLayout = "2006-01-02"

// leaveReviewers receive a notification for every new request.
var leaveReviewers = []user.Role{user.RoleAdmin, user.RoleHRAdvisor}

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	userRepo    user.UserRepository
	permissions permission.Checker
	notifier    notification.Notifier
}

func NewLeaveService(
	leaveRequestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
	userRepo user.UserRepository,
	permissions permission.Checker,
	notifier notification.Notifier,
) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepository,
		EmployeeRepository:     employeeRepository,
		userRepo:               userRepo,
		permissions:            permissions,
		notifier:               notifier,
	}
}

func (l *LeaveServiceImpl) can(ctx context.Context, actor jwt.Actor, p user.Permission) (bool, error) {
	ok, err := l.permissions.HasPermission(ctx, actor.UserID, actor.Role, p)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", p, err)
	}
	return ok, nil
}

func (l *LeaveServiceImpl) require(ctx context.Context, p user.Permission) (jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return jwt.Actor{}, err
	}
	ok, err := l.can(ctx, actor, p)
	if err != nil {
		return jwt.Actor{}, err
	}
	if !ok {
		return jwt.Actor{}, leave.ErrForbidden
	}
	return actor, nil
}

func (l *LeaveServiceImpl) ownEmployee(ctx context.Context, actor jwt.Actor) (employee.Employee, error) {
	emp, err := l.EmployeeRepository.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, leave.ErrNoEmployeeRecord
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by user ID: %w", err)
	}
	return emp, nil
}

func isOwn(request leave.LeaveRequest, actor jwt.Actor) bool {
	if request.EmployeeUserID != nil && *request.EmployeeUserID == actor.UserID {
		return true
	}
	return actor.EmployeeID != "" && request.EmployeeID == actor.EmployeeID
}

// Create implements leave.LeaveService. The employee is always the caller.
func (l *LeaveServiceImpl) Create(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	actor, err := l.require(ctx, user.PermissionRequestLeave)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := l.ownEmployee(ctx, actor)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	overlap, err := l.LeaveRequestRepository.HasOverlap(ctx, emp.ID, req.Start, req.End)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if overlap {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveOverlap
	}

	created, err := l.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID: emp.ID,
		Type:       leave.LeaveType(req.Type),
		StartDate:  req.Start,
		EndDate:    req.End,
		Reason:     req.Reason,
		Status:     leave.LeaveRequestStatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	name := emp.FullName()
	created.EmployeeName = &name
	created.EmployeeUserID = emp.UserID

	l.notifyReviewers(ctx, created, name)

	return created.ToResponse(), nil
}

func (l *LeaveServiceImpl) notifyReviewers(ctx context.Context, request leave.LeaveRequest, employeeName string) {
	reviewers, err := l.userRepo.ListByRoles(ctx, leaveReviewers, true)
	if err != nil {
		slog.Error("failed to load leave reviewers", "error", err, "leave_request_id", request.ID)
		return
	}
	if len(reviewers) == 0 {
		return
	}

	ids := make([]string, 0, len(reviewers))
	for _, r := range reviewers {
		ids = append(ids, r.ID)
	}
	err = l.notifier.NotifyLeaveRequest(ctx, ids, employeeName, string(request.Type),
		request.StartDate.Format(dateLayout), request.EndDate.Format(dateLayout), request.ID)
	if err != nil {
		slog.Error("failed to notify leave reviewers", "error", err, "leave_request_id", request.ID)
	}
}

// GetByID answers not-found to callers who may not see the request.
func (l *LeaveServiceImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	viewAll, err := l.can(ctx, actor, user.PermissionViewAllLeave)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if viewAll {
		return request.ToResponse(), nil
	}

	if isOwn(request, actor) {
		ok, err := l.can(ctx, actor, user.PermissionViewOwnLeave)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		if ok {
			return request.ToResponse(), nil
		}
	}
	return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
}

func (l *LeaveServiceImpl) GetMine(ctx context.Context) ([]leave.LeaveRequestResponse, error) {
	actor, err := l.require(ctx, user.PermissionViewOwnLeave)
	if err != nil {
		return nil, err
	}
	emp, err := l.ownEmployee(ctx, actor)
	if err != nil {
		return nil, err
	}

	requests, err := l.LeaveRequestRepository.GetByEmployeeID(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get my leave requests: %w", err)
	}
	return leave.ToResponses(requests), nil
}

func (l *LeaveServiceImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveRequestResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	perm := user.PermissionViewAllLeave
	if actor.EmployeeID != "" && actor.EmployeeID == employeeID {
		perm = user.PermissionViewOwnLeave
	}
	ok, err := l.can(ctx, actor, perm)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, leave.ErrForbidden
	}

	requests, err := l.LeaveRequestRepository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave requests: %w", err)
	}
	return leave.ToResponses(requests), nil
}

func (l *LeaveServiceImpl) GetPending(ctx context.Context) ([]leave.LeaveRequestResponse, error) {
	if _, err := l.require(ctx, user.PermissionViewAllLeave); err != nil {
		return nil, err
	}
	requests, err := l.LeaveRequestRepository.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending leave requests: %w", err)
	}
	return leave.ToResponses(requests), nil
}

func (l *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequestResponse, int64, error) {
	if _, err := l.require(ctx, user.PermissionViewAllLeave); err != nil {
		return nil, 0, err
	}
	filter.Normalize()

	requests, total, err := l.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leave.ToResponses(requests), total, nil
}

func (l *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	actor, err := l.require(ctx, user.PermissionApproveLeave)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return l.transition(ctx, id, leave.LeaveRequestStatusApproved, &actor.UserID, nil)
}

func (l *LeaveServiceImpl) Reject(ctx context.Context, id string, req leave.RejectLeaveRequest) (leave.LeaveRequestResponse, error) {
	if _, err := l.require(ctx, user.PermissionRejectLeave); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return l.transition(ctx, id, leave.LeaveRequestStatusRejected, nil, &req.Reason)
}

// Cancel withdraws the caller's own pending request.
func (l *LeaveServiceImpl) Cancel(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	actor, err := l.require(ctx, user.PermissionCancelOwnLeave)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !isOwn(request, actor) {
		viewAll, err := l.can(ctx, actor, user.PermissionViewAllLeave)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		if viewAll {
			return leave.LeaveRequestResponse{}, leave.ErrNotOwner
		}
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	return l.transition(ctx, id, leave.LeaveRequestStatusCancelled, nil, nil)
}

func (l *LeaveServiceImpl) transition(ctx context.Context, id string, next leave.LeaveRequestStatus, approvedBy, reason *string) (leave.LeaveRequestResponse, error) {
	current, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !current.Status.CanTransitionTo(next) {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	// the repository re-checks status = 'pending' so concurrent reviewers cannot both win
	updated, err := l.LeaveRequestRepository.UpdateStatus(ctx, id, next, approvedBy, reason)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if updated.EmployeeName == nil {
		updated.EmployeeName = current.EmployeeName
	}
	if updated.EmployeeUserID == nil {
		updated.EmployeeUserID = current.EmployeeUserID
	}

	if next != leave.LeaveRequestStatusCancelled && updated.EmployeeUserID != nil {
		reasonText := ""
		if reason != nil {
			reasonText = *reason
		}
		err := l.notifier.NotifyLeaveStatus(ctx, *updated.EmployeeUserID, next == leave.LeaveRequestStatusApproved,
			string(updated.Type), updated.StartDate.Format(dateLayout), updated.EndDate.Format(dateLayout), reasonText)
		if err != nil {
			slog.Error("failed to notify leave status", "error", err, "leave_request_id", id)
		}
	}

	return updated.ToResponse(), nil
}

// GetForCalendar returns approved requests overlapping [start, end].
func (l *LeaveServiceImpl) GetForCalendar(ctx context.Context, start, end time.Time) ([]leave.LeaveRequest, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end %s before start %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	requests, err := l.LeaveRequestRepository.GetApprovedInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved leave: %w", err)
	}
	return requests, nil
}
