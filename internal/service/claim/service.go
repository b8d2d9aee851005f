package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/claim"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/file"
)

// claimReviewers receive a notification for every new claim.
var claimReviewers = []user.Role{user.RoleAdmin, user.RoleHRAdvisor}

type ClaimServiceImpl struct {
	claimRepo    claim.ClaimRepository
	employeeRepo employee.EmployeeRepository
	userRepo     user.UserRepository
	fileService  file.FileService
	permissions  permission.Checker
	notifier     notification.Notifier
}

func NewClaimService(
	claimRepo claim.ClaimRepository,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	fileService file.FileService,
	permissions permission.Checker,
	notifier notification.Notifier,
) claim.ClaimService {
	return &ClaimServiceImpl{
		claimRepo:    claimRepo,
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		fileService:  fileService,
		permissions:  permissions,
		notifier:     notifier,
	}
}

func (s *ClaimServiceImpl) can(ctx context.Context, actor jwt.Actor, p user.Permission) (bool, error) {
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, p)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", p, err)
	}
	return ok, nil
}

func (s *ClaimServiceImpl) require(ctx context.Context, p user.Permission) (jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return jwt.Actor{}, err
	}
	ok, err := s.can(ctx, actor, p)
	if err != nil {
		return jwt.Actor{}, err
	}
	if !ok {
		return jwt.Actor{}, claim.ErrForbidden
	}
	return actor, nil
}

func (s *ClaimServiceImpl) ownEmployee(ctx context.Context, actor jwt.Actor) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, claim.ErrNoEmployeeRecord
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by user ID: %w", err)
	}
	return emp, nil
}

func isOwn(c claim.Claim, actor jwt.Actor) bool {
	if c.EmployeeUserID != nil && *c.EmployeeUserID == actor.UserID {
		return true
	}
	return actor.EmployeeID != "" && c.EmployeeID == actor.EmployeeID
}

// Create files a pending claim for the caller's own employee record.
func (s *ClaimServiceImpl) Create(ctx context.Context, req claim.CreateClaimRequest) (claim.ClaimResponse, error) {
	actor, err := s.require(ctx, user.PermissionSubmitClaim)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return claim.ClaimResponse{}, err
	}

	emp, err := s.ownEmployee(ctx, actor)
	if err != nil {
		return claim.ClaimResponse{}, err
	}

	created, err := s.claimRepo.Create(ctx, claim.Claim{
		EmployeeID:  emp.ID,
		Type:        claim.ClaimType(req.Type),
		Description: req.Description,
		IsUrgent:    req.IsUrgent,
		Status:      claim.ClaimStatusPending,
	})
	if err != nil {
		return claim.ClaimResponse{}, fmt.Errorf("failed to create claim: %w", err)
	}
	name := emp.FullName()
	created.EmployeeName = &name
	created.EmployeeUserID = emp.UserID

	s.notifyReviewers(ctx, created, name)

	return created.ToResponse(), nil
}

func (s *ClaimServiceImpl) notifyReviewers(ctx context.Context, c claim.Claim, employeeName string) {
	reviewers, err := s.userRepo.ListByRoles(ctx, claimReviewers, true)
	if err != nil {
		slog.Error("failed to load claim reviewers", "error", err, "claim_id", c.ID)
		return
	}
	if len(reviewers) == 0 {
		return
	}

	ids := make([]string, 0, len(reviewers))
	for _, r := range reviewers {
		ids = append(ids, r.ID)
	}
	if err := s.notifier.NotifyClaimSubmitted(ctx, ids, employeeName, string(c.Type), c.IsUrgent, c.ID); err != nil {
		slog.Error("failed to notify claim reviewers", "error", err, "claim_id", c.ID)
	}
}

// visibleClaim answers not-found to callers who may not see the claim.
func (s *ClaimServiceImpl) visibleClaim(ctx context.Context, id string) (claim.Claim, jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return claim.Claim{}, jwt.Actor{}, err
	}
	c, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		return claim.Claim{}, jwt.Actor{}, err
	}

	viewAll, err := s.can(ctx, actor, user.PermissionViewAllClaims)
	if err != nil {
		return claim.Claim{}, jwt.Actor{}, err
	}
	if viewAll {
		return c, actor, nil
	}
	if isOwn(c, actor) {
		ok, err := s.can(ctx, actor, user.PermissionViewOwnClaims)
		if err != nil {
			return claim.Claim{}, jwt.Actor{}, err
		}
		if ok {
			return c, actor, nil
		}
	}
	return claim.Claim{}, jwt.Actor{}, claim.ErrClaimNotFound
}

func (s *ClaimServiceImpl) GetByID(ctx context.Context, id string) (claim.ClaimResponse, error) {
	c, _, err := s.visibleClaim(ctx, id)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	return c.ToResponse(), nil
}

func (s *ClaimServiceImpl) GetMine(ctx context.Context) ([]claim.ClaimResponse, error) {
	actor, err := s.require(ctx, user.PermissionViewOwnClaims)
	if err != nil {
		return nil, err
	}
	emp, err := s.ownEmployee(ctx, actor)
	if err != nil {
		return nil, err
	}

	claims, err := s.claimRepo.GetByEmployeeID(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get my claims: %w", err)
	}
	return claim.ToResponses(claims), nil
}

func (s *ClaimServiceImpl) List(ctx context.Context, filter claim.ClaimFilter) ([]claim.ClaimResponse, int64, error) {
	if _, err := s.require(ctx, user.PermissionViewAllClaims); err != nil {
		return nil, 0, err
	}
	filter.Normalize()

	claims, total, err := s.claimRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list claims: %w", err)
	}
	return claim.ToResponses(claims), total, nil
}

func (s *ClaimServiceImpl) Process(ctx context.Context, id string, req claim.ProcessClaimRequest) (claim.ClaimResponse, error) {
	actor, err := s.require(ctx, user.PermissionManageClaims)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return claim.ClaimResponse{}, err
	}
	var note *string
	if req.Note != "" {
		note = &req.Note
	}
	return s.transition(ctx, id, claim.ClaimStatusProcessed, actor.UserID, note)
}

func (s *ClaimServiceImpl) Reject(ctx context.Context, id string, req claim.RejectClaimRequest) (claim.ClaimResponse, error) {
	actor, err := s.require(ctx, user.PermissionManageClaims)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return claim.ClaimResponse{}, err
	}
	return s.transition(ctx, id, claim.ClaimStatusRejected, actor.UserID, &req.Reason)
}

func (s *ClaimServiceImpl) transition(ctx context.Context, id string, next claim.ClaimStatus, processedBy string, note *string) (claim.ClaimResponse, error) {
	current, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	if !current.Status.CanTransitionTo(next) {
		return claim.ClaimResponse{}, claim.ErrClaimAlreadyProcessed
	}

	// the repository re-checks status = 'pending' so concurrent reviewers cannot both win
	updated, err := s.claimRepo.UpdateStatus(ctx, id, next, processedBy, note)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	if updated.EmployeeUserID == nil {
		updated.EmployeeUserID = current.EmployeeUserID
	}

	if updated.EmployeeUserID != nil {
		noteText := ""
		if note != nil {
			noteText = *note
		}
		err := s.notifier.NotifyClaimResolved(ctx, *updated.EmployeeUserID, next == claim.ClaimStatusProcessed,
			string(updated.Type), noteText, updated.ID)
		if err != nil {
			slog.Error("failed to notify claim resolution", "error", err, "claim_id", id)
		}
	}

	return updated.ToResponse(), nil
}

// Delete withdraws a pending claim. Owners delete their own; manage_claims deletes any.
func (s *ClaimServiceImpl) Delete(ctx context.Context, id string) error {
	c, actor, err := s.visibleClaim(ctx, id)
	if err != nil {
		return err
	}
	if !isOwn(c, actor) {
		ok, err := s.can(ctx, actor, user.PermissionManageClaims)
		if err != nil {
			return err
		}
		if !ok {
			return claim.ErrForbidden
		}
	}
	if c.Status != claim.ClaimStatusPending {
		return claim.ErrClaimAlreadyProcessed
	}
	return s.claimRepo.Delete(ctx, id)
}

// UploadAttachment stores a photo or document with the claim, replacing any earlier one.
func (s *ClaimServiceImpl) UploadAttachment(ctx context.Context, id string, req claim.UploadAttachmentRequest) (claim.ClaimResponse, error) {
	c, actor, err := s.visibleClaim(ctx, id)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	if !isOwn(c, actor) {
		ok, err := s.can(ctx, actor, user.PermissionManageClaims)
		if err != nil {
			return claim.ClaimResponse{}, err
		}
		if !ok {
			return claim.ClaimResponse{}, claim.ErrForbidden
		}
	}
	if err := req.Validate(); err != nil {
		return claim.ClaimResponse{}, err
	}

	key, err := s.fileService.UploadClaimAttachment(ctx, c.EmployeeID, c.ID, req.File, req.FileName)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	if err := s.claimRepo.SetAttachment(ctx, c.ID, key); err != nil {
		return claim.ClaimResponse{}, err
	}

	updated, err := s.claimRepo.GetByID(ctx, c.ID)
	if err != nil {
		return claim.ClaimResponse{}, err
	}
	return updated.ToResponse(), nil
}
