package illness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/file"
)

const (
	dateLayout = "2006-01-02"

	// certificates expiring within this window trigger a reminder
	certificateReminderWindow = 7 * 24 * time.Hour

	TitleCertificateExpiring = "Medical Certificate Expiring"
	TitleFollowUpDue         = "Illness Follow-up Due"
)

type IllnessServiceImpl struct {
	illnessRepo  illness.IllnessRepository
	employeeRepo employee.EmployeeRepository
	userRepo     user.UserRepository
	permissions  permission.Checker
	fileService  file.FileService
	notifier     notification.Notifier
	now          func() time.Time
}

func NewIllnessService(
	illnessRepo illness.IllnessRepository,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	permissions permission.Checker,
	fileService file.FileService,
	notifier notification.Notifier,
) illness.IllnessService {
	return &IllnessServiceImpl{
		illnessRepo:  illnessRepo,
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		permissions:  permissions,
		fileService:  fileService,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *IllnessServiceImpl) can(ctx context.Context, actor jwt.Actor, p user.Permission) (bool, error) {
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, p)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", p, err)
	}
	return ok, nil
}

func (s *IllnessServiceImpl) require(ctx context.Context, p user.Permission) (jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return jwt.Actor{}, err
	}
	ok, err := s.can(ctx, actor, p)
	if err != nil {
		return jwt.Actor{}, err
	}
	if !ok {
		return jwt.Actor{}, illness.ErrForbidden
	}
	return actor, nil
}

// ownEmployeeID resolves the caller's employee record. It returns "" when none is linked.
func (s *IllnessServiceImpl) ownEmployeeID(ctx context.Context, actor jwt.Actor) (string, error) {
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

// authorize allows managers, or the record's employee holding ownPerm.
func (s *IllnessServiceImpl) authorize(ctx context.Context, actor jwt.Actor, employeeID string, ownPerm user.Permission) (bool, error) {
	manage, err := s.can(ctx, actor, user.PermissionManageIllnessRecords)
	if err != nil || manage {
		return manage, err
	}
	ownID, err := s.ownEmployeeID(ctx, actor)
	if err != nil {
		return false, err
	}
	if ownID == "" || ownID != employeeID {
		return false, nil
	}
	return s.can(ctx, actor, ownPerm)
}

// visibleRecord loads a record and hides it from callers who may not see it.
func (s *IllnessServiceImpl) visibleRecord(ctx context.Context, id string, ownPerm user.Permission) (illness.IllnessRecord, jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return illness.IllnessRecord{}, jwt.Actor{}, err
	}
	record, err := s.illnessRepo.GetByID(ctx, id)
	if err != nil {
		return illness.IllnessRecord{}, jwt.Actor{}, err
	}
	ok, err := s.authorize(ctx, actor, record.EmployeeID, ownPerm)
	if err != nil {
		return illness.IllnessRecord{}, jwt.Actor{}, err
	}
	if !ok {
		return illness.IllnessRecord{}, jwt.Actor{}, illness.ErrIllnessRecordNotFound
	}
	return record, actor, nil
}

func (s *IllnessServiceImpl) Create(ctx context.Context, req illness.CreateIllnessRequest) (illness.IllnessRecordResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return illness.IllnessRecordResponse{}, err
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID, err = s.ownEmployeeID(ctx, actor)
		if err != nil {
			return illness.IllnessRecordResponse{}, err
		}
		if employeeID == "" {
			return illness.IllnessRecordResponse{}, illness.ErrNoEmployeeRecord
		}
	}

	ok, err := s.authorize(ctx, actor, employeeID, user.PermissionRecordOwnIllness)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	if !ok {
		return illness.IllnessRecordResponse{}, illness.ErrForbidden
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}

	created, err := s.illnessRepo.Create(ctx, illness.IllnessRecord{
		EmployeeID:   emp.ID,
		Type:         illness.IllnessType(req.Type),
		Status:       illness.IllnessStatusActive,
		StartDate:    req.Start,
		EndDate:      req.End,
		Description:  req.Description,
		FollowUpDate: req.FollowUp,
		Notes:        req.Notes,
		Documents:    []employee.Document{},
		CreatedBy:    actor.UserID,
		UpdatedBy:    actor.UserID,
	})
	if err != nil {
		return illness.IllnessRecordResponse{}, fmt.Errorf("failed to create illness record: %w", err)
	}
	name := emp.FullName()
	created.EmployeeName = &name

	return created.ToResponse(), nil
}

func (s *IllnessServiceImpl) GetByID(ctx context.Context, id string) (illness.IllnessRecordResponse, error) {
	record, _, err := s.visibleRecord(ctx, id, user.PermissionViewOwnIllness)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	return record.ToResponse(), nil
}

func (s *IllnessServiceImpl) GetMine(ctx context.Context) ([]illness.IllnessRecordResponse, error) {
	actor, err := s.require(ctx, user.PermissionViewOwnIllness)
	if err != nil {
		return nil, err
	}
	employeeID, err := s.ownEmployeeID(ctx, actor)
	if err != nil {
		return nil, err
	}
	if employeeID == "" {
		return nil, illness.ErrNoEmployeeRecord
	}

	records, err := s.illnessRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get illness records: %w", err)
	}
	return illness.ToResponses(records), nil
}

func (s *IllnessServiceImpl) GetByEmployee(ctx context.Context, employeeID string) ([]illness.IllnessRecordResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := s.authorize(ctx, actor, employeeID, user.PermissionViewOwnIllness)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, illness.ErrForbidden
	}

	records, err := s.illnessRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get illness records: %w", err)
	}
	return illness.ToResponses(records), nil
}

func (s *IllnessServiceImpl) GetAllActive(ctx context.Context) ([]illness.IllnessRecordResponse, error) {
	if _, err := s.require(ctx, user.PermissionManageIllnessRecords); err != nil {
		return nil, err
	}
	records, err := s.illnessRepo.GetAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active illness records: %w", err)
	}
	return illness.ToResponses(records), nil
}

func (s *IllnessServiceImpl) Update(ctx context.Context, id string, req illness.UpdateIllnessRequest) (illness.IllnessRecordResponse, error) {
	actor, err := s.require(ctx, user.PermissionManageIllnessRecords)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return illness.IllnessRecordResponse{}, err
	}

	if err := s.illnessRepo.Update(ctx, id, req, actor.UserID); err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	record, err := s.illnessRepo.GetByID(ctx, id)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	return record.ToResponse(), nil
}

// UpdateStatus closes an active record. Recovering without an end date stamps today.
func (s *IllnessServiceImpl) UpdateStatus(ctx context.Context, id string, req illness.UpdateStatusRequest) (illness.IllnessRecordResponse, error) {
	actor, err := s.require(ctx, user.PermissionManageIllnessRecords)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return illness.IllnessRecordResponse{}, err
	}

	record, err := s.illnessRepo.GetByID(ctx, id)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	next := illness.IllnessStatus(req.Status)
	if !record.Status.CanTransitionTo(next) {
		return illness.IllnessRecordResponse{}, illness.ErrInvalidStatusTransition
	}

	endDate := req.End
	if endDate == nil {
		endDate = record.EndDate
	}
	if next == illness.IllnessStatusRecovered && endDate == nil {
		today := s.today()
		endDate = &today
	}

	if err := s.illnessRepo.UpdateStatus(ctx, id, next, endDate, actor.UserID); err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	record, err = s.illnessRepo.GetByID(ctx, id)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	return record.ToResponse(), nil
}

func (s *IllnessServiceImpl) UploadMedicalCertificate(ctx context.Context, id string, req illness.UploadCertificateRequest) (illness.IllnessRecordResponse, error) {
	record, actor, err := s.visibleRecord(ctx, id, user.PermissionRecordOwnIllness)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return illness.IllnessRecordResponse{}, err
	}

	key, err := s.fileService.UploadMedicalCertificate(ctx, record.EmployeeID, record.ID, req.File, req.FileName)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}

	doc, err := employee.NewDocument(req.FileName, key, employee.DocumentTypeMedical, s.now().UTC())
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	if err := s.illnessRepo.SetMedicalCertificate(ctx, id, key, req.ExpiryDate, doc, actor.UserID); err != nil {
		return illness.IllnessRecordResponse{}, err
	}

	record, err = s.illnessRepo.GetByID(ctx, id)
	if err != nil {
		return illness.IllnessRecordResponse{}, err
	}
	return record.ToResponse(), nil
}

func (s *IllnessServiceImpl) GetStatistics(ctx context.Context) (illness.Statistics, error) {
	if _, err := s.require(ctx, user.PermissionManageIllnessRecords); err != nil {
		return illness.Statistics{}, err
	}
	stats, err := s.illnessRepo.GetStatistics(ctx)
	if err != nil {
		return illness.Statistics{}, fmt.Errorf("failed to get illness statistics: %w", err)
	}
	if stats.ByType == nil {
		stats.ByType = map[illness.IllnessType]int64{}
	}
	return stats, nil
}

// SendReminders runs without a caller and returns the number of records reminded about.
// A record is reminded about at most once per kind and due date, so hourly runs are safe.
func (s *IllnessServiceImpl) SendReminders(ctx context.Context) (int, error) {
	today := s.today()

	expiring, err := s.illnessRepo.GetCertificatesExpiringBetween(ctx, today, today.Add(certificateReminderWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to get expiring certificates: %w", err)
	}
	followUps, err := s.illnessRepo.GetFollowUpsOn(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to get due follow-ups: %w", err)
	}
	if len(expiring) == 0 && len(followUps) == 0 {
		return 0, nil
	}

	reviewers, err := s.userRepo.ListByRoles(ctx, []user.Role{user.RoleAdmin, user.RoleHRAdvisor}, true)
	if err != nil {
		return 0, fmt.Errorf("failed to load reminder recipients: %w", err)
	}
	if len(reviewers) == 0 {
		return 0, nil
	}
	recipients := make([]string, 0, len(reviewers))
	for _, r := range reviewers {
		recipients = append(recipients, r.ID)
	}

	sent := 0
	for _, r := range expiring {
		msg := fmt.Sprintf("The medical certificate for %s expires on %s", employeeName(r), r.MedicalCertificateExpiry.Format(dateLayout))
		if s.remind(ctx, r, illness.ReminderCertificateExpiring, *r.MedicalCertificateExpiry, recipients, TitleCertificateExpiring, msg) {
			sent++
		}
	}
	for _, r := range followUps {
		msg := fmt.Sprintf("A follow-up for %s is due today", employeeName(r))
		if s.remind(ctx, r, illness.ReminderFollowUp, today, recipients, TitleFollowUpDue, msg) {
			sent++
		}
	}
	return sent, nil
}

// remind notifies reviewers once per record, kind and due date across runs.
func (s *IllnessServiceImpl) remind(ctx context.Context, r illness.IllnessRecord, kind illness.ReminderKind, dueOn time.Time, recipients []string, title, msg string) bool {
	claimed, err := s.illnessRepo.ClaimReminder(ctx, r.ID, kind, dueOn)
	if err != nil {
		slog.Error("failed to claim illness reminder", "error", err, "illness_id", r.ID, "kind", kind)
		return false
	}
	if !claimed {
		return false
	}
	if err := s.notifier.NotifySystem(ctx, recipients, title, msg, reminderData(r)); err != nil {
		slog.Error("failed to send illness reminder", "error", err, "illness_id", r.ID, "kind", kind)
		if err := s.illnessRepo.ReleaseReminder(ctx, r.ID, kind, dueOn); err != nil {
			slog.Error("failed to release illness reminder", "error", err, "illness_id", r.ID)
		}
		return false
	}
	return true
}

func (s *IllnessServiceImpl) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func employeeName(r illness.IllnessRecord) string {
	if r.EmployeeName != nil && *r.EmployeeName != "" {
		return *r.EmployeeName
	}
	return "an employee"
}

func reminderData(r illness.IllnessRecord) map[string]interface{} {
	return map[string]interface{}{
		"illnessId":  r.ID,
		"employeeId": r.EmployeeID,
	}
}
