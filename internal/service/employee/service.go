package employee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/file"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	userRepo     user.UserRepository
	permissions  permission.Checker
	fileService  file.FileService
	notifier     notification.Notifier
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	permissions permission.Checker,
	fileService file.FileService,
	notifier notification.Notifier,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		permissions:  permissions,
		fileService:  fileService,
		notifier:     notifier,
	}
}

func (s *EmployeeServiceImpl) can(ctx context.Context, actor jwt.Actor, p user.Permission) (bool, error) {
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, p)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", p, err)
	}
	return ok, nil
}

func (s *EmployeeServiceImpl) require(ctx context.Context, p user.Permission) (jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return jwt.Actor{}, err
	}
	ok, err := s.can(ctx, actor, p)
	if err != nil {
		return jwt.Actor{}, err
	}
	if !ok {
		return jwt.Actor{}, employee.ErrForbidden
	}
	return actor, nil
}

// canAccess loads the employee and allows staff holding staffPerm, or the owner holding ownPerm.
func (s *EmployeeServiceImpl) canAccess(ctx context.Context, id string, staffPerm, ownPerm user.Permission) (employee.Employee, jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return employee.Employee{}, jwt.Actor{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, jwt.Actor{}, err
	}

	isStaff, err := s.can(ctx, actor, staffPerm)
	if err != nil {
		return employee.Employee{}, jwt.Actor{}, err
	}
	if isStaff {
		return emp, actor, nil
	}

	if emp.IsLinkedTo(actor.UserID) {
		ok, err := s.can(ctx, actor, ownPerm)
		if err != nil {
			return employee.Employee{}, jwt.Actor{}, err
		}
		if ok {
			return emp, actor, nil
		}
	}
	return employee.Employee{}, jwt.Actor{}, employee.ErrForbidden
}

func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if _, err := s.require(ctx, user.PermissionEditEmployeeDetails); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.UserID != nil {
		if _, err := s.userRepo.GetByID(ctx, *req.UserID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return employee.EmployeeResponse{}, employee.ErrLinkedUserNotFound
			}
			return employee.EmployeeResponse{}, fmt.Errorf("failed to get linked user: %w", err)
		}
	}

	hireDate, _ := time.Parse("2006-01-02", req.HireDate)
	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		UserID:           req.UserID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Position:         req.Position,
		Department:       req.Department,
		HireDate:         hireDate,
		Phone:            req.Phone,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		Documents:        []employee.Document{},
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return created.ToResponse(), nil
}

func (s *EmployeeServiceImpl) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, _, err := s.canAccess(ctx, id, user.PermissionViewEmployeeDetails, user.PermissionViewOwnProfile)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return emp.ToResponse(), nil
}

func (s *EmployeeServiceImpl) GetMine(ctx context.Context) (employee.EmployeeResponse, error) {
	actor, err := s.require(ctx, user.PermissionViewOwnProfile)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	emp, err := s.mine(ctx, actor)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return emp.ToResponse(), nil
}

func (s *EmployeeServiceImpl) mine(ctx context.Context, actor jwt.Actor) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, employee.ErrNoEmployeeRecord
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

func (s *EmployeeServiceImpl) GetByUserID(ctx context.Context, userID string) (employee.EmployeeResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	perm := user.PermissionViewEmployeeDetails
	if actor.UserID == userID {
		perm = user.PermissionViewOwnProfile
	}
	ok, err := s.can(ctx, actor, perm)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !ok {
		return employee.EmployeeResponse{}, employee.ErrForbidden
	}

	emp, err := s.employeeRepo.GetByUserID(ctx, userID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return emp.ToResponse(), nil
}

func (s *EmployeeServiceImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if _, err := s.require(ctx, user.PermissionEditEmployeeDetails); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.employeeRepo.Update(ctx, id, req); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return emp.ToResponse(), nil
}

// UpdateOwnProfile lets employees change their contact details only.
func (s *EmployeeServiceImpl) UpdateOwnProfile(ctx context.Context, req employee.UpdateOwnProfileRequest) (employee.EmployeeResponse, error) {
	actor, err := s.require(ctx, user.PermissionEditOwnProfile)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.mine(ctx, actor)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.employeeRepo.UpdateContact(ctx, emp.ID, req); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err = s.employeeRepo.GetByID(ctx, emp.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return emp.ToResponse(), nil
}

func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, int64, error) {
	if _, err := s.require(ctx, user.PermissionViewAllEmployees); err != nil {
		return nil, 0, err
	}
	filter.Normalize()

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.ToResponse())
	}
	return out, total, nil
}

func (s *EmployeeServiceImpl) UploadDocument(ctx context.Context, id string, req employee.UploadDocumentRequest) (employee.Document, error) {
	emp, actor, err := s.canAccess(ctx, id, user.PermissionManageDocuments, user.PermissionEditOwnProfile)
	if err != nil {
		return employee.Document{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.Document{}, err
	}

	key, err := s.fileService.UploadEmployeeDocument(ctx, emp.ID, req.File, req.FileName)
	if err != nil {
		return employee.Document{}, err
	}

	doc, err := employee.NewDocument(req.Name, key, req.Type, time.Now().UTC())
	if err != nil {
		return employee.Document{}, err
	}
	if err := s.employeeRepo.AddDocument(ctx, emp.ID, doc); err != nil {
		return employee.Document{}, fmt.Errorf("failed to attach document: %w", err)
	}

	if emp.UserID != nil && *emp.UserID != actor.UserID {
		if err := s.notifier.NotifyDocumentUploaded(ctx, *emp.UserID, doc.Name, emp.ID); err != nil {
			slog.Error("failed to notify document upload", "error", err, "employee_id", emp.ID)
		}
	}

	return doc, nil
}

func (s *EmployeeServiceImpl) UploadAvatar(ctx context.Context, id string, req employee.UploadAvatarRequest) (employee.EmployeeResponse, error) {
	emp, _, err := s.canAccess(ctx, id, user.PermissionEditEmployeeDetails, user.PermissionEditOwnProfile)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	key, err := s.fileService.UploadAvatar(ctx, emp.ID, req.File, req.FileName)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.employeeRepo.UpdateProfilePicture(ctx, emp.ID, key); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if emp.ProfilePicture != nil && *emp.ProfilePicture != key {
		if err := s.fileService.DeleteFile(ctx, *emp.ProfilePicture); err != nil {
			slog.Warn("failed to delete previous avatar", "error", err, "path", *emp.ProfilePicture)
		}
	}

	emp.ProfilePicture = &key
	return emp.ToResponse(), nil
}

func (s *EmployeeServiceImpl) DeleteDocument(ctx context.Context, id string, documentID string) error {
	if _, err := s.require(ctx, user.PermissionManageDocuments); err != nil {
		return err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	doc, ok := findDocument(emp.Documents, documentID)
	if !ok {
		return employee.ErrDocumentNotFound
	}

	if err := s.employeeRepo.RemoveDocument(ctx, id, documentID); err != nil {
		return err
	}
	if err := s.fileService.DeleteFile(ctx, doc.URL); err != nil {
		slog.Warn("failed to delete document file", "error", err, "path", doc.URL)
	}
	return nil
}

// OpenDocument follows GetByID visibility.
func (s *EmployeeServiceImpl) OpenDocument(ctx context.Context, id string, documentID string) (io.ReadCloser, employee.Document, error) {
	emp, _, err := s.canAccess(ctx, id, user.PermissionViewEmployeeDetails, user.PermissionViewOwnProfile)
	if err != nil {
		return nil, employee.Document{}, err
	}
	doc, ok := findDocument(emp.Documents, documentID)
	if !ok {
		return nil, employee.Document{}, employee.ErrDocumentNotFound
	}

	rc, err := s.fileService.Open(ctx, doc.URL)
	if err != nil {
		return nil, employee.Document{}, err
	}
	return rc, doc, nil
}

func findDocument(docs []employee.Document, id string) (employee.Document, bool) {
	for _, d := range docs {
		if d.ID == id {
			return d, true
		}
	}
	return employee.Document{}, false
}
