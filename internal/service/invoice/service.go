package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/invoice"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
)

type InvoiceServiceImpl struct {
	invoice.InvoiceRepository
	employeeRepo employee.EmployeeRepository
	permissions  permission.Checker
	now          func() time.Time
}

func NewInvoiceService(invoiceRepo invoice.InvoiceRepository, employeeRepo employee.EmployeeRepository, permissions permission.Checker) invoice.InvoiceService {
	return &InvoiceServiceImpl{
		InvoiceRepository: invoiceRepo,
		employeeRepo:      employeeRepo,
		permissions:       permissions,
		now:               time.Now,
	}
}

func (s *InvoiceServiceImpl) can(ctx context.Context, actor jwt.Actor, p user.Permission) (bool, error) {
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, p)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", p, err)
	}
	return ok, nil
}

func (s *InvoiceServiceImpl) require(ctx context.Context, p user.Permission) (jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return jwt.Actor{}, err
	}
	ok, err := s.can(ctx, actor, p)
	if err != nil {
		return jwt.Actor{}, err
	}
	if !ok {
		return jwt.Actor{}, invoice.ErrForbidden
	}
	return actor, nil
}

// ownEmployeeID returns "" when the caller has no employee record.
func (s *InvoiceServiceImpl) ownEmployeeID(ctx context.Context, actor jwt.Actor) (string, error) {
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

func (s *InvoiceServiceImpl) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *InvoiceServiceImpl) Create(ctx context.Context, req invoice.CreateInvoiceRequest) (invoice.InvoiceResponse, error) {
	if _, err := s.require(ctx, user.PermissionCreatePayslips); err != nil {
		return invoice.InvoiceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return invoice.InvoiceResponse{}, invoice.ErrEmployeeNotFound
		}
		return invoice.InvoiceResponse{}, err
	}

	inv := invoice.Invoice{
		EmployeeID: emp.ID,
		Status:     invoice.StatusDraft,
		IssueDate:  s.today(),
		DueDate:    req.Due,
		Items:      invoice.BuildItems(req.ParsedItems),
		TaxRate:    req.TaxRate,
		Notes:      req.Notes,
	}
	inv.Recalculate()

	created, err := s.InvoiceRepository.Create(ctx, inv)
	if err != nil {
		return invoice.InvoiceResponse{}, fmt.Errorf("failed to create invoice: %w", err)
	}
	name := emp.FullName()
	created.EmployeeName = &name
	return created.ToResponse(), nil
}

// GetByID hides other employees' invoices from callers without view_payroll_reports.
func (s *InvoiceServiceImpl) GetByID(ctx context.Context, id string) (invoice.InvoiceResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}
	inv, err := s.InvoiceRepository.GetByID(ctx, id)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}

	staff, err := s.can(ctx, actor, user.PermissionViewPayrollReports)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}
	if !staff {
		ownID, err := s.ownEmployeeID(ctx, actor)
		if err != nil {
			return invoice.InvoiceResponse{}, err
		}
		if ownID == "" || ownID != inv.EmployeeID {
			return invoice.InvoiceResponse{}, invoice.ErrInvoiceNotFound
		}
	}
	return inv.ToResponse(), nil
}

func (s *InvoiceServiceImpl) GetMine(ctx context.Context) ([]invoice.InvoiceResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	employeeID, err := s.ownEmployeeID(ctx, actor)
	if err != nil {
		return nil, err
	}
	if employeeID == "" {
		return nil, invoice.ErrNoEmployeeRecord
	}

	invoices, err := s.InvoiceRepository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoices: %w", err)
	}
	return invoice.ToResponses(invoices), nil
}

func (s *InvoiceServiceImpl) GetByEmployee(ctx context.Context, employeeID string) ([]invoice.InvoiceResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := s.can(ctx, actor, user.PermissionViewPayrollReports)
	if err != nil {
		return nil, err
	}
	if !staff {
		ownID, err := s.ownEmployeeID(ctx, actor)
		if err != nil {
			return nil, err
		}
		if ownID == "" || ownID != employeeID {
			return nil, invoice.ErrForbidden
		}
	}

	invoices, err := s.InvoiceRepository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoices: %w", err)
	}
	return invoice.ToResponses(invoices), nil
}

func (s *InvoiceServiceImpl) GetAll(ctx context.Context, filter invoice.InvoiceFilter) ([]invoice.InvoiceResponse, int64, error) {
	if _, err := s.require(ctx, user.PermissionViewPayrollReports); err != nil {
		return nil, 0, err
	}
	filter.Normalize()
	invoices, total, err := s.InvoiceRepository.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoice.ToResponses(invoices), total, nil
}

func (s *InvoiceServiceImpl) UpdateStatus(ctx context.Context, id string, req invoice.UpdateStatusRequest) (invoice.InvoiceResponse, error) {
	if _, err := s.require(ctx, user.PermissionEditPayslips); err != nil {
		return invoice.InvoiceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	inv, err := s.InvoiceRepository.GetByID(ctx, id)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}
	if !inv.Status.CanTransitionTo(req.Status) {
		return invoice.InvoiceResponse{}, invoice.ErrInvalidStatusTransition
	}

	// the guarded update catches a concurrent change between the read and the write
	if err := s.InvoiceRepository.UpdateStatus(ctx, id, req.Status, invoice.AllowedFrom(req.Status)); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	inv, err = s.InvoiceRepository.GetByID(ctx, id)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}
	return inv.ToResponse(), nil
}

func (s *InvoiceServiceImpl) Update(ctx context.Context, id string, req invoice.UpdateInvoiceRequest) (invoice.InvoiceResponse, error) {
	if _, err := s.require(ctx, user.PermissionEditPayslips); err != nil {
		return invoice.InvoiceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	inv, err := s.InvoiceRepository.GetByID(ctx, id)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}
	if inv.Status != invoice.StatusDraft {
		return invoice.InvoiceResponse{}, invoice.ErrInvoiceNotDraft
	}

	if req.Items != nil {
		inv.Items = invoice.BuildItems(req.ParsedItems)
	}
	if req.TaxRate != nil {
		inv.TaxRate = *req.TaxRate
	}
	if req.Items != nil || req.TaxRate != nil {
		inv.Recalculate()
	}
	if req.Due != nil {
		inv.DueDate = *req.Due
	}
	if req.Notes != nil {
		inv.Notes = req.Notes
	}

	if err := s.InvoiceRepository.UpdateDraft(ctx, inv); err != nil {
		return invoice.InvoiceResponse{}, err
	}

	inv, err = s.InvoiceRepository.GetByID(ctx, id)
	if err != nil {
		return invoice.InvoiceResponse{}, err
	}
	return inv.ToResponse(), nil
}

func (s *InvoiceServiceImpl) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.InvoiceRepository.MarkOverdue(ctx, s.today())
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	return n, nil
}
