package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/file"
)

type PayrollServiceImpl struct {
	payslipRepo  payroll.PayslipRepository
	employeeRepo employee.EmployeeRepository
	permissions  permission.Checker
	fileService  file.FileService
	renderer     payroll.PDFRenderer
	notifier     notification.Notifier
	now          func() time.Time
}

func NewPayrollService(
	payslipRepo payroll.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	permissions permission.Checker,
	fileService file.FileService,
	renderer payroll.PDFRenderer,
	notifier notification.Notifier,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payslipRepo:  payslipRepo,
		employeeRepo: employeeRepo,
		permissions:  permissions,
		fileService:  fileService,
		renderer:     renderer,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *PayrollServiceImpl) can(ctx context.Context, actor jwt.Actor, p user.Permission) (bool, error) {
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, p)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", p, err)
	}
	return ok, nil
}

func (s *PayrollServiceImpl) require(ctx context.Context, p user.Permission) (jwt.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return jwt.Actor{}, err
	}
	ok, err := s.can(ctx, actor, p)
	if err != nil {
		return jwt.Actor{}, err
	}
	if !ok {
		return jwt.Actor{}, payroll.ErrForbidden
	}
	return actor, nil
}

func (s *PayrollServiceImpl) isStaff(ctx context.Context, actor jwt.Actor) (bool, error) {
	for _, p := range []user.Permission{user.PermissionViewPayrollReports, user.PermissionCreatePayslips} {
		ok, err := s.can(ctx, actor, p)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (s *PayrollServiceImpl) ownEmployeeID(ctx context.Context, actor jwt.Actor) (string, error) {
	if actor.EmployeeID != "" {
		return actor.EmployeeID, nil
	}
	emp, err := s.employeeRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return "", payroll.ErrNoEmployeeRecord
		}
		return "", fmt.Errorf("failed to get employee by user ID: %w", err)
	}
	return emp.ID, nil
}

func (s *PayrollServiceImpl) isOwner(ctx context.Context, actor jwt.Actor, p payroll.Payslip) (bool, error) {
	if p.EmployeeUserID != nil && *p.EmployeeUserID == actor.UserID {
		return true, nil
	}
	ownID, err := s.ownEmployeeID(ctx, actor)
	if err != nil {
		if errors.Is(err, payroll.ErrNoEmployeeRecord) {
			return false, nil
		}
		return false, err
	}
	return ownID == p.EmployeeID, nil
}

// visible loads a payslip for the caller. Employees only ever see their own published payslips.
func (s *PayrollServiceImpl) visible(ctx context.Context, id string) (payroll.Payslip, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.Payslip{}, err
	}
	p, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.Payslip{}, err
	}

	staff, err := s.isStaff(ctx, actor)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if staff {
		return p, nil
	}

	owner, err := s.isOwner(ctx, actor, p)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if !owner || !p.IsPublished() {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	ok, err := s.can(ctx, actor, user.PermissionViewOwnPayslips)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (s *PayrollServiceImpl) Create(ctx context.Context, req payroll.CreatePayslipRequest) (payroll.PayslipResponse, error) {
	if _, err := s.require(ctx, user.PermissionCreatePayslips); err != nil {
		return payroll.PayslipResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayslipResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.PayslipResponse{}, payroll.ErrEmployeeNotFound
		}
		return payroll.PayslipResponse{}, err
	}

	gross, net := payroll.ComputeTotals(req.ParsedItems)
	created, err := s.payslipRepo.Create(ctx, payroll.Payslip{
		EmployeeID:  emp.ID,
		Period:      payroll.Period{Month: req.Month, Year: req.Year},
		IssueDate:   req.Issued,
		GrossSalary: gross,
		NetSalary:   net,
		Items:       req.ParsedItems,
		Status:      payroll.PayslipStatusDraft,
	})
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	name := emp.FullName()
	created.EmployeeName = &name
	return created.ToResponse(), nil
}

func (s *PayrollServiceImpl) GetByID(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	p, err := s.visible(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return p.ToResponse(), nil
}

func (s *PayrollServiceImpl) GetMine(ctx context.Context) ([]payroll.PayslipResponse, error) {
	actor, err := s.require(ctx, user.PermissionViewOwnPayslips)
	if err != nil {
		return nil, err
	}
	employeeID, err := s.ownEmployeeID(ctx, actor)
	if err != nil {
		return nil, err
	}
	payslips, err := s.payslipRepo.GetPublishedByEmployeeID(ctx, employeeID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get payslips: %w", err)
	}
	return payroll.ToResponses(payslips), nil
}

// GetByEmployeeID returns published payslips. Staff see them for anyone, employees only their own.
func (s *PayrollServiceImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]payroll.PayslipResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := s.isStaff(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !staff {
		ownID, err := s.ownEmployeeID(ctx, actor)
		if err != nil && !errors.Is(err, payroll.ErrNoEmployeeRecord) {
			return nil, err
		}
		ok, err := s.can(ctx, actor, user.PermissionViewOwnPayslips)
		if err != nil {
			return nil, err
		}
		if ownID != employeeID || !ok {
			return nil, payroll.ErrForbidden
		}
	}

	payslips, err := s.payslipRepo.GetPublishedByEmployeeID(ctx, employeeID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get payslips: %w", err)
	}
	return payroll.ToResponses(payslips), nil
}

func (s *PayrollServiceImpl) GetAll(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.PayslipResponse, int64, error) {
	if _, err := s.require(ctx, user.PermissionViewPayrollReports); err != nil {
		return nil, 0, err
	}
	filter.Normalize()
	payslips, total, err := s.payslipRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payslips: %w", err)
	}
	return payroll.ToResponses(payslips), total, nil
}

// Update rewrites a draft. Totals are recomputed whenever items are supplied.
func (s *PayrollServiceImpl) Update(ctx context.Context, id string, req payroll.UpdatePayslipRequest) (payroll.PayslipResponse, error) {
	if _, err := s.require(ctx, user.PermissionEditPayslips); err != nil {
		return payroll.PayslipResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayslipResponse{}, err
	}

	p, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if p.IsPublished() {
		return payroll.PayslipResponse{}, payroll.ErrPayslipAlreadyPublished
	}

	if req.Issued != nil {
		p.IssueDate = *req.Issued
	}
	if req.Items != nil {
		p.Items = req.ParsedItems
		p.GrossSalary, p.NetSalary = payroll.ComputeTotals(p.Items)
	}
	if err := s.payslipRepo.UpdateDraft(ctx, p); err != nil {
		return payroll.PayslipResponse{}, err
	}

	p, err = s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return p.ToResponse(), nil
}

func (s *PayrollServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.require(ctx, user.PermissionDeletePayslips); err != nil {
		return err
	}
	return s.payslipRepo.DeleteDraft(ctx, id)
}

// Publish renders a PDF unless one was uploaded, then flips the draft and tells the employee.
func (s *PayrollServiceImpl) Publish(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	if _, err := s.require(ctx, user.PermissionEditPayslips); err != nil {
		return payroll.PayslipResponse{}, err
	}

	p, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if p.IsPublished() {
		return payroll.PayslipResponse{}, payroll.ErrPayslipAlreadyPublished
	}

	pdfKey := ""
	if p.PDFURL != nil {
		pdfKey = *p.PDFURL
	} else {
		name := ""
		if p.EmployeeName != nil {
			name = *p.EmployeeName
		}
		doc, err := s.renderer.RenderPayslip(p, name, s.now())
		if err != nil {
			return payroll.PayslipResponse{}, err
		}
		pdfKey, err = s.fileService.UploadPayslipPDF(ctx, p.ID, bytes.NewReader(doc))
		if err != nil {
			return payroll.PayslipResponse{}, err
		}
	}

	if err := s.payslipRepo.Publish(ctx, id, pdfKey); err != nil {
		return payroll.PayslipResponse{}, err
	}
	p, err = s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	if p.EmployeeUserID != nil {
		if err := s.notifier.NotifyPayslipAvailable(ctx, *p.EmployeeUserID, p.Period.Month, p.Period.Year, p.ID); err != nil {
			slog.Error("failed to send payslip notification", "error", err, "payslip_id", p.ID)
		}
	}

	return p.ToResponse(), nil
}

func (s *PayrollServiceImpl) MarkAsViewed(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	p, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	owner, err := s.isOwner(ctx, actor, p)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if !owner || !p.IsPublished() {
		return payroll.PayslipResponse{}, payroll.ErrPayslipNotFound
	}

	if err := s.payslipRepo.MarkViewed(ctx, id); err != nil {
		return payroll.PayslipResponse{}, err
	}
	p.ViewedByEmployee = true
	return p.ToResponse(), nil
}

func (s *PayrollServiceImpl) UploadPDF(ctx context.Context, id string, req payroll.UploadPDFRequest) (payroll.PayslipResponse, error) {
	if _, err := s.require(ctx, user.PermissionEditPayslips); err != nil {
		return payroll.PayslipResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayslipResponse{}, err
	}
	if _, err := s.payslipRepo.GetByID(ctx, id); err != nil {
		return payroll.PayslipResponse{}, err
	}

	key, err := s.fileService.UploadPayslipPDF(ctx, id, req.File)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if err := s.payslipRepo.SetPDFURL(ctx, id, key); err != nil {
		return payroll.PayslipResponse{}, err
	}

	p, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return p.ToResponse(), nil
}

// DownloadPDF returns the stored document and a download file name. The caller closes the reader.
func (s *PayrollServiceImpl) DownloadPDF(ctx context.Context, id string) (io.ReadCloser, string, error) {
	p, err := s.visible(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if p.PDFURL == nil {
		return nil, "", payroll.ErrPayslipPDFNotFound
	}

	rc, err := s.fileService.Open(ctx, *p.PDFURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", payroll.ErrPayslipPDFNotFound, err)
	}
	name := fmt.Sprintf("payslip-%d-%02d.pdf", p.Period.Year, p.Period.Month)
	return rc, name, nil
}
