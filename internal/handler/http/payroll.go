package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Staff
	CreatePayslip(w http.ResponseWriter, r *http.Request)
	ListPayslips(w http.ResponseWriter, r *http.Request)
	UpdatePayslip(w http.ResponseWriter, r *http.Request)
	DeletePayslip(w http.ResponseWriter, r *http.Request)
	PublishPayslip(w http.ResponseWriter, r *http.Request)
	UploadPDF(w http.ResponseWriter, r *http.Request)

	// Shared visibility
	GetPayslip(w http.ResponseWriter, r *http.Request)
	GetEmployeePayslips(w http.ResponseWriter, r *http.Request)
	DownloadPDF(w http.ResponseWriter, r *http.Request)

	// Employee
	GetMyPayslips(w http.ResponseWriter, r *http.Request)
	MarkAsViewed(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== STAFF ==========

func (h *payrollHandlerImpl) CreatePayslip(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreatePayslip decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Create(r.Context(), req)
	if err != nil {
		slog.Error("CreatePayslip service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payslip created successfully", result)
}

func (h *payrollHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	filter := payroll.PayslipFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	if v := r.URL.Query().Get("status"); v != "" {
		status := payroll.PayslipStatus(v)
		if !status.IsValid() {
			errs.Add("status", "status must be draft or published")
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || !validator.IsValidYear(year) {
			errs.Add("year", "year is invalid")
		}
		filter.Year = &year
	}
	if v := r.URL.Query().Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || !validator.IsValidMonth(month) {
			errs.Add("month", "month must be between 1 and 12")
		}
		filter.Month = &month
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}
	filter.Normalize()

	results, total, err := h.payrollService.GetAll(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, paginationMeta(filter.Page, filter.Limit, total))
}

func (h *payrollHandlerImpl) UpdatePayslip(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdatePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdatePayslip decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UpdatePayslip service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip updated successfully", result)
}

func (h *payrollHandlerImpl) DeletePayslip(w http.ResponseWriter, r *http.Request) {
	if err := h.payrollService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("DeletePayslip service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip deleted successfully", nil)
}

func (h *payrollHandlerImpl) PublishPayslip(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("PublishPayslip service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip published successfully", result)
}

func (h *payrollHandlerImpl) UploadPDF(w http.ResponseWriter, r *http.Request) {
	file, header, ok := readFormFile(w, r, "file", payroll.MaxPDFSize)
	if !ok {
		return
	}
	defer file.Close()

	req := payroll.UploadPDFRequest{
		File:     file,
		FileName: filepath.Base(header.Filename),
		Size:     header.Size,
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.UploadPDF(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UploadPDF service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip PDF uploaded", result)
}

// ========== SHARED ==========

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetEmployeePayslips(w http.ResponseWriter, r *http.Request) {
	results, err := h.payrollService.GetByEmployeeID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (h *payrollHandlerImpl) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	rc, filename, err := h.payrollService.DownloadPDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("DownloadPDF copy error", "error", err, "filename", filename)
	}
}

// ========== EMPLOYEE ==========

func (h *payrollHandlerImpl) GetMyPayslips(w http.ResponseWriter, r *http.Request) {
	results, err := h.payrollService.GetMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (h *payrollHandlerImpl) MarkAsViewed(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.MarkAsViewed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
