package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/invoice"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type InvoiceHandler interface {
	CreateInvoice(w http.ResponseWriter, r *http.Request)
	ListInvoices(w http.ResponseWriter, r *http.Request)
	GetInvoice(w http.ResponseWriter, r *http.Request)
	GetMyInvoices(w http.ResponseWriter, r *http.Request)
	GetEmployeeInvoices(w http.ResponseWriter, r *http.Request)
	UpdateInvoice(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type invoiceHandlerImpl struct {
	invoiceService invoice.InvoiceService
}

func NewInvoiceHandler(invoiceService invoice.InvoiceService) InvoiceHandler {
	return &invoiceHandlerImpl{invoiceService: invoiceService}
}

func (h *invoiceHandlerImpl) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoice.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateInvoice decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.invoiceService.Create(r.Context(), req)
	if err != nil {
		slog.Error("CreateInvoice service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Invoice created successfully", result)
}

func (h *invoiceHandlerImpl) ListInvoices(w http.ResponseWriter, r *http.Request) {
	filter := invoice.InvoiceFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := invoice.Status(v)
		if !status.IsValid() {
			response.HandleError(w, validator.ValidationErrors{{
				Field:   "status",
				Message: "status must be one of draft, sent, paid, overdue, cancelled",
			}})
			return
		}
		filter.Status = &status
	}
	filter.Normalize()

	results, total, err := h.invoiceService.GetAll(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, paginationMeta(filter.Page, filter.Limit, total))
}

func (h *invoiceHandlerImpl) GetInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.invoiceService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *invoiceHandlerImpl) GetMyInvoices(w http.ResponseWriter, r *http.Request) {
	results, err := h.invoiceService.GetMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *invoiceHandlerImpl) GetEmployeeInvoices(w http.ResponseWriter, r *http.Request) {
	results, err := h.invoiceService.GetByEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *invoiceHandlerImpl) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoice.UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateInvoice decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.invoiceService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UpdateInvoice service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invoice updated successfully", result)
}

func (h *invoiceHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req invoice.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateStatus decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.invoiceService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UpdateStatus service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invoice status updated", result)
}
