package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type IllnessHandler interface {
	CreateRecord(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	GetMyRecords(w http.ResponseWriter, r *http.Request)
	GetEmployeeRecords(w http.ResponseWriter, r *http.Request)
	GetActiveRecords(w http.ResponseWriter, r *http.Request)
	UpdateRecord(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	UploadCertificate(w http.ResponseWriter, r *http.Request)
	GetStatistics(w http.ResponseWriter, r *http.Request)
}

type illnessHandlerImpl struct {
	illnessService illness.IllnessService
}

func NewIllnessHandler(illnessService illness.IllnessService) IllnessHandler {
	return &illnessHandlerImpl{illnessService: illnessService}
}

// CreateRecord implements IllnessHandler
func (h *illnessHandlerImpl) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req illness.CreateIllnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRecord decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.illnessService.Create(r.Context(), req)
	if err != nil {
		slog.Error("CreateRecord service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Illness record created successfully", result)
}

// GetRecord implements IllnessHandler
func (h *illnessHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	result, err := h.illnessService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetMyRecords implements IllnessHandler
func (h *illnessHandlerImpl) GetMyRecords(w http.ResponseWriter, r *http.Request) {
	results, err := h.illnessService.GetMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// GetEmployeeRecords implements IllnessHandler
func (h *illnessHandlerImpl) GetEmployeeRecords(w http.ResponseWriter, r *http.Request) {
	results, err := h.illnessService.GetByEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// GetActiveRecords implements IllnessHandler
func (h *illnessHandlerImpl) GetActiveRecords(w http.ResponseWriter, r *http.Request) {
	results, err := h.illnessService.GetAllActive(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// UpdateRecord implements IllnessHandler
func (h *illnessHandlerImpl) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req illness.UpdateIllnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateRecord decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.illnessService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UpdateRecord service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Illness record updated successfully", result)
}

// UpdateStatus implements IllnessHandler
func (h *illnessHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req illness.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateStatus decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.illnessService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UpdateStatus service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Illness status updated", result)
}

// UploadCertificate implements IllnessHandler. Multipart fields: file, expiry (optional).
func (h *illnessHandlerImpl) UploadCertificate(w http.ResponseWriter, r *http.Request) {
	file, header, ok := readFormFile(w, r, "file", employee.MaxDocumentSize)
	if !ok {
		return
	}
	defer file.Close()

	req := illness.UploadCertificateRequest{
		File:     file,
		FileName: filepath.Base(header.Filename),
		Size:     header.Size,
	}
	if v := r.FormValue("expiry"); v != "" {
		req.Expiry = &v
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.illnessService.UploadMedicalCertificate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UploadCertificate service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Medical certificate uploaded", result)
}

// GetStatistics implements IllnessHandler
func (h *illnessHandlerImpl) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.illnessService.GetStatistics(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}
