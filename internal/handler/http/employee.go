package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	ListEmployees(w http.ResponseWriter, r *http.Request)
	GetEmployee(w http.ResponseWriter, r *http.Request)
	GetMyEmployee(w http.ResponseWriter, r *http.Request)
	GetEmployeeByUser(w http.ResponseWriter, r *http.Request)
	CreateEmployee(w http.ResponseWriter, r *http.Request)
	UpdateEmployee(w http.ResponseWriter, r *http.Request)
	UpdateOwnProfile(w http.ResponseWriter, r *http.Request)
	UploadDocument(w http.ResponseWriter, r *http.Request)
	DownloadDocument(w http.ResponseWriter, r *http.Request)
	DeleteDocument(w http.ResponseWriter, r *http.Request)
	UploadAvatar(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// ListEmployees implements EmployeeHandler
func (h *employeeHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	filter := employee.EmployeeFilter{
		Search:     r.URL.Query().Get("search"),
		Department: r.URL.Query().Get("department"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}
	filter.Normalize()

	results, total, err := h.employeeService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, paginationMeta(filter.Page, filter.Limit, total))
}

// GetEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.employeeService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) GetMyEmployee(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.GetMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetEmployeeByUser implements EmployeeHandler
func (h *employeeHandlerImpl) GetEmployeeByUser(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.GetByUserID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CreateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.employeeService.Create(r.Context(), req)
	if err != nil {
		slog.Error("CreateEmployee service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Employee created successfully", result)
}

// UpdateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req employee.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.employeeService.Update(r.Context(), id, req)
	if err != nil {
		slog.Error("UpdateEmployee service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee updated successfully", result)
}

// UpdateOwnProfile implements EmployeeHandler
func (h *employeeHandlerImpl) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateOwnProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateOwnProfile decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.employeeService.UpdateOwnProfile(r.Context(), req)
	if err != nil {
		slog.Error("UpdateOwnProfile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated successfully", result)
}

// UploadDocument implements EmployeeHandler. Expects multipart fields file, name and type.
func (h *employeeHandlerImpl) UploadDocument(w http.ResponseWriter, r *http.Request) {
	file, header, ok := readFormFile(w, r, "file", employee.MaxDocumentSize)
	if !ok {
		return
	}
	defer file.Close()

	req := employee.UploadDocumentRequest{
		File:     file,
		FileName: filepath.Base(header.Filename),
		Size:     header.Size,
		Name:     r.FormValue("name"),
		Type:     employee.DocumentType(r.FormValue("type")),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	doc, err := h.employeeService.UploadDocument(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UploadDocument service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Document uploaded successfully", doc)
}

// DownloadDocument implements EmployeeHandler
func (h *employeeHandlerImpl) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	rc, doc, err := h.employeeService.OpenDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "docID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(doc.URL))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(doc.URL)))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("DownloadDocument copy error", "error", err, "document_id", doc.ID)
	}
}

// DeleteDocument implements EmployeeHandler
func (h *employeeHandlerImpl) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.employeeService.DeleteDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "docID")); err != nil {
		slog.Error("DeleteDocument service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Document deleted successfully", nil)
}

// UploadAvatar implements EmployeeHandler
func (h *employeeHandlerImpl) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	file, header, ok := readFormFile(w, r, "avatar", employee.MaxDocumentSize)
	if !ok {
		return
	}
	defer file.Close()

	req := employee.UploadAvatarRequest{
		File:     file,
		FileName: filepath.Base(header.Filename),
		Size:     header.Size,
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.employeeService.UploadAvatar(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UploadAvatar service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Avatar uploaded successfully", result)
}
