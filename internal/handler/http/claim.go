package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/claim"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ClaimHandler interface {
	ListClaims(w http.ResponseWriter, r *http.Request)
	GetMyClaims(w http.ResponseWriter, r *http.Request)
	GetClaim(w http.ResponseWriter, r *http.Request)
	CreateClaim(w http.ResponseWriter, r *http.Request)
	ProcessClaim(w http.ResponseWriter, r *http.Request)
	RejectClaim(w http.ResponseWriter, r *http.Request)
	DeleteClaim(w http.ResponseWriter, r *http.Request)
	UploadAttachment(w http.ResponseWriter, r *http.Request)
}

type claimHandlerImpl struct {
	claimService claim.ClaimService
}

func NewClaimHandler(claimService claim.ClaimService) ClaimHandler {
	return &claimHandlerImpl{claimService: claimService}
}

// ListClaims implements ClaimHandler.
func (h *claimHandlerImpl) ListClaims(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	filter := claim.ClaimFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := claim.ClaimStatus(v)
		if !status.IsValid() {
			errs.Add("status", "status must be one of pending, processed, rejected")
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("type"); v != "" {
		claimType := claim.ClaimType(v)
		if !claimType.IsValid() {
			errs.Add("type", "type must be one of material, account, other")
		}
		filter.Type = &claimType
	}
	if v := r.URL.Query().Get("urgent"); v != "" {
		urgent, err := strconv.ParseBool(v)
		if err != nil {
			errs.Add("urgent", "urgent must be true or false")
		}
		filter.IsUrgent = &urgent
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}
	filter.Normalize()

	results, total, err := h.claimService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, paginationMeta(filter.Page, filter.Limit, total))
}

// GetMyClaims implements ClaimHandler.
func (h *claimHandlerImpl) GetMyClaims(w http.ResponseWriter, r *http.Request) {
	results, err := h.claimService.GetMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

// GetClaim implements ClaimHandler.
func (h *claimHandlerImpl) GetClaim(w http.ResponseWriter, r *http.Request) {
	result, err := h.claimService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CreateClaim implements ClaimHandler.
func (h *claimHandlerImpl) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var req claim.CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateClaim decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.claimService.Create(r.Context(), req)
	if err != nil {
		slog.Error("CreateClaim service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Claim submitted successfully", result)
}

// ProcessClaim implements ClaimHandler. The body is optional.
func (h *claimHandlerImpl) ProcessClaim(w http.ResponseWriter, r *http.Request) {
	var req claim.ProcessClaimRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("ProcessClaim decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.claimService.Process(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("ProcessClaim service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Claim processed", result)
}

// RejectClaim implements ClaimHandler.
func (h *claimHandlerImpl) RejectClaim(w http.ResponseWriter, r *http.Request) {
	var req claim.RejectClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RejectClaim decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.claimService.Reject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("RejectClaim service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Claim rejected", result)
}

// DeleteClaim implements ClaimHandler.
func (h *claimHandlerImpl) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	if err := h.claimService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("DeleteClaim service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Claim deleted successfully", nil)
}

// UploadAttachment implements ClaimHandler.
func (h *claimHandlerImpl) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	file, header, ok := readFormFile(w, r, "file", claim.MaxAttachmentSize)
	if !ok {
		return
	}
	defer file.Close()

	req := claim.UploadAttachmentRequest{
		File:     file,
		FileName: filepath.Base(header.Filename),
		Size:     header.Size,
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.claimService.UploadAttachment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UploadAttachment service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attachment uploaded", result)
}
