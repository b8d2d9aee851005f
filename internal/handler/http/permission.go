package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PermissionHandler interface {
	Catalogue(w http.ResponseWriter, r *http.Request)
	GetUserPermissions(w http.ResponseWriter, r *http.Request)
	SetUserPermissions(w http.ResponseWriter, r *http.Request)
	GrantPermission(w http.ResponseWriter, r *http.Request)
	DenyPermission(w http.ResponseWriter, r *http.Request)
	ResetUserPermissions(w http.ResponseWriter, r *http.Request)
	ClearCache(w http.ResponseWriter, r *http.Request)
}

type permissionHandlerImpl struct {
	permissionService permission.Service
}

func NewPermissionHandler(permissionService permission.Service) PermissionHandler {
	return &permissionHandlerImpl{permissionService: permissionService}
}

// Catalogue implements PermissionHandler
func (h *permissionHandlerImpl) Catalogue(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.permissionService.Catalogue())
}

// GetUserPermissions implements PermissionHandler
func (h *permissionHandlerImpl) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	result, err := h.permissionService.GetUserPermissionDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// SetUserPermissions implements PermissionHandler
func (h *permissionHandlerImpl) SetUserPermissions(w http.ResponseWriter, r *http.Request) {
	var req permission.SetCustomPermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetUserPermissions decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.permissionService.SetUserCustomPermissions(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("SetUserPermissions service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permissions updated successfully", result)
}

// GrantPermission implements PermissionHandler
func (h *permissionHandlerImpl) GrantPermission(w http.ResponseWriter, r *http.Request) {
	h.changeOne(w, r, "GrantPermission", h.permissionService.GrantPermission)
}

// DenyPermission implements PermissionHandler
func (h *permissionHandlerImpl) DenyPermission(w http.ResponseWriter, r *http.Request) {
	h.changeOne(w, r, "DenyPermission", h.permissionService.DenyPermission)
}

func (h *permissionHandlerImpl) changeOne(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	apply func(ctx context.Context, userID string, p user.Permission) (permission.UserPermissionsResponse, error),
) {
	var req permission.PermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := apply(r.Context(), chi.URLParam(r, "id"), user.Permission(req.Permission))
	if err != nil {
		slog.Error(op+" service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permissions updated successfully", result)
}

// ResetUserPermissions implements PermissionHandler
func (h *permissionHandlerImpl) ResetUserPermissions(w http.ResponseWriter, r *http.Request) {
	if err := h.permissionService.ResetUserCustomPermissions(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("ResetUserPermissions service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Custom permissions reset", nil)
}

// ClearCache implements PermissionHandler. An empty body clears every entry.
func (h *permissionHandlerImpl) ClearCache(w http.ResponseWriter, r *http.Request) {
	var req permission.ClearCacheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("ClearCache decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	h.permissionService.ClearCache(r.Context(), req.UserID)
	response.SuccessWithMessage(w, "Permission cache cleared", nil)
}
