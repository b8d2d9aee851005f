package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type UserHandler interface {
	ListUsers(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	UpdateRole(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	ListActiveUsers(w http.ResponseWriter, r *http.Request)
}

type userHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &userHandlerImpl{userService: userService}
}

// ListUsers implements UserHandler. ?role= without paging returns the full role listing.
func (h *userHandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := user.UserFilter{
		Search: r.URL.Query().Get("search"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}

	if v := r.URL.Query().Get("role"); v != "" {
		role, ok := user.NormalizeRole(v)
		if !ok {
			response.HandleError(w, user.ErrInvalidRole)
			return
		}
		filter.Role = &role
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := user.Status(v)
		if !status.IsValid() {
			response.HandleError(w, user.ErrInvalidStatus)
			return
		}
		filter.Status = &status
	}
	filter.Normalize()

	users, total, err := h.userService.List(r.Context(), filter)
	if err != nil {
		slog.Error("ListUsers service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, users, paginationMeta(filter.Page, filter.Limit, total))
}

// ListActiveUsers implements UserHandler
func (h *userHandlerImpl) ListActiveUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetActive(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, users)
}

// GetUser implements UserHandler
func (h *userHandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "User ID is required", nil)
		return
	}

	result, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateUser implements UserHandler
func (h *userHandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateUser decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.userService.Create(r.Context(), req)
	if err != nil {
		slog.Error("CreateUser service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created successfully", result)
}

// UpdateUser implements UserHandler
func (h *userHandlerImpl) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req user.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateUser decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.userService.Update(r.Context(), id, req)
	if err != nil {
		slog.Error("UpdateUser service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User updated successfully", result)
}

// UpdateRole implements UserHandler
func (h *userHandlerImpl) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req user.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateRole decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.userService.UpdateRole(r.Context(), actor.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UpdateRole service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Role updated successfully", result)
}

// DeleteUser implements UserHandler
func (h *userHandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.userService.Delete(r.Context(), actor.UserID, chi.URLParam(r, "id")); err != nil {
		slog.Error("DeleteUser service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted successfully", nil)
}
