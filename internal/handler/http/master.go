package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/department"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/team"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/master"
	"github.com/go-chi/chi/v5"
)

type MasterHandler interface {
	// Department handlers
	CreateDepartment(w http.ResponseWriter, r *http.Request)
	GetDepartment(w http.ResponseWriter, r *http.Request)
	ListDepartments(w http.ResponseWriter, r *http.Request)
	UpdateDepartment(w http.ResponseWriter, r *http.Request)
	DeleteDepartment(w http.ResponseWriter, r *http.Request)

	// Team handlers
	CreateTeam(w http.ResponseWriter, r *http.Request)
	GetTeam(w http.ResponseWriter, r *http.Request)
	ListTeams(w http.ResponseWriter, r *http.Request)
	GetMyTeams(w http.ResponseWriter, r *http.Request)
	UpdateTeam(w http.ResponseWriter, r *http.Request)
	SetTeamMembers(w http.ResponseWriter, r *http.Request)
	DeleteTeam(w http.ResponseWriter, r *http.Request)
	GetTeamAbsences(w http.ResponseWriter, r *http.Request)
}

type masterHandlerImpl struct {
	masterService master.MasterService
}

func NewMasterHandler(masterService master.MasterService) MasterHandler {
	return &masterHandlerImpl{
		masterService: masterService,
	}
}

// ==================== DEPARTMENT HANDLERS ====================

func (h *masterHandlerImpl) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req department.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.CreateDepartment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Department created successfully", result)
}

func (h *masterHandlerImpl) GetDepartment(w http.ResponseWriter, r *http.Request) {
	result, err := h.masterService.GetDepartment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *masterHandlerImpl) ListDepartments(w http.ResponseWriter, r *http.Request) {
	result, err := h.masterService.ListDepartments(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *masterHandlerImpl) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req department.UpdateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.masterService.UpdateDepartment(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department updated successfully", nil)
}

func (h *masterHandlerImpl) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.masterService.DeleteDepartment(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department deleted successfully", nil)
}

// ==================== TEAM HANDLERS ====================

func (h *masterHandlerImpl) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req team.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.CreateTeam(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Team created successfully", result)
}

func (h *masterHandlerImpl) GetTeam(w http.ResponseWriter, r *http.Request) {
	result, err := h.masterService.GetTeam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *masterHandlerImpl) ListTeams(w http.ResponseWriter, r *http.Request) {
	filter := team.TeamFilter{DepartmentID: optionalQuery(r, "department_id")}

	result, err := h.masterService.ListTeams(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *masterHandlerImpl) GetMyTeams(w http.ResponseWriter, r *http.Request) {
	result, err := h.masterService.GetMyTeams(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *masterHandlerImpl) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req team.UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.masterService.UpdateTeam(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Team updated successfully", nil)
}

func (h *masterHandlerImpl) SetTeamMembers(w http.ResponseWriter, r *http.Request) {
	var req team.SetMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.masterService.SetTeamMembers(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Team members updated", result)
}

func (h *masterHandlerImpl) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.masterService.DeleteTeam(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Team deleted successfully", nil)
}

// GetTeamAbsences reads ?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *masterHandlerImpl) GetTeamAbsences(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	start, ok := validator.IsValidDate(r.URL.Query().Get("start"))
	if !ok {
		errs.Add("start", "start must be in YYYY-MM-DD format")
	}
	end, ok := validator.IsValidDate(r.URL.Query().Get("end"))
	if !ok {
		errs.Add("end", "end must be in YYYY-MM-DD format")
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.masterService.GetTeamAbsences(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
