package http

import (
	"net/http"

	empDashboard "github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee_dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
)

type EmployeeDashboardHandler interface {
	// GetDashboard returns the caller's own overview
	GetDashboard(w http.ResponseWriter, r *http.Request)
}

type employeeDashboardHandlerImpl struct {
	service empDashboard.EmployeeDashboardService
}

func NewEmployeeDashboardHandler(service empDashboard.EmployeeDashboardService) EmployeeDashboardHandler {
	return &employeeDashboardHandlerImpl{service: service}
}

// GetDashboard handles GET /dashboard/me
// Profile summary, last three published payslips, upcoming leave, active illness and unread count.
func (h *employeeDashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetDashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
