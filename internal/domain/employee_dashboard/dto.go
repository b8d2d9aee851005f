package employee_dashboard

import (
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
)

// EmployeeDashboardResponse is the combined response for the employee dashboard
type EmployeeDashboardResponse struct {
	Profile             ProfileSummary                  `json:"profile"`
	RecentPayslips      []payroll.PayslipResponse       `json:"recent_payslips"`
	UpcomingLeave       []leave.LeaveRequestResponse    `json:"upcoming_leave"`
	LeaveSummary        LeaveSummaryResponse            `json:"leave_summary"`
	ActiveIllness       []illness.IllnessRecordResponse `json:"active_illness"`
	UnreadNotifications int                             `json:"unread_notifications"`
}

// ProfileSummary is the header card of the dashboard
type ProfileSummary struct {
	EmployeeID     string  `json:"employee_id"`
	FullName       string  `json:"full_name"`
	Position       string  `json:"position"`
	Department     string  `json:"department"`
	HireDate       string  `json:"hire_date"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	DocumentCount  int     `json:"document_count"`
}

func NewProfileSummary(e employee.Employee) ProfileSummary {
	return ProfileSummary{
		EmployeeID:     e.ID,
		FullName:       e.FullName(),
		Position:       e.Position,
		Department:     e.Department,
		HireDate:       e.HireDate.Format("2006-01-02"),
		ProfilePicture: e.ProfilePicture,
		DocumentCount:  len(e.Documents),
	}
}

// LeaveSummaryResponse is approved leave days taken this year by type
type LeaveSummaryResponse struct {
	Year      int              `json:"year"`
	DaysTaken map[string]int64 `json:"days_taken"`
	TotalDays int64            `json:"total_days"`
}
