package employee_dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	empDashboard "github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee_dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const employeeID = "00000000-0000-7000-8000-0000000000e1"

type daysTaken map[string]int64

func (d daysTaken) GetLeaveDaysTaken(ctx context.Context, employeeID string, year int) (map[string]int64, error) {
	if year != 2025 {
		return nil, nil
	}
	return d, nil
}

type recentPayslips struct {
	payroll.PayslipRepository
	limit int
}

func (r *recentPayslips) GetPublishedByEmployeeID(ctx context.Context, employeeID string, limit int) ([]payroll.Payslip, error) {
	r.limit = limit
	return []payroll.Payslip{
		{ID: "p-3", EmployeeID: employeeID, Period: payroll.Period{Month: 2, Year: 2025}, Status: payroll.PayslipStatusPublished},
		{ID: "p-2", EmployeeID: employeeID, Period: payroll.Period{Month: 1, Year: 2025}, Status: payroll.PayslipStatusPublished},
	}, nil
}

type upcomingLeave struct {
	leave.LeaveRequestRepository
	from  time.Time
	limit int
}

func (u *upcomingLeave) GetUpcomingForEmployee(ctx context.Context, employeeID string, from time.Time, limit int) ([]leave.LeaveRequest, error) {
	u.from, u.limit = from, limit
	return []leave.LeaveRequest{{
		ID:         "l-1",
		EmployeeID: employeeID,
		Type:       leave.LeaveTypeVacation,
		StartDate:  time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC),
		Status:     leave.LeaveRequestStatusApproved,
	}}, nil
}

type employeeIllness struct {
	illness.IllnessRepository
}

func (employeeIllness) GetByEmployeeID(ctx context.Context, employeeID string) ([]illness.IllnessRecord, error) {
	return []illness.IllnessRecord{
		{ID: "i-1", EmployeeID: employeeID, Status: illness.IllnessStatusActive, Type: illness.IllnessTypeSickLeave},
		{ID: "i-0", EmployeeID: employeeID, Status: illness.IllnessStatusRecovered, Type: illness.IllnessTypeOther},
	}, nil
}

type unreadCounter struct {
	notification.Repository
}

func (unreadCounter) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	if userID == "user-1" {
		return 2, nil
	}
	return 0, nil
}

func TestEmployeeDashboardService_GetDashboard(t *testing.T) {
	userID := "user-1"
	employees := servicetest.NewEmployeeRepo(employee.Employee{
		ID:         employeeID,
		UserID:     &userID,
		FirstName:  "Ann",
		LastName:   "Lee",
		Position:   "Engineer",
		Department: "Engineering",
		HireDate:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	payslips := &recentPayslips{}
	leaves := &upcomingLeave{}

	svc := NewEmployeeDashboardService(
		daysTaken{"vacation": 5, "sick": 2},
		employees, payslips, leaves, employeeIllness{}, unreadCounter{},
	).(*EmployeeDashboardServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

	// no employee id in the token: resolved through the user id
	resp, err := svc.GetDashboard(servicetest.ActorContext(userID, user.RoleEmployee, ""))
	require.NoError(t, err)

	assert.Equal(t, "Ann Lee", resp.Profile.FullName)
	assert.Equal(t, "2023-06-01", resp.Profile.HireDate)
	assert.Len(t, resp.RecentPayslips, 2)
	assert.Equal(t, 3, payslips.limit)
	require.Len(t, resp.UpcomingLeave, 1)
	assert.Equal(t, 5, leaves.limit)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), leaves.from)
	require.Len(t, resp.ActiveIllness, 1)
	assert.Equal(t, "i-1", resp.ActiveIllness[0].ID)
	assert.Equal(t, 2025, resp.LeaveSummary.Year)
	assert.Equal(t, int64(7), resp.LeaveSummary.TotalDays)
	assert.Equal(t, 2, resp.UnreadNotifications)
}

func TestEmployeeDashboardService_NoEmployeeRecord(t *testing.T) {
	svc := NewEmployeeDashboardService(
		daysTaken{}, servicetest.NewEmployeeRepo(), &recentPayslips{}, &upcomingLeave{}, employeeIllness{}, unreadCounter{},
	)

	_, err := svc.GetDashboard(servicetest.ActorContext("user-admin", user.RoleAdmin, ""))
	assert.ErrorIs(t, err, empDashboard.ErrNoEmployeeRecord)
}
