package employee_dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	empDashboard "github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee_dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

const (
	recentPayslipLimit = 3
	upcomingLeaveLimit = 5
)

type EmployeeDashboardServiceImpl struct {
	empDashboard.EmployeeDashboardRepository
	employeeRepo     employee.EmployeeRepository
	payslipRepo      payroll.PayslipRepository
	leaveRepo        leave.LeaveRequestRepository
	illnessRepo      illness.IllnessRepository
	notificationRepo notification.Repository
	now              func() time.Time
}

func NewEmployeeDashboardService(
	repo empDashboard.EmployeeDashboardRepository,
	employeeRepo employee.EmployeeRepository,
	payslipRepo payroll.PayslipRepository,
	leaveRepo leave.LeaveRequestRepository,
	illnessRepo illness.IllnessRepository,
	notificationRepo notification.Repository,
) empDashboard.EmployeeDashboardService {
	return &EmployeeDashboardServiceImpl{
		EmployeeDashboardRepository: repo,
		employeeRepo:                employeeRepo,
		payslipRepo:                 payslipRepo,
		leaveRepo:                   leaveRepo,
		illnessRepo:                 illnessRepo,
		notificationRepo:            notificationRepo,
		now:                         time.Now,
	}
}

// getEmployee resolves the caller's employee record, preferring the id carried in the token.
func (s *EmployeeDashboardServiceImpl) getEmployee(ctx context.Context, actor jwt.Actor) (employee.Employee, error) {
	var (
		emp employee.Employee
		err error
	)
	if actor.EmployeeID != "" {
		emp, err = s.employeeRepo.GetByID(ctx, actor.EmployeeID)
	} else {
		emp, err = s.employeeRepo.GetByUserID(ctx, actor.UserID)
	}
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, empDashboard.ErrNoEmployeeRecord
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// GetDashboard returns combined employee dashboard data
func (s *EmployeeDashboardServiceImpl) GetDashboard(ctx context.Context) (*empDashboard.EmployeeDashboardResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	emp, err := s.getEmployee(ctx, actor)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var (
		payslips []payroll.Payslip
		upcoming []leave.LeaveRequest
		active   []illness.IllnessRecord
		taken    map[string]int64
		unread   int
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Latest published payslips
	g.Go(func() error {
		data, err := s.payslipRepo.GetPublishedByEmployeeID(gCtx, emp.ID, recentPayslipLimit)
		if err != nil {
			return fmt.Errorf("recent payslips: %w", err)
		}
		payslips = data
		return nil
	})

	// 2. Pending and approved leave that has not ended
	g.Go(func() error {
		data, err := s.leaveRepo.GetUpcomingForEmployee(gCtx, emp.ID, today, upcomingLeaveLimit)
		if err != nil {
			return fmt.Errorf("upcoming leave: %w", err)
		}
		upcoming = data
		return nil
	})

	// 3. Active illness
	g.Go(func() error {
		records, err := s.illnessRepo.GetByEmployeeID(gCtx, emp.ID)
		if err != nil {
			return fmt.Errorf("illness records: %w", err)
		}
		for _, r := range records {
			if r.Status == illness.IllnessStatusActive {
				active = append(active, r)
			}
		}
		return nil
	})

	// 4. Leave days taken this year
	g.Go(func() error {
		data, err := s.GetLeaveDaysTaken(gCtx, emp.ID, today.Year())
		if err != nil {
			return fmt.Errorf("leave days taken: %w", err)
		}
		taken = data
		return nil
	})

	// 5. Unread notifications
	g.Go(func() error {
		n, err := s.notificationRepo.GetUnreadCount(gCtx, actor.UserID)
		if err != nil {
			return fmt.Errorf("unread notifications: %w", err)
		}
		unread = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if taken == nil {
		taken = map[string]int64{}
	}
	var total int64
	for _, days := range taken {
		total += days
	}

	return &empDashboard.EmployeeDashboardResponse{
		Profile:        empDashboard.NewProfileSummary(emp),
		RecentPayslips: payroll.ToResponses(payslips),
		UpcomingLeave:  leave.ToResponses(upcoming),
		LeaveSummary: empDashboard.LeaveSummaryResponse{
			Year:      today.Year(),
			DaysTaken: taken,
			TotalDays: total,
		},
		ActiveIllness:       illness.ToResponses(active),
		UnreadNotifications: unread,
	}, nil
}
