package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/dashboard"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

// newHireWindow is how far back "new employees" reaches.
const newHireWindow = 30 * 24 * time.Hour

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	illnessRepo      illness.IllnessRepository
	notificationRepo notification.Repository
	permissions      permission.Checker
	now              func() time.Time
}

func NewDashboardService(
	repo dashboard.DashboardRepository,
	illnessRepo illness.IllnessRepository,
	notificationRepo notification.Repository,
	permissions permission.Checker,
) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		illnessRepo:         illnessRepo,
		notificationRepo:    notificationRepo,
		permissions:         permissions,
		now:                 time.Now,
	}
}

// GetDashboard returns combined dashboard data using parallel goroutines.
// Any failing query fails the whole dashboard.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, user.PermissionViewAllEmployees)
	if err != nil {
		return nil, fmt.Errorf("failed to check permission %s: %w", user.PermissionViewAllEmployees, err)
	}
	if !ok {
		return nil, dashboard.ErrForbidden
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	year, month := now.Year(), int(now.Month())

	var (
		employees dashboard.EmployeeSummaryResponse
		leaves    dashboard.LeaveSummaryResponse
		illnesses dashboard.IllnessSummaryResponse
		payslips  dashboard.PayslipSummaryResponse
		invoices  map[string]dashboard.InvoiceTotal
		unread    int
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Headcount and departments
	g.Go(func() error {
		stats, err := s.GetEmployeeSummary(gCtx, today.Add(-newHireWindow))
		if err != nil {
			return fmt.Errorf("employee summary: %w", err)
		}
		byDepartment := stats.ByDepartment
		if byDepartment == nil {
			byDepartment = map[string]int64{}
		}
		employees = dashboard.EmployeeSummaryResponse{
			TotalEmployee: stats.Total,
			NewEmployee:   stats.NewHires,
			ByDepartment:  byDepartment,
		}
		return nil
	})

	// 2. Leave queue
	g.Go(func() error {
		stats, err := s.GetLeaveSummary(gCtx, today)
		if err != nil {
			return fmt.Errorf("leave summary: %w", err)
		}
		leaves = dashboard.LeaveSummaryResponse{
			Pending:       stats.Pending,
			ApprovedToday: stats.ApprovedToday,
		}
		return nil
	})

	// 3. Illness
	g.Go(func() error {
		stats, err := s.illnessRepo.GetStatistics(gCtx)
		if err != nil {
			return fmt.Errorf("illness statistics: %w", err)
		}
		byType := make(map[string]int64, len(stats.ByType))
		for t, n := range stats.ByType {
			byType[string(t)] = n
		}
		illnesses = dashboard.IllnessSummaryResponse{
			TotalActive:    stats.TotalActive,
			TotalRecovered: stats.TotalRecovered,
			TotalChronic:   stats.TotalChronic,
			ByType:         byType,
		}
		return nil
	})

	// 4. Payslips of the current month
	g.Go(func() error {
		stats, err := s.GetPayslipSummary(gCtx, year, month)
		if err != nil {
			return fmt.Errorf("payslip summary: %w", err)
		}
		payslips = dashboard.PayslipSummaryResponse{
			Month:     month,
			Year:      year,
			Draft:     stats.Draft,
			Published: stats.Published,
			Viewed:    stats.Viewed,
		}
		return nil
	})

	// 5. Invoices by status
	g.Go(func() error {
		totals, err := s.GetInvoiceTotals(gCtx)
		if err != nil {
			return fmt.Errorf("invoice totals: %w", err)
		}
		if totals == nil {
			totals = map[string]dashboard.InvoiceTotal{}
		}
		invoices = totals
		return nil
	})

	// 6. Caller's unread notifications
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

	return &dashboard.DashboardResponse{
		Employees:     employees,
		Leave:         leaves,
		Illness:       illnesses,
		Payslips:      payslips,
		Invoices:      invoices,
		UnreadNotices: unread,
	}, nil
}
