package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/report"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	reportRepo  report.ReportRepository
	permissions permission.Checker
	now         func() time.Time
}

func NewReportService(reportRepo report.ReportRepository, permissions permission.Checker) report.ReportService {
	return &ReportServiceImpl{
		reportRepo:  reportRepo,
		permissions: permissions,
		now:         time.Now,
	}
}

// authorize allows callers holding view_payroll_reports.
func (s *ReportServiceImpl) authorize(ctx context.Context) error {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, user.PermissionViewPayrollReports)
	if err != nil {
		return fmt.Errorf("failed to check permission %s: %w", user.PermissionViewPayrollReports, err)
	}
	if !ok {
		return report.ErrForbidden
	}
	return nil
}

func (s *ReportServiceImpl) generatedAt() string {
	return s.now().UTC().Format(time.RFC3339)
}

// GeneratePayrollSummaryReport generates the payroll summary report
func (s *ReportServiceImpl) GeneratePayrollSummaryReport(ctx context.Context, req report.PayrollSummaryReportRequest) (report.PayrollSummaryReport, error) {
	if err := s.authorize(ctx); err != nil {
		return report.PayrollSummaryReport{}, err
	}
	if err := req.Validate(); err != nil {
		return report.PayrollSummaryReport{}, err
	}

	rows, err := s.reportRepo.GetPayrollSummaryReport(ctx, req.Month, req.Year)
	if err != nil {
		return report.PayrollSummaryReport{}, fmt.Errorf("failed to get payroll data: %w", err)
	}
	if rows == nil {
		rows = []report.PayrollSummaryRow{}
	}

	gross, net, deductions := decimal.Zero, decimal.Zero, decimal.Zero
	for _, row := range rows {
		gross = gross.Add(row.GrossSalary)
		net = net.Add(row.NetSalary)
		deductions = deductions.Add(row.Deductions)
	}

	return report.PayrollSummaryReport{
		PeriodMonth:     req.Month,
		PeriodYear:      req.Year,
		GeneratedAt:     s.generatedAt(),
		Employees:       rows,
		TotalEmployees:  len(rows),
		TotalGross:      gross,
		TotalNet:        net,
		TotalDeductions: deductions,
	}, nil
}

// GenerateLeaveSummaryReport runs the three leave aggregates concurrently.
func (s *ReportServiceImpl) GenerateLeaveSummaryReport(ctx context.Context, req report.LeaveSummaryReportRequest) (report.LeaveSummaryReport, error) {
	if err := s.authorize(ctx); err != nil {
		return report.LeaveSummaryReport{}, err
	}
	if err := req.Validate(); err != nil {
		return report.LeaveSummaryReport{}, err
	}

	var (
		byStatus  map[string]int64
		byType    map[string]int64
		employees []report.LeaveDaysRow
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.reportRepo.GetLeaveStatusCounts(gCtx, req.Year)
		if err != nil {
			return fmt.Errorf("failed to count leave by status: %w", err)
		}
		byStatus = counts
		return nil
	})
	g.Go(func() error {
		counts, err := s.reportRepo.GetLeaveTypeCounts(gCtx, req.Year)
		if err != nil {
			return fmt.Errorf("failed to count leave by type: %w", err)
		}
		byType = counts
		return nil
	})
	g.Go(func() error {
		rows, err := s.reportRepo.GetLeaveDaysByEmployee(gCtx, req.Year)
		if err != nil {
			return fmt.Errorf("failed to get leave days: %w", err)
		}
		employees = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.LeaveSummaryReport{}, err
	}

	if byStatus == nil {
		byStatus = map[string]int64{}
	}
	if byType == nil {
		byType = map[string]int64{}
	}
	if employees == nil {
		employees = []report.LeaveDaysRow{}
	}

	var totalRequests, totalDays int64
	for _, n := range byStatus {
		totalRequests += n
	}
	for _, row := range employees {
		totalDays += row.DaysTaken
	}

	return report.LeaveSummaryReport{
		Year:        req.Year,
		GeneratedAt: s.generatedAt(),
		ByStatus:    byStatus,
		ByType:      byType,
		Employees:   employees,
		TotalDays:   totalDays,
		TotalLeaves: totalRequests,
	}, nil
}

// GenerateNewHireReport generates the new hire report
func (s *ReportServiceImpl) GenerateNewHireReport(ctx context.Context, req report.NewHireReportRequest) (report.NewHireReport, error) {
	if err := s.authorize(ctx); err != nil {
		return report.NewHireReport{}, err
	}
	if err := req.Validate(); err != nil {
		return report.NewHireReport{}, err
	}

	rows, err := s.reportRepo.GetNewHireReport(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return report.NewHireReport{}, fmt.Errorf("failed to get new hires: %w", err)
	}
	if rows == nil {
		rows = []report.NewHireRow{}
	}

	return report.NewHireReport{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		GeneratedAt: s.generatedAt(),
		TotalHires:  len(rows),
		Employees:   rows,
	}, nil
}
