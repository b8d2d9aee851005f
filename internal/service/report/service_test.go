package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/report"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/servicetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeReportRepo struct {
	hireRange [2]string
}

func (f *fakeReportRepo) GetPayrollSummaryReport(ctx context.Context, month, year int) ([]report.PayrollSummaryRow, error) {
	if month != 3 || year != 2025 {
		return nil, nil
	}
	return []report.PayrollSummaryRow{
		{EmployeeID: "e-1", EmployeeName: "Ann Lee", Department: "Engineering",
			GrossSalary: decimal.RequireFromString("4000"), NetSalary: decimal.RequireFromString("3100.50"), Deductions: decimal.RequireFromString("899.50")},
		{EmployeeID: "e-2", EmployeeName: "Bo Chen", Department: "Sales",
			GrossSalary: decimal.RequireFromString("3000"), NetSalary: decimal.RequireFromString("2400"), Deductions: decimal.RequireFromString("600")},
	}, nil
}

func (f *fakeReportRepo) GetLeaveStatusCounts(ctx context.Context, year int) (map[string]int64, error) {
	return map[string]int64{"approved": 4, "pending": 1, "rejected": 2}, nil
}

func (f *fakeReportRepo) GetLeaveTypeCounts(ctx context.Context, year int) (map[string]int64, error) {
	return map[string]int64{"vacation": 5, "sick": 2}, nil
}

func (f *fakeReportRepo) GetLeaveDaysByEmployee(ctx context.Context, year int) ([]report.LeaveDaysRow, error) {
	return []report.LeaveDaysRow{
		{EmployeeID: "e-1", EmployeeName: "Ann Lee", Requests: 3, DaysTaken: 9},
		{EmployeeID: "e-2", EmployeeName: "Bo Chen", Requests: 1, DaysTaken: 2},
	}, nil
}

func (f *fakeReportRepo) GetNewHireReport(ctx context.Context, startDate, endDate string) ([]report.NewHireRow, error) {
	f.hireRange = [2]string{startDate, endDate}
	return []report.NewHireRow{
		{EmployeeID: "e-3", FullName: "Cy Diaz", HireDate: "2025-02-03", HasAccount: true},
		{EmployeeID: "e-4", FullName: "Di Ek", HireDate: "2025-02-17"},
	}, nil
}

func newFixture() (*ReportServiceImpl, *fakeReportRepo) {
	repo := &fakeReportRepo{}
	svc := NewReportService(repo, &servicetest.Checker{}).(*ReportServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC) }
	return svc, repo
}

func hrCtx() context.Context { return servicetest.ActorContext("user-hr", user.RoleHRAdvisor, "") }

func TestReportService_RequiresPayrollReports(t *testing.T) {
	svc, _ := newFixture()
	ctx := servicetest.ActorContext("user-1", user.RoleEmployee, "e-1")

	_, err := svc.GeneratePayrollSummaryReport(ctx, report.PayrollSummaryReportRequest{Month: 3, Year: 2025})
	assert.ErrorIs(t, err, report.ErrForbidden)
	_, err = svc.GenerateLeaveSummaryReport(ctx, report.LeaveSummaryReportRequest{Year: 2025})
	assert.ErrorIs(t, err, report.ErrForbidden)
	_, err = svc.GenerateNewHireReport(ctx, report.NewHireReportRequest{StartDate: "2025-01-01", EndDate: "2025-03-31"})
	assert.ErrorIs(t, err, report.ErrForbidden)
}

func TestReportService_PayrollSummary(t *testing.T) {
	svc, _ := newFixture()

	r, err := svc.GeneratePayrollSummaryReport(hrCtx(), report.PayrollSummaryReportRequest{Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 2, r.TotalEmployees)
	assert.True(t, r.TotalGross.Equal(decimal.RequireFromString("7000")))
	assert.True(t, r.TotalNet.Equal(decimal.RequireFromString("5500.50")))
	assert.True(t, r.TotalDeductions.Equal(decimal.RequireFromString("1499.50")))
	assert.Equal(t, "2025-04-01T08:00:00Z", r.GeneratedAt)

	empty, err := svc.GeneratePayrollSummaryReport(hrCtx(), report.PayrollSummaryReportRequest{Month: 4, Year: 2025})
	require.NoError(t, err)
	assert.NotNil(t, empty.Employees)
	assert.True(t, empty.TotalGross.IsZero())

	_, err = svc.GeneratePayrollSummaryReport(hrCtx(), report.PayrollSummaryReportRequest{Month: 13, Year: 2025})
	assert.Error(t, err)
}

func TestReportService_LeaveSummary(t *testing.T) {
	svc, _ := newFixture()

	r, err := svc.GenerateLeaveSummaryReport(hrCtx(), report.LeaveSummaryReportRequest{Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.TotalLeaves)
	assert.Equal(t, int64(11), r.TotalDays)
	assert.Equal(t, int64(5), r.ByType["vacation"])
}

func TestReportService_NewHires(t *testing.T) {
	svc, repo := newFixture()

	_, err := svc.GenerateNewHireReport(hrCtx(), report.NewHireReportRequest{StartDate: "2025-03-01", EndDate: "2025-02-01"})
	assert.Error(t, err)

	r, err := svc.GenerateNewHireReport(hrCtx(), report.NewHireReportRequest{StartDate: "2025-02-01", EndDate: "2025-02-28"})
	require.NoError(t, err)
	assert.Equal(t, 2, r.TotalHires)
	assert.Equal(t, [2]string{"2025-02-01", "2025-02-28"}, repo.hireRange)
}

func TestReportService_XLSX(t *testing.T) {
	svc, _ := newFixture()

	payroll, err := svc.GeneratePayrollSummaryReport(hrCtx(), report.PayrollSummaryReportRequest{Month: 3, Year: 2025})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, svc.WritePayrollSummaryXLSX(&buf, payroll))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Payroll", "Totals"}, f.GetSheetList())
	v, err := f.GetCellValue("Payroll", "E2")
	require.NoError(t, err)
	assert.Equal(t, "3100.50", v)
	v, err = f.GetCellValue("Totals", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03", v)

	leaves, err := svc.GenerateLeaveSummaryReport(hrCtx(), report.LeaveSummaryReportRequest{Year: 2025})
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, svc.WriteLeaveSummaryXLSX(&buf, leaves))
	lf, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer lf.Close()
	// keys are written sorted
	v, err = lf.GetCellValue("By Status", "A2")
	require.NoError(t, err)
	assert.Equal(t, "approved", v)

	hires, err := svc.GenerateNewHireReport(hrCtx(), report.NewHireReportRequest{StartDate: "2025-02-01", EndDate: "2025-02-28"})
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, svc.WriteNewHireXLSX(&buf, hires))
	hf, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer hf.Close()
	v, err = hf.GetCellValue("New Hires", "F2")
	require.NoError(t, err)
	assert.Equal(t, "yes", v)
}
