package report

import (
	"context"
	"io"
)

// ReportService defines the interface for report generation
type ReportService interface {
	GeneratePayrollSummaryReport(ctx context.Context, req PayrollSummaryReportRequest) (PayrollSummaryReport, error)
	GenerateLeaveSummaryReport(ctx context.Context, req LeaveSummaryReportRequest) (LeaveSummaryReport, error)
	GenerateNewHireReport(ctx context.Context, req NewHireReportRequest) (NewHireReport, error)

	// Workbook exports
	WritePayrollSummaryXLSX(w io.Writer, report PayrollSummaryReport) error
	WriteLeaveSummaryXLSX(w io.Writer, report LeaveSummaryReport) error
	WriteNewHireXLSX(w io.Writer, report NewHireReport) error
}
