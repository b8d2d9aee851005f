package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/report"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
)

type ReportHandler interface {
	// Payroll Summary Report
	GetPayrollSummaryReport(w http.ResponseWriter, r *http.Request)

	// Leave Summary Report
	GetLeaveSummaryReport(w http.ResponseWriter, r *http.Request)

	// New Hire Report
	GetNewHireReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx"
}

// writeWorkbook streams a generated workbook as an attachment.
func writeWorkbook(w http.ResponseWriter, filename string, write func(w http.ResponseWriter) error) {
	w.Header().Set("Content-Type", report.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := write(w); err != nil {
		slog.Error("Report workbook write error", "error", err, "filename", filename)
	}
}

// GetPayrollSummaryReport handles GET /reports/payroll
func (h *reportHandlerImpl) GetPayrollSummaryReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		response.BadRequest(w, "invalid month parameter", nil)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	req := report.PayrollSummaryReportRequest{
		Month: month,
		Year:  year,
	}

	result, err := h.reportService.GeneratePayrollSummaryReport(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if wantsXLSX(r) {
		writeWorkbook(w, fmt.Sprintf("payroll-%04d-%02d.xlsx", year, month), func(w http.ResponseWriter) error {
			return h.reportService.WritePayrollSummaryXLSX(w, result)
		})
		return
	}

	response.Success(w, result)
}

// GetLeaveSummaryReport handles GET /reports/leave
func (h *reportHandlerImpl) GetLeaveSummaryReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	result, err := h.reportService.GenerateLeaveSummaryReport(ctx, report.LeaveSummaryReportRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if wantsXLSX(r) {
		writeWorkbook(w, fmt.Sprintf("leave-%04d.xlsx", year), func(w http.ResponseWriter) error {
			return h.reportService.WriteLeaveSummaryXLSX(w, result)
		})
		return
	}

	response.Success(w, result)
}

// GetNewHireReport handles GET /reports/new-hires?start_date=&end_date=
func (h *reportHandlerImpl) GetNewHireReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := report.NewHireReportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.reportService.GenerateNewHireReport(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if wantsXLSX(r) {
		writeWorkbook(w, fmt.Sprintf("new-hires-%s-%s.xlsx", req.StartDate, req.EndDate), func(w http.ResponseWriter) error {
			return h.reportService.WriteNewHireXLSX(w, result)
		})
		return
	}

	response.Success(w, result)
}
