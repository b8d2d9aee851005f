package report

import (
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ========================================
// PAYROLL SUMMARY REPORT
// ========================================

type PayrollSummaryReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *PayrollSummaryReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollSummaryRow struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Department   string          `json:"department"`
	GrossSalary  decimal.Decimal `json:"gross_salary"`
	NetSalary    decimal.Decimal `json:"net_salary"`
	Deductions   decimal.Decimal `json:"deductions"`
}

type PayrollSummaryReport struct {
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	GeneratedAt string `json:"generated_at"`

	Employees []PayrollSummaryRow `json:"employees"`

	TotalEmployees  int             `json:"total_employees"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalNet        decimal.Decimal `json:"total_net"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
}

// ========================================
// LEAVE SUMMARY REPORT
// ========================================

type LeaveSummaryReportRequest struct {
	Year int `json:"year"`
}

func (r *LeaveSummaryReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveDaysRow struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department"`
	Requests     int64  `json:"requests"`
	DaysTaken    int64  `json:"days_taken"`
}

type LeaveSummaryReport struct {
	Year        int    `json:"year"`
	GeneratedAt string `json:"generated_at"`

	ByStatus    map[string]int64 `json:"by_status"`
	ByType      map[string]int64 `json:"by_type"`
	Employees   []LeaveDaysRow   `json:"employees"`
	TotalDays   int64            `json:"total_days"`
	TotalLeaves int64            `json:"total_requests"`
}

// ========================================
// NEW HIRE REPORT
// ========================================

type NewHireReportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *NewHireReportRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: ErrInvalidDateRange.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type NewHireRow struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	Department string `json:"department"`
	HireDate   string `json:"hire_date"`
	HasAccount bool   `json:"has_account"`
}

type NewHireReport struct {
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	GeneratedAt string       `json:"generated_at"`
	TotalHires  int          `json:"total_hires"`
	Employees   []NewHireRow `json:"employees"`
}

