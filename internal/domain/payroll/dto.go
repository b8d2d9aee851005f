package payroll

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const MaxPDFSize = 10 << 20

type PayslipItemRequest struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

func validateItems(errs *validator.ValidationErrors, items []PayslipItemRequest) []PayslipItem {
	if len(items) == 0 {
		errs.Add("items", "at least one item is required")
		return nil
	}
	out := make([]PayslipItem, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if validator.IsEmpty(item.Label) {
			errs.Add(field+".label", "label is required")
		}
		if item.Amount.IsNegative() {
			errs.Add(field+".amount", "amount must be non-negative")
		}
		t := ItemType(strings.ToLower(item.Type))
		if !t.IsValid() {
			errs.Add(field+".type", "type must be earning or deduction")
		}
		out = append(out, PayslipItem{Label: strings.TrimSpace(item.Label), Amount: item.Amount.Round(2), Type: t})
	}
	return out
}

type CreatePayslipRequest struct {
	EmployeeID string               `json:"employee_id"`
	Month      int                  `json:"month"`
	Year       int                  `json:"year"`
	IssueDate  *string              `json:"issue_date,omitempty"`
	Items      []PayslipItemRequest `json:"items"`

	ParsedItems []PayslipItem `json:"-"`
	Issued      time.Time     `json:"-"`
}

func (r *CreatePayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if !validator.IsValidMonth(r.Month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if !validator.IsValidYear(r.Year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	r.Issued = time.Now().UTC().Truncate(24 * time.Hour)
	if r.IssueDate != nil {
		if t, ok := validator.IsValidDate(*r.IssueDate); ok {
			r.Issued = t
		} else {
			errs.Add("issue_date", "issue_date must be in YYYY-MM-DD format")
		}
	}
	r.ParsedItems = validateItems(&errs, r.Items)

	return errs.Err()
}

type UpdatePayslipRequest struct {
	IssueDate *string              `json:"issue_date,omitempty"`
	Items     []PayslipItemRequest `json:"items,omitempty"`

	ParsedItems []PayslipItem `json:"-"`
	Issued      *time.Time    `json:"-"`
}

func (r *UpdatePayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.IssueDate == nil && r.Items == nil {
		errs.Add("request", "at least one of issue_date or items must be provided")
		return errs
	}
	if r.IssueDate != nil {
		if t, ok := validator.IsValidDate(*r.IssueDate); ok {
			r.Issued = &t
		} else {
			errs.Add("issue_date", "issue_date must be in YYYY-MM-DD format")
		}
	}
	if r.Items != nil {
		r.ParsedItems = validateItems(&errs, r.Items)
	}

	return errs.Err()
}

type UploadPDFRequest struct {
	File     io.Reader
	FileName string
	Size     int64
}

func (r *UploadPDFRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs.Add("file", "file is required")
	}
	if strings.ToLower(filepath.Ext(r.FileName)) != ".pdf" {
		errs.Add("file", "file must be a PDF")
	}
	if r.Size > MaxPDFSize {
		errs.Add("file", "file must not exceed 10 MiB")
	}

	return errs.Err()
}

type PayslipFilter struct {
	Status     *PayslipStatus
	Year       *int
	Month      *int
	EmployeeID *string
	Page       int
	Limit      int
}

func (f *PayslipFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type PayslipResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     *string         `json:"employee_name,omitempty"`
	Period           Period          `json:"period"`
	IssueDate        string          `json:"issue_date"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	Items            []PayslipItem   `json:"items"`
	HasPDF           bool            `json:"has_pdf"`
	Status           PayslipStatus   `json:"status"`
	ViewedByEmployee bool            `json:"viewed_by_employee"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (p Payslip) ToResponse() PayslipResponse {
	items := p.Items
	if items == nil {
		items = []PayslipItem{}
	}
	return PayslipResponse{
		ID:               p.ID,
		EmployeeID:       p.EmployeeID,
		EmployeeName:     p.EmployeeName,
		Period:           p.Period,
		IssueDate:        p.IssueDate.Format("2006-01-02"),
		GrossSalary:      p.GrossSalary,
		NetSalary:        p.NetSalary,
		Items:            items,
		HasPDF:           p.PDFURL != nil,
		Status:           p.Status,
		ViewedByEmployee: p.ViewedByEmployee,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func ToResponses(payslips []Payslip) []PayslipResponse {
	out := make([]PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		out = append(out, p.ToResponse())
	}
	return out
}
