package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func validateItems(errs *validator.ValidationErrors, items []ItemRequest) []Item {
	if len(items) == 0 {
		errs.Add("items", "at least one item is required")
		return nil
	}
	out := make([]Item, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if validator.IsEmpty(item.Description) {
			errs.Add(field+".description", "description is required")
		}
		if !item.Quantity.IsPositive() {
			errs.Add(field+".quantity", "quantity must be greater than 0")
		}
		if item.UnitPrice.IsNegative() {
			errs.Add(field+".unit_price", "unit_price must be non-negative")
		}
		out = append(out, Item{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}

func validateTaxRate(errs *validator.ValidationErrors, rate decimal.Decimal) {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		errs.Add("tax_rate", "tax_rate must be between 0 and 100")
	}
}

type CreateInvoiceRequest struct {
	EmployeeID string          `json:"employee_id"`
	Items      []ItemRequest   `json:"items"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	DueDate    string          `json:"due_date"`
	Notes      *string         `json:"notes,omitempty"`

	ParsedItems []Item    `json:"-"`
	Due         time.Time `json:"-"`
}

func (r *CreateInvoiceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	r.ParsedItems = validateItems(&errs, r.Items)
	validateTaxRate(&errs, r.TaxRate)

	due, ok := validator.IsValidDate(r.DueDate)
	if !ok {
		errs.Add("due_date", "due_date must be in YYYY-MM-DD format")
	}
	r.Due = due

	if r.Notes != nil && len(*r.Notes) > 2000 {
		errs.Add("notes", "notes must not exceed 2000 characters")
	}

	return errs.Err()
}

type UpdateInvoiceRequest struct {
	Items   []ItemRequest    `json:"items,omitempty"`
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`
	DueDate *string          `json:"due_date,omitempty"`
	Notes   *string          `json:"notes,omitempty"`

	ParsedItems []Item     `json:"-"`
	Due         *time.Time `json:"-"`
}

func (r *UpdateInvoiceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Items == nil && r.TaxRate == nil && r.DueDate == nil && r.Notes == nil {
		errs.Add("request", "at least one field must be provided")
		return errs
	}
	if r.Items != nil {
		r.ParsedItems = validateItems(&errs, r.Items)
	}
	if r.TaxRate != nil {
		validateTaxRate(&errs, *r.TaxRate)
	}
	if r.DueDate != nil {
		if due, ok := validator.IsValidDate(*r.DueDate); ok {
			r.Due = &due
		} else {
			errs.Add("due_date", "due_date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Status = Status(strings.ToLower(strings.TrimSpace(string(r.Status))))
	if !r.Status.IsValid() {
		errs.Add("status", "status must be one of draft, sent, paid, overdue, cancelled")
	}

	return errs.Err()
}

type InvoiceFilter struct {
	Status     *Status
	EmployeeID *string
	Page       int
	Limit      int
}

func (f *InvoiceFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type InvoiceResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	Status        Status          `json:"status"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
	Items         []Item          `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (inv Invoice) ToResponse() InvoiceResponse {
	items := inv.Items
	if items == nil {
		items = []Item{}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		EmployeeID:    inv.EmployeeID,
		EmployeeName:  inv.EmployeeName,
		Status:        inv.Status,
		IssueDate:     inv.IssueDate.Format("2006-01-02"),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		Items:         items,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func ToResponses(invoices []Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.ToResponse())
	}
	return out
}
