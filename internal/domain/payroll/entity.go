package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType enum
type ItemType string

const (
	ItemTypeEarning   ItemType = "earning"
	ItemTypeDeduction ItemType = "deduction"
)

func (t ItemType) IsValid() bool {
	return t == ItemTypeEarning || t == ItemTypeDeduction
}

// PayslipItem is one line of a payslip, stored as JSONB.
type PayslipItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Type   ItemType        `json:"type"`
}

// PayslipStatus enum
type PayslipStatus string

const (
	PayslipStatusDraft     PayslipStatus = "draft"
	PayslipStatusPublished PayslipStatus = "published"
)

func (s PayslipStatus) IsValid() bool {
	return s == PayslipStatusDraft || s == PayslipStatusPublished
}

type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// MonthName returns the English month name, e.g. "March".
func (p Period) MonthName() string {
	return time.Month(p.Month).String()
}

type Payslip struct {
	ID               string
	EmployeeID       string
	Period           Period
	IssueDate        time.Time
	GrossSalary      decimal.Decimal
	NetSalary        decimal.Decimal
	Items            []PayslipItem
	PDFURL           *string
	Status           PayslipStatus
	ViewedByEmployee bool
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName   *string
	EmployeeUserID *string
}

func (p Payslip) IsPublished() bool {
	return p.Status == PayslipStatusPublished
}

// ComputeTotals returns gross as the sum of earnings and net as gross minus deductions.
func ComputeTotals(items []PayslipItem) (gross, net decimal.Decimal) {
	gross = decimal.Zero
	deductions := decimal.Zero
	for _, item := range items {
		switch item.Type {
		case ItemTypeEarning:
			gross = gross.Add(item.Amount)
		case ItemTypeDeduction:
			deductions = deductions.Add(item.Amount)
		}
	}
	return gross.Round(2), gross.Sub(deductions).Round(2)
}

// StoragePath is where a payslip's PDF lives in file storage.
func StoragePath(payslipID string) string {
	return "payslips/" + payslipID + ".pdf"
}
