package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// PayslipRenderer draws a one-page A4 payslip.
type PayslipRenderer struct {
	companyName string
	currency    string
}

func NewPayslipRenderer(companyName, currency string) *PayslipRenderer {
	return &PayslipRenderer{companyName: companyName, currency: currency}
}

var _ payroll.PDFRenderer = (*PayslipRenderer)(nil)

func (r *PayslipRenderer) RenderPayslip(p payroll.Payslip, employeeName string, issuedAt time.Time) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(fmt.Sprintf("Payslip %s %d", p.Period.MonthName(), p.Period.Year), true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, tr(r.companyName))
	doc.Ln(10)
	doc.SetFont("Helvetica", "B", 13)
	doc.Cell(0, 8, fmt.Sprintf("Payslip - %s %d", p.Period.MonthName(), p.Period.Year))
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 7, tr("Employee: "+employeeName))
	doc.Ln(6)
	doc.Cell(0, 7, "Issue date: "+p.IssueDate.Format("2006-01-02"))
	doc.Ln(6)
	doc.Cell(0, 7, "Reference: "+p.ID)
	doc.Ln(10)

	r.section(doc, tr, "Earnings", p.Items, payroll.ItemTypeEarning)
	r.section(doc, tr, "Deductions", p.Items, payroll.ItemTypeDeduction)

	doc.SetFont("Helvetica", "B", 11)
	r.row(doc, "Gross salary", p.GrossSalary)
	r.row(doc, "Net salary", p.NetSalary)
	doc.Ln(12)

	doc.SetFont("Helvetica", "I", 8)
	doc.Cell(0, 5, "Generated "+issuedAt.UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PayslipRenderer) section(doc *gofpdf.Fpdf, tr func(string) string, title string, items []payroll.PayslipItem, kind payroll.ItemType) {
	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(237, 242, 247)
	doc.CellFormat(0, 7, title, "", 1, "L", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	empty := true
	for _, item := range items {
		if item.Type != kind {
			continue
		}
		empty = false
		r.row(doc, tr(item.Label), item.Amount)
	}
	if empty {
		doc.CellFormat(0, 6, "-", "", 1, "L", false, 0, "")
	}
	doc.Ln(3)
}

func (r *PayslipRenderer) row(doc *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	doc.CellFormat(130, 6, label, "", 0, "L", false, 0, "")
	doc.CellFormat(0, 6, amount.StringFixed(2)+" "+r.currency, "", 1, "R", false, 0, "")
}
