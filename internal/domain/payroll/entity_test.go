package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	items := []PayslipItem{
		{Label: "Base salary", Amount: decimal.RequireFromString("3000.00"), Type: ItemTypeEarning},
		{Label: "Bonus", Amount: decimal.RequireFromString("250.50"), Type: ItemTypeEarning},
		{Label: "Tax", Amount: decimal.RequireFromString("600.10"), Type: ItemTypeDeduction},
	}

	gross, net := ComputeTotals(items)
	assert.True(t, gross.Equal(decimal.RequireFromString("3250.50")), "gross = %s", gross)
	assert.True(t, net.Equal(decimal.RequireFromString("2650.40")), "net = %s", net)

	gross, net = ComputeTotals(nil)
	assert.True(t, gross.IsZero())
	assert.True(t, net.IsZero())
}

func TestPeriodMonthName(t *testing.T) {
	assert.Equal(t, "March", Period{Month: 3, Year: 2025}.MonthName())
	assert.Equal(t, "payslips/abc.pdf", StoragePath("abc"))
}

func TestCreatePayslipRequest_Validate(t *testing.T) {
	req := CreatePayslipRequest{
		EmployeeID: "0190a0b0-0000-7000-8000-000000000001",
		Month:      3,
		Year:       2025,
		Items: []PayslipItemRequest{
			{Label: "Base", Amount: decimal.NewFromInt(1000), Type: "Earning"},
		},
	}
	require.NoError(t, req.Validate())
	require.Len(t, req.ParsedItems, 1)
	assert.Equal(t, ItemTypeEarning, req.ParsedItems[0].Type)

	bad := CreatePayslipRequest{EmployeeID: "x", Month: 13, Year: 1990, Items: []PayslipItemRequest{{Amount: decimal.NewFromInt(-1), Type: "bonus"}}}
	err := bad.Validate()
	require.Error(t, err)
	for _, field := range []string{"employee_id", "month", "year", "items[0].label", "items[0].amount", "items[0].type"} {
		assert.Contains(t, err.Error(), field+":")
	}
}

func TestUploadPDFRequest_Validate(t *testing.T) {
	req := UploadPDFRequest{FileName: "slip.png"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file must be a PDF")
}
