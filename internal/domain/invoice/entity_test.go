package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:   {StatusSent, StatusCancelled},
		StatusSent:    {StatusPaid, StatusOverdue, StatusCancelled},
		StatusOverdue: {StatusPaid, StatusCancelled},
	}
	all := []Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.ElementsMatch(t, []Status{StatusSent, StatusOverdue}, AllowedFrom(StatusPaid))
	assert.ElementsMatch(t, []Status{StatusDraft}, AllowedFrom(StatusSent))
	assert.Empty(t, AllowedFrom(StatusDraft))
}

func TestBuildItemsAndRecalculate(t *testing.T) {
	items := BuildItems([]Item{
		{Description: "Travel", Quantity: dec("2"), UnitPrice: dec("45.50")},
		{Description: "Hotel", Quantity: dec("1"), UnitPrice: dec("120")},
	})
	require.Len(t, items, 2)
	assert.Equal(t, "item-1", items[0].ID)
	assert.Equal(t, "item-2", items[1].ID)
	assert.True(t, items[0].Amount.Equal(dec("91")))

	inv := Invoice{Items: items, TaxRate: dec("7.5")}
	inv.Recalculate()
	assert.True(t, inv.Subtotal.Equal(dec("211")), "subtotal = %s", inv.Subtotal)
	// 211 * 7.5% = 15.825 -> 15.83
	assert.True(t, inv.TaxAmount.Equal(dec("15.83")), "tax = %s", inv.TaxAmount)
	assert.True(t, inv.Total.Equal(dec("226.83")), "total = %s", inv.Total)
}

func TestFormatNumber(t *testing.T) {
	issued := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-2503-0001", FormatNumber(issued, 1))
	assert.Equal(t, "INV-2503-0123", FormatNumber(issued, 123))
	assert.Equal(t, "2503", SequencePeriod(issued))
}

func TestCreateInvoiceRequest_Validate(t *testing.T) {
	req := CreateInvoiceRequest{
		EmployeeID: "0190a0b0-0000-7000-8000-000000000001",
		Items:      []ItemRequest{{Description: "Travel", Quantity: dec("1"), UnitPrice: dec("10")}},
		TaxRate:    dec("10"),
		DueDate:    "2025-04-30",
	}
	require.NoError(t, req.Validate())
	require.Len(t, req.ParsedItems, 1)

	bad := CreateInvoiceRequest{
		Items:   []ItemRequest{{Quantity: dec("0"), UnitPrice: dec("-1")}},
		TaxRate: dec("101"),
		DueDate: "30/04/2025",
	}
	err := bad.Validate()
	require.Error(t, err)
	for _, field := range []string{"employee_id", "items[0].description", "items[0].quantity", "items[0].unit_price", "tax_rate", "due_date"} {
		assert.Contains(t, err.Error(), field+":")
	}
}
