package invoice

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:   {StatusSent, StatusCancelled},
	StatusSent:    {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue: {StatusPaid, StatusCancelled},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is allowed. Paid and cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedFrom lists the statuses that may move to next.
func AllowedFrom(next Status) []Status {
	var from []Status
	for _, s := range []Status{StatusDraft, StatusSent, StatusOverdue} {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

type Item struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

type Invoice struct {
	ID            string
	InvoiceNumber string
	EmployeeID    string
	Status        Status
	IssueDate     time.Time
	DueDate       time.Time
	Items         []Item
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields
	EmployeeName *string
}

var hundred = decimal.NewFromInt(100)

// BuildItems numbers items "item-1".."item-N" and sets amount = quantity * unit price.
func BuildItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		item.ID = fmt.Sprintf("item-%d", i+1)
		item.Amount = item.Quantity.Mul(item.UnitPrice).Round(2)
		out[i] = item
	}
	return out
}

// Recalculate sets subtotal, tax amount and total from the items and tax rate.
// Tax is rounded to 2 decimal places.
func (inv *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	inv.Subtotal = subtotal.Round(2)
	inv.TaxAmount = inv.Subtotal.Mul(inv.TaxRate).Div(hundred).Round(2)
	inv.Total = inv.Subtotal.Add(inv.TaxAmount)
}

// FormatNumber renders INV-YYMM-#### for the given issue time and monthly sequence.
func FormatNumber(issued time.Time, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", issued.Format("0601"), seq)
}

// SequencePeriod is the counter key for invoice numbering, e.g. "2503".
func SequencePeriod(issued time.Time) string {
	return issued.Format("0601")
}
