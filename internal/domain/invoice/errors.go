package invoice

import "errors"

var (
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrInvalidStatusTransition = errors.New("invoice status transition is not allowed")
	ErrInvoiceNotDraft         = errors.New("only draft invoices can be edited")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrNoEmployeeRecord        = errors.New("no employee record is linked to this account")
	ErrForbidden               = errors.New("not allowed to manage invoices")
)
