package claim

import "errors"

var (
	ErrClaimNotFound         = errors.New("claim not found")
	ErrClaimAlreadyProcessed = errors.New("claim already processed")
	ErrNoEmployeeRecord      = errors.New("no employee record is linked to this account")
	ErrForbidden             = errors.New("not allowed to access claims")
)
