package claim

import "time"

type ClaimType string

const (
	ClaimTypeMaterial ClaimType = "material"
	ClaimTypeAccount  ClaimType = "account"
	ClaimTypeOther    ClaimType = "other"
)

func (t ClaimType) IsValid() bool {
	switch t {
	case ClaimTypeMaterial, ClaimTypeAccount, ClaimTypeOther:
		return true
	}
	return false
}

type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusProcessed ClaimStatus = "processed"
	ClaimStatusRejected  ClaimStatus = "rejected"
)

func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusProcessed, ClaimStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo allows pending -> processed | rejected, once.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	return s == ClaimStatusPending && (next == ClaimStatusProcessed || next == ClaimStatusRejected)
}

// Claim is a request from an employee to HR, e.g. equipment or an account fix.
type Claim struct {
	ID          string
	EmployeeID  string
	Type        ClaimType
	Description string
	IsUrgent    bool

	Status         ClaimStatus
	AttachmentURL  *string
	ProcessedBy    *string
	ResolutionNote *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	EmployeeName   *string
	EmployeeUserID *string
}
