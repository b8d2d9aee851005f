package illness

import (
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
)

type IllnessType string

const (
	IllnessTypeSickLeave    IllnessType = "sick_leave"
	IllnessTypeWorkAccident IllnessType = "work_accident"
	IllnessTypeLongTerm     IllnessType = "long_term"
	IllnessTypeOther        IllnessType = "other"
)

func (t IllnessType) IsValid() bool {
	switch t {
	case IllnessTypeSickLeave, IllnessTypeWorkAccident, IllnessTypeLongTerm, IllnessTypeOther:
		return true
	}
	return false
}

type IllnessStatus string

const (
	IllnessStatusActive    IllnessStatus = "active"
	IllnessStatusRecovered IllnessStatus = "recovered"
	IllnessStatusChronic   IllnessStatus = "chronic"
)

func (s IllnessStatus) IsValid() bool {
	switch s {
	case IllnessStatusActive, IllnessStatusRecovered, IllnessStatusChronic:
		return true
	}
	return false
}

// CanTransitionTo allows only active -> recovered and active -> chronic.
func (s IllnessStatus) CanTransitionTo(next IllnessStatus) bool {
	return s == IllnessStatusActive && (next == IllnessStatusRecovered || next == IllnessStatusChronic)
}

type IllnessRecord struct {
	ID                       string
	EmployeeID               string
	Type                     IllnessType
	Status                   IllnessStatus
	StartDate                time.Time
	EndDate                  *time.Time
	Description              string
	MedicalCertificateURL    *string
	MedicalCertificateExpiry *time.Time
	FollowUpDate             *time.Time
	Notes                    *string
	Documents                []employee.Document
	CreatedBy                string
	UpdatedBy                string
	CreatedAt                time.Time
	UpdatedAt                time.Time

	// Join
	EmployeeName *string
}

// ReminderKind names a scheduled reminder sent to reviewers about a record.
type ReminderKind string

const (
	ReminderCertificateExpiring ReminderKind = "certificate_expiring"
	ReminderFollowUp            ReminderKind = "follow_up"
)

type Statistics struct {
	TotalActive    int64                 `json:"total_active"`
	TotalRecovered int64                 `json:"total_recovered"`
	TotalChronic   int64                 `json:"total_chronic"`
	ByType         map[IllnessType]int64 `json:"by_type"`
}
