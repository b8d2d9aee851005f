package team

import "time"

// Team size bounds, manager excluded.
const (
	MinMembers = 2
	MaxMembers = 10
)

type Team struct {
	ID           string
	Name         string
	DepartmentID string
	ManagerID    *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	DepartmentName string
	ManagerName    *string
	ManagerUserID  *string
	Members        []Member
}

// Member is an employee whose team_id points at the team.
type Member struct {
	EmployeeID string
	UserID     *string
	Name       string
	Position   string
}

// Includes reports whether employeeID manages or belongs to the team.
func (t Team) Includes(employeeID string) bool {
	if employeeID == "" {
		return false
	}
	if t.ManagerID != nil && *t.ManagerID == employeeID {
		return true
	}
	for _, m := range t.Members {
		if m.EmployeeID == employeeID {
			return true
		}
	}
	return false
}

// MemberIDs returns the member employee ids in display order.
func (t Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.EmployeeID)
	}
	return ids
}
