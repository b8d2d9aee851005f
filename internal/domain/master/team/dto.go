package team

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

type CreateTeamRequest struct {
	Name         string   `json:"name"`
	DepartmentID string   `json:"department_id"`
	ManagerID    *string  `json:"manager_id,omitempty"`
	MemberIDs    []string `json:"member_ids"`
}

func (r *CreateTeamRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	validateName(&errs, r.Name)

	if !validator.IsUUID(r.DepartmentID) {
		errs.Add("department_id", "department_id must be a valid UUID")
	}
	if r.ManagerID != nil && !validator.IsUUID(*r.ManagerID) {
		errs.Add("manager_id", "manager_id must be a valid UUID")
	}

	members, ok := validateMembers(&errs, r.MemberIDs)
	if ok {
		r.MemberIDs = members
	}

	return errs.Err()
}

type UpdateTeamRequest struct {
	ID           string  `json:"-"`
	Name         *string `json:"name,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	// ManagerID set to "" clears the manager.
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *UpdateTeamRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Name == nil && r.DepartmentID == nil && r.ManagerID == nil {
		errs.Add("body", "at least one field must be provided")
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
		validateName(&errs, name)
	}
	if r.DepartmentID != nil && !validator.IsUUID(*r.DepartmentID) {
		errs.Add("department_id", "department_id must be a valid UUID")
	}
	if r.ManagerID != nil && *r.ManagerID != "" && !validator.IsUUID(*r.ManagerID) {
		errs.Add("manager_id", "manager_id must be a valid UUID")
	}

	return errs.Err()
}

type SetMembersRequest struct {
	MemberIDs []string `json:"member_ids"`
}

func (r *SetMembersRequest) Validate() error {
	var errs validator.ValidationErrors
	members, ok := validateMembers(&errs, r.MemberIDs)
	if ok {
		r.MemberIDs = members
	}
	return errs.Err()
}

func validateName(errs *validator.ValidationErrors, name string) {
	if validator.IsEmpty(name) {
		errs.Add("name", "name is required")
	} else if len(name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}
}

// validateMembers deduplicates ids and enforces the team size bounds.
func validateMembers(errs *validator.ValidationErrors, ids []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if !validator.IsUUID(id) {
			errs.Add("member_ids", "member_ids must contain valid UUIDs")
			return nil, false
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) < MinMembers || len(out) > MaxMembers {
		errs.Add("member_ids", fmt.Sprintf("a team needs between %d and %d members", MinMembers, MaxMembers))
		return nil, false
	}
	return out, true
}

type TeamFilter struct {
	DepartmentID *string
}

type MemberResponse struct {
	EmployeeID string  `json:"employee_id"`
	UserID     *string `json:"user_id,omitempty"`
	Name       string  `json:"name"`
	Position   string  `json:"position"`
}

type TeamResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	DepartmentID   string           `json:"department_id"`
	DepartmentName string           `json:"department_name"`
	ManagerID      *string          `json:"manager_id,omitempty"`
	ManagerName    *string          `json:"manager_name,omitempty"`
	MemberCount    int              `json:"member_count"`
	Members        []MemberResponse `json:"members"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (t Team) ToResponse() TeamResponse {
	members := make([]MemberResponse, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, MemberResponse{
			EmployeeID: m.EmployeeID,
			UserID:     m.UserID,
			Name:       m.Name,
			Position:   m.Position,
		})
	}
	return TeamResponse{
		ID:             t.ID,
		Name:           t.Name,
		DepartmentID:   t.DepartmentID,
		DepartmentName: t.DepartmentName,
		ManagerID:      t.ManagerID,
		ManagerName:    t.ManagerName,
		MemberCount:    len(members),
		Members:        members,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func ToResponses(teams []Team) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, t.ToResponse())
	}
	return out
}

// AbsenceResponse is one approved leave of a team member.
type AbsenceResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	LeaveID      string `json:"leave_id"`
	Type         string `json:"type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}
