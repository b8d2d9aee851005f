package team

import "errors"

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameExists    = errors.New("team with this name already exists in the department")
	ErrManagerNotFound   = errors.New("manager employee not found")
	ErrMemberNotFound    = errors.New("one or more member employees not found")
	ErrMemberInOtherTeam = errors.New("one or more employees already belong to another team")
	ErrNoEmployeeRecord  = errors.New("no employee record is linked to this account")
	ErrForbidden         = errors.New("not allowed to manage teams")
	ErrInvalidDateRange  = errors.New("end must be on or after start")
)
