package team

import "context"

type TeamRepository interface {
	// Create inserts the team and assigns its members in one transaction.
	Create(ctx context.Context, team Team, memberIDs []string) (Team, error)
	GetByID(ctx context.Context, id string) (Team, error)
	List(ctx context.Context, filter TeamFilter) ([]Team, error)
	// ListForEmployee returns the teams the employee belongs to or manages.
	ListForEmployee(ctx context.Context, employeeID string) ([]Team, error)
	Update(ctx context.Context, req UpdateTeamRequest) error
	// SetMembers replaces the member list. Employees already in another team are
	// rejected with ErrMemberInOtherTeam.
	SetMembers(ctx context.Context, teamID string, memberIDs []string) error
	Delete(ctx context.Context, id string) error
}
