package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/department"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/team"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type teamRepositoryImpl struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) team.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

const teamSelect = `
	SELECT t.id, t.name, t.department_id, t.manager_id, t.created_at, t.updated_at,
	       d.name, NULLIF(TRIM(m.first_name || ' ' || m.last_name), ''), m.user_id
	FROM teams t
	JOIN departments d ON d.id = t.department_id
	LEFT JOIN employees m ON m.id = t.manager_id`

func scanTeam(row pgx.Row) (team.Team, error) {
	var t team.Team
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.DepartmentID,
		&t.ManagerID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DepartmentName,
		&t.ManagerName,
		&t.ManagerUserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, err
	}
	return t, nil
}

// teamWriteError maps constraint violations raised by team inserts and updates.
func teamWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return team.ErrTeamNameExists
	case database.IsForeignKeyViolation(err):
		if database.ConstraintName(err) == "teams_manager_id_fkey" {
			return team.ErrManagerNotFound
		}
		return department.ErrDepartmentNotFound
	}
	return err
}

func (r *teamRepositoryImpl) Create(ctx context.Context, t team.Team, memberIDs []string) (team.Team, error) {
	if t.ID == "" {
		id, err := newID()
		if err != nil {
			return team.Team{}, err
		}
		t.ID = id
	}

	err := inTx(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		_, err := q.Exec(ctx, `
			INSERT INTO teams (id, name, department_id, manager_id)
			VALUES ($1, $2, $3, $4)
		`, t.ID, t.Name, t.DepartmentID, t.ManagerID)
		if err != nil {
			return teamWriteError(err)
		}
		return r.SetMembers(ctx, t.ID, memberIDs)
	})
	if err != nil {
		return team.Team{}, err
	}
	return r.GetByID(ctx, t.ID)
}

func (r *teamRepositoryImpl) GetByID(ctx context.Context, id string) (team.Team, error) {
	q := GetQuerier(ctx, r.db)
	t, err := scanTeam(q.QueryRow(ctx, teamSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return team.Team{}, err
	}
	teams := []team.Team{t}
	if err := r.attachMembers(ctx, teams); err != nil {
		return team.Team{}, err
	}
	return teams[0], nil
}

func (r *teamRepositoryImpl) List(ctx context.Context, filter team.TeamFilter) ([]team.Team, error) {
	if filter.DepartmentID != nil {
		return r.query(ctx, teamSelect+` WHERE t.department_id = $1 ORDER BY d.name ASC, t.name ASC`, *filter.DepartmentID)
	}
	return r.query(ctx, teamSelect+` ORDER BY d.name ASC, t.name ASC`)
}

func (r *teamRepositoryImpl) ListForEmployee(ctx context.Context, employeeID string) ([]team.Team, error) {
	return r.query(ctx, teamSelect+`
		WHERE t.manager_id = $1
		   OR t.id = (SELECT team_id FROM employees WHERE id = $1)
		ORDER BY t.name ASC`, employeeID)
}

func (r *teamRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]team.Team, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]team.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachMembers(ctx, teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// attachMembers loads the members of every team in one query.
func (r *teamRepositoryImpl) attachMembers(ctx context.Context, teams []team.Team) error {
	if len(teams) == 0 {
		return nil
	}
	ids := make([]string, 0, len(teams))
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		ids = append(ids, t.ID)
		index[t.ID] = i
		teams[i].Members = []team.Member{}
	}

	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT team_id, id, user_id, TRIM(first_name || ' ' || last_name), position
		FROM employees
		WHERE team_id = ANY($1)
		ORDER BY last_name ASC, first_name ASC
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var teamID string
		var m team.Member
		if err := rows.Scan(&teamID, &m.EmployeeID, &m.UserID, &m.Name, &m.Position); err != nil {
			return err
		}
		i := index[teamID]
		teams[i].Members = append(teams[i].Members, m)
	}
	return rows.Err()
}

func (r *teamRepositoryImpl) Update(ctx context.Context, req team.UpdateTeamRequest) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.DepartmentID != nil {
		set("department_id", *req.DepartmentID)
	}
	if req.ManagerID != nil {
		set("manager_id", emptyToNil(*req.ManagerID))
	}
	if len(sets) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)
	args = append(args, req.ID)
	query := fmt.Sprintf(`UPDATE teams SET %s, updated_at = NOW() WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	if err := execOne(ctx, q, team.ErrTeamNotFound, query, args...); err != nil {
		return teamWriteError(err)
	}
	return nil
}

func (r *teamRepositoryImpl) SetMembers(ctx context.Context, teamID string, memberIDs []string) error {
	return inTx(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var locked string
		err := q.QueryRow(ctx, `SELECT id FROM teams WHERE id = $1 FOR UPDATE`, teamID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return team.ErrTeamNotFound
			}
			return err
		}

		rows, err := q.Query(ctx, `SELECT id, team_id FROM employees WHERE id = ANY($1) FOR UPDATE`, memberIDs)
		if err != nil {
			return err
		}
		found := 0
		inOther := false
		for rows.Next() {
			var id string
			var current *string
			if err := rows.Scan(&id, &current); err != nil {
				rows.Close()
				return err
			}
			found++
			if current != nil && *current != teamID {
				inOther = true
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if found != len(memberIDs) {
			return team.ErrMemberNotFound
		}
		if inOther {
			return team.ErrMemberInOtherTeam
		}

		if _, err := q.Exec(ctx, `
			UPDATE employees SET team_id = NULL, updated_at = NOW()
			WHERE team_id = $1 AND NOT (id = ANY($2))
		`, teamID, memberIDs); err != nil {
			return err
		}
		_, err = q.Exec(ctx, `
			UPDATE employees SET team_id = $1, updated_at = NOW()
			WHERE id = ANY($2) AND team_id IS DISTINCT FROM $1
		`, teamID, memberIDs)
		return err
	})
}

func (r *teamRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, team.ErrTeamNotFound, `DELETE FROM teams WHERE id = $1`, id)
}
