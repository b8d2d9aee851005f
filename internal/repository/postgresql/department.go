package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/department"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

const departmentSelect = `
	SELECT d.id, d.name, d.description, d.created_at, d.updated_at,
	       (SELECT COUNT(*) FROM employees e WHERE e.department = d.name),
	       (SELECT COUNT(*) FROM teams t WHERE t.department_id = d.id)
	FROM departments d`

func scanDepartment(row pgx.Row) (department.Department, error) {
	var d department.Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt, &d.EmployeeCount, &d.TeamCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, err
	}
	return d, nil
}

func (r *departmentRepositoryImpl) Create(ctx context.Context, d department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	if d.ID == "" {
		id, err := newID()
		if err != nil {
			return department.Department{}, err
		}
		d.ID = id
	}

	_, err := q.Exec(ctx, `INSERT INTO departments (id, name, description) VALUES ($1, $2, $3)`,
		d.ID, d.Name, d.Description)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return department.Department{}, department.ErrDepartmentNameExists
		}
		return department.Department{}, err
	}
	return r.GetByID(ctx, d.ID)
}

func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)
	return scanDepartment(q.QueryRow(ctx, departmentSelect+` WHERE d.id = $1`, id))
}

func (r *departmentRepositoryImpl) List(ctx context.Context) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, departmentSelect+` ORDER BY d.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]department.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *departmentRepositoryImpl) Update(ctx context.Context, req department.UpdateDepartmentRequest) error {
	var sets []string
	var args []interface{}
	if req.Name != nil {
		args = append(args, *req.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if req.Description != nil {
		args = append(args, *req.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)
	args = append(args, req.ID)
	query := fmt.Sprintf(`UPDATE departments SET %s, updated_at = NOW() WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	err := execOne(ctx, q, department.ErrDepartmentNotFound, query, args...)
	if database.IsUniqueViolation(err) {
		return department.ErrDepartmentNameExists
	}
	return err
}

func (r *departmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	err := execOne(ctx, q, department.ErrDepartmentNotFound, `DELETE FROM departments WHERE id = $1`, id)
	if database.IsForeignKeyViolation(err) {
		return department.ErrDepartmentInUse
	}
	return err
}
