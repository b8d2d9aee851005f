package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, user_id, first_name, last_name, email, position, COALESCE(department, ''), hire_date,
	phone, address, emergency_contact, profile_picture, documents, created_at, updated_at`

// employeeFKError maps the foreign keys an employee row carries to domain errors.
func employeeFKError(err error) error {
	switch database.ConstraintName(err) {
	case "employees_department_fkey":
		return employee.ErrDepartmentNotFound
	case "employees_team_fkey":
		return employee.ErrTeamNotFound
	}
	return employee.ErrLinkedUserNotFound
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Position,
		&e.Department,
		&e.HireDate,
		&e.Phone,
		&e.Address,
		&e.EmergencyContact,
		&e.ProfilePicture,
		&e.Documents,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	if e.Documents == nil {
		e.Documents = []employee.Document{}
	}
	return e, nil
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	return scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
}

func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	return scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE user_id = $1`, userID))
}

func (r *employeeRepositoryImpl) GetNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id, first_name, last_name FROM employees WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName); err != nil {
			return nil, err
		}
		names[e.ID] = e.FullName()
	}
	return names, rows.Err()
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if newEmployee.ID == "" {
		id, err := newID()
		if err != nil {
			return employee.Employee{}, err
		}
		newEmployee.ID = id
	}
	if newEmployee.Documents == nil {
		newEmployee.Documents = []employee.Document{}
	}

	query := `
		INSERT INTO employees (
			id, user_id, first_name, last_name, email, position, department, hire_date,
			phone, address, emergency_contact, profile_picture, documents
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.ID,
		newEmployee.UserID,
		newEmployee.FirstName,
		newEmployee.LastName,
		newEmployee.Email,
		newEmployee.Position,
		emptyToNil(newEmployee.Department),
		newEmployee.HireDate,
		newEmployee.Phone,
		newEmployee.Address,
		newEmployee.EmergencyContact,
		newEmployee.ProfilePicture,
		newEmployee.Documents,
	))
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return employee.Employee{}, employee.ErrUserAlreadyLinked
		case database.IsForeignKeyViolation(err):
			return employee.Employee{}, employeeFKError(err)
		}
		return employee.Employee{}, err
	}
	return created, nil
}

func (r *employeeRepositoryImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.FirstName != nil {
		set("first_name", strings.TrimSpace(*req.FirstName))
	}
	if req.LastName != nil {
		set("last_name", strings.TrimSpace(*req.LastName))
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.Position != nil {
		set("position", strings.TrimSpace(*req.Position))
	}
	if req.Department != nil {
		set("department", emptyToNil(*req.Department))
	}
	if req.HireDate != nil {
		set("hire_date", *req.HireDate)
	}
	if req.Phone != nil {
		set("phone", emptyToNil(*req.Phone))
	}
	if req.Address != nil {
		set("address", emptyToNil(*req.Address))
	}
	if req.EmergencyContact != nil {
		set("emergency_contact", req.EmergencyContact)
	}

	return r.update(ctx, id, sets, args)
}

func (r *employeeRepositoryImpl) UpdateContact(ctx context.Context, id string, req employee.UpdateOwnProfileRequest) error {
	var sets []string
	var args []interface{}
	if req.Phone != nil {
		args = append(args, emptyToNil(*req.Phone))
		sets = append(sets, fmt.Sprintf("phone = $%d", len(args)))
	}
	if req.Address != nil {
		args = append(args, emptyToNil(*req.Address))
		sets = append(sets, fmt.Sprintf("address = $%d", len(args)))
	}
	if req.EmergencyContact != nil {
		args = append(args, req.EmergencyContact)
		sets = append(sets, fmt.Sprintf("emergency_contact = $%d", len(args)))
	}
	return r.update(ctx, id, sets, args)
}

func (r *employeeRepositoryImpl) update(ctx context.Context, id string, sets []string, args []interface{}) error {
	if len(sets) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE employees SET %s, updated_at = NOW() WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	err := execOne(ctx, q, employee.ErrEmployeeNotFound, query, args...)
	if database.IsForeignKeyViolation(err) {
		return employeeFKError(err)
	}
	return err
}

func (r *employeeRepositoryImpl) UpdateProfilePicture(ctx context.Context, id string, path string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, employee.ErrEmployeeNotFound,
		`UPDATE employees SET profile_picture = $1, updated_at = NOW() WHERE id = $2`, path, id)
}

func (r *employeeRepositoryImpl) AddDocument(ctx context.Context, id string, doc employee.Document) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, employee.ErrEmployeeNotFound, `
		UPDATE employees
		SET documents = documents || $1::jsonb, updated_at = NOW()
		WHERE id = $2
	`, []employee.Document{doc}, id)
}

func (r *employeeRepositoryImpl) RemoveDocument(ctx context.Context, id string, documentID string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, employee.ErrDocumentNotFound, `
		UPDATE employees
		SET documents = (
			SELECT COALESCE(jsonb_agg(d), '[]'::jsonb)
			FROM jsonb_array_elements(documents) d
			WHERE d->>'id' <> $2
		), updated_at = NOW()
		WHERE id = $1 AND documents @> jsonb_build_array(jsonb_build_object('id', $2::text))
	`, id, documentID)
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var conditions []string
	var args []interface{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR (first_name || ' ' || last_name) ILIKE $%d)", n, n, n, n))
	}
	if d := strings.TrimSpace(filter.Department); d != "" {
		args = append(args, d)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))
	query := fmt.Sprintf(`SELECT %s FROM employees%s ORDER BY last_name ASC, first_name ASC LIMIT $%d OFFSET $%d`,
		employeeColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
