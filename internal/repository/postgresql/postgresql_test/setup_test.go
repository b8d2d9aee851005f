package postgresql_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/department"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/cmlabs-hris/hr-portal-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies migrations and empties every table.
// Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	_, err = db.Exec(ctx, `
		TRUNCATE TABLE
			invoices, invoice_sequences, holidays, notification_preferences, notifications,
			claims, payslips, illness_reminders, illness_records, leave_requests, employees,
			teams, departments, user_permissions, password_reset_tokens, refresh_tokens, users
		CASCADE
	`)
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *database.DB, email string, role user.Role) user.User {
	t.Helper()
	u, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
		Email:       email,
		DisplayName: email,
		Role:        role,
		Status:      user.StatusActive,
	})
	require.NoError(t, err)
	return u
}

// ensureDepartment creates the named department unless it already exists.
func ensureDepartment(t *testing.T, db *database.DB, name string) {
	t.Helper()
	_, err := postgresql.NewDepartmentRepository(db).Create(context.Background(), department.Department{Name: name})
	if errors.Is(err, department.ErrDepartmentNameExists) {
		return
	}
	require.NoError(t, err)
}

func createEmployee(t *testing.T, db *database.DB, first, last string, userID *string) employee.Employee {
	t.Helper()
	ensureDepartment(t, db, "Engineering")
	e, err := postgresql.NewEmployeeRepository(db).Create(context.Background(), employee.Employee{
		UserID:     userID,
		FirstName:  first,
		LastName:   last,
		Email:      first + "@example.com",
		Position:   "Engineer",
		Department: "Engineering",
		HireDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return e
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
