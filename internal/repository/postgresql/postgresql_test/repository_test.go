package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/calendar"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/claim"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/invoice"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/department"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/master/team"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	created := createUser(t, db, "Jane@Example.com", user.RoleHRAdvisor)
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Nil(t, got.EmployeeID)

	_, err = repo.Create(ctx, user.User{Email: "jane@example.com", Role: user.RoleEmployee, Status: user.StatusActive})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	_, err = repo.GetByID(ctx, "0190a0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_ListByRoles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createUser(t, db, "admin@example.com", user.RoleAdmin)
	createUser(t, db, "hr@example.com", user.RoleHRAdvisor)
	createUser(t, db, "staff@example.com", user.RoleEmployee)

	approvers, err := postgresql.NewUserRepository(db).ListByRoles(ctx, []user.Role{user.RoleAdmin, user.RoleHRAdvisor}, true)
	require.NoError(t, err)
	assert.Len(t, approvers, 2)
}

func TestLeaveRequestRepository_StatusIsGuarded(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(db)

	approver := createUser(t, db, "hr@example.com", user.RoleHRAdvisor)
	emp := createEmployee(t, db, "John", "Doe", nil)

	req, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: emp.ID,
		Type:       leave.LeaveTypeVacation,
		StartDate:  date(2025, 7, 1),
		EndDate:    date(2025, 7, 5),
		Reason:     "Summer",
		Status:     leave.LeaveRequestStatusPending,
	})
	require.NoError(t, err)
	require.NotNil(t, req.EmployeeName)
	assert.Equal(t, "John Doe", *req.EmployeeName)

	overlap, err := repo.HasOverlap(ctx, emp.ID, date(2025, 7, 5), date(2025, 7, 8))
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.HasOverlap(ctx, emp.ID, date(2025, 7, 6), date(2025, 7, 8))
	require.NoError(t, err)
	assert.False(t, overlap)

	approved, err := repo.UpdateStatus(ctx, req.ID, leave.LeaveRequestStatusApproved, &approver.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusApproved, approved.Status)

	_, err = repo.UpdateStatus(ctx, req.ID, leave.LeaveRequestStatusRejected, &approver.ID, nil)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	inRange, err := repo.GetApprovedInRange(ctx, date(2025, 6, 30), date(2025, 7, 1))
	require.NoError(t, err)
	assert.Len(t, inRange, 1)
}

func TestIllnessRepository_ReminderClaimedOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewIllnessRepository(db)

	hr := createUser(t, db, "hr@example.com", user.RoleHRAdvisor)
	emp := createEmployee(t, db, "Mia", "Park", nil)
	rec, err := repo.Create(ctx, illness.IllnessRecord{
		EmployeeID: emp.ID,
		Type:       illness.IllnessTypeSickLeave,
		Status:     illness.IllnessStatusActive,
		StartDate:  date(2025, 3, 3),
		CreatedBy:  hr.ID,
		UpdatedBy:  hr.ID,
	})
	require.NoError(t, err)

	claimed, err := repo.ClaimReminder(ctx, rec.ID, illness.ReminderFollowUp, date(2025, 3, 10))
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimReminder(ctx, rec.ID, illness.ReminderFollowUp, date(2025, 3, 10))
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, repo.ReleaseReminder(ctx, rec.ID, illness.ReminderFollowUp, date(2025, 3, 10)))
	claimed, err = repo.ClaimReminder(ctx, rec.ID, illness.ReminderFollowUp, date(2025, 3, 10))
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestPayslipRepository_PublishOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayslipRepository(db)

	emp := createEmployee(t, db, "Ana", "Lee", nil)
	items := []payroll.PayslipItem{
		{Label: "Base", Amount: decimal.NewFromInt(3000), Type: payroll.ItemTypeEarning},
		{Label: "Tax", Amount: decimal.NewFromInt(500), Type: payroll.ItemTypeDeduction},
	}
	gross, net := payroll.ComputeTotals(items)

	p, err := repo.Create(ctx, payroll.Payslip{
		EmployeeID:  emp.ID,
		Period:      payroll.Period{Month: 3, Year: 2025},
		IssueDate:   date(2025, 3, 31),
		GrossSalary: gross,
		NetSalary:   net,
		Items:       items,
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.PayslipStatusDraft, p.Status)
	assert.True(t, net.Equal(p.NetSalary))
	assert.Len(t, p.Items, 2)

	_, err = repo.Create(ctx, payroll.Payslip{
		EmployeeID: emp.ID,
		Period:     payroll.Period{Month: 3, Year: 2025},
		IssueDate:  date(2025, 3, 31),
	})
	assert.ErrorIs(t, err, payroll.ErrPayslipExists)

	require.NoError(t, repo.Publish(ctx, p.ID, payroll.StoragePath(p.ID)))
	assert.ErrorIs(t, repo.Publish(ctx, p.ID, payroll.StoragePath(p.ID)), payroll.ErrPayslipAlreadyPublished)
	assert.ErrorIs(t, repo.DeleteDraft(ctx, p.ID), payroll.ErrPayslipAlreadyPublished)

	summary, err := repo.SummaryForPeriod(ctx, 3, 2025)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "Ana Lee", *summary[0].EmployeeName)
}

func TestInvoiceRepository_NumbersAreSequentialPerMonth(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewInvoiceRepository(db)

	emp := createEmployee(t, db, "Sam", "Park", nil)
	newInvoice := func() invoice.Invoice {
		inv := invoice.Invoice{
			EmployeeID: emp.ID,
			IssueDate:  date(2025, 3, 10),
			DueDate:    date(2025, 4, 10),
			Items:      invoice.BuildItems([]invoice.Item{{Description: "Laptop", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1200)}}),
			TaxRate:    decimal.NewFromInt(10),
		}
		inv.Recalculate()
		return inv
	}

	first, err := repo.Create(ctx, newInvoice())
	require.NoError(t, err)
	second, err := repo.Create(ctx, newInvoice())
	require.NoError(t, err)

	assert.Equal(t, "INV-2503-0001", first.InvoiceNumber)
	assert.Equal(t, "INV-2503-0002", second.InvoiceNumber)
	assert.True(t, decimal.NewFromInt(1320).Equal(first.Total))

	err = repo.UpdateStatus(ctx, first.ID, invoice.StatusPaid, invoice.AllowedFrom(invoice.StatusPaid))
	assert.ErrorIs(t, err, invoice.ErrInvalidStatusTransition)

	require.NoError(t, repo.UpdateStatus(ctx, first.ID, invoice.StatusSent, invoice.AllowedFrom(invoice.StatusSent)))

	marked, err := repo.MarkOverdue(ctx, date(2025, 4, 11))
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)
}

func TestHolidayRepository_UpsertReportsInsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewHolidayRepository(db)

	h := calendar.Holiday{Name: "New Year", Date: date(2025, 1, 1), IsRecurring: true}

	inserted, err := repo.Upsert(ctx, h)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Upsert(ctx, h)
	require.NoError(t, err)
	assert.False(t, inserted)

	holidays, err := repo.ListForYears(ctx, 2030, 2030)
	require.NoError(t, err)
	assert.Len(t, holidays, 1)
}

func TestNotificationRepository_SoftDeleteHidesRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewNotificationRepository(db)

	u := createUser(t, db, "staff@example.com", user.RoleEmployee)
	other := createUser(t, db, "other@example.com", user.RoleEmployee)

	n1 := &notification.Notification{UserID: u.ID, Type: notification.TypeSystem, Title: "One", Message: "first"}
	n2 := &notification.Notification{UserID: u.ID, Type: notification.TypeSystem, Title: "Two", Message: "second", Data: map[string]interface{}{"k": "v"}}
	require.NoError(t, repo.CreateBatch(ctx, []*notification.Notification{n1, n2}))

	count, err := repo.GetUnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.ErrorIs(t, repo.Delete(ctx, n1.ID, other.ID), notification.ErrNotificationNotFound)
	require.NoError(t, repo.Delete(ctx, n1.ID, u.ID))

	list, total, err := repo.GetByUserID(ctx, u.ID, 1, 20, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "v", list[0].Data["k"])

	marked, err := repo.MarkAllAsRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	enabled, err := repo.IsNotificationEnabled(ctx, u.ID, notification.TypeSystem)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestDepartmentRepository_RenameCascadesToEmployees(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewDepartmentRepository(db)

	emp := createEmployee(t, db, "John", "Doe", nil)
	depts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.EqualValues(t, 1, depts[0].EmployeeCount)

	renamed := "Platform Engineering"
	require.NoError(t, repo.Update(ctx, department.UpdateDepartmentRequest{ID: depts[0].ID, Name: &renamed}))

	got, err := postgresql.NewEmployeeRepository(db).GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, renamed, got.Department)

	assert.ErrorIs(t, repo.Delete(ctx, depts[0].ID), department.ErrDepartmentInUse)
}

func TestEmployeeRepository_UnknownDepartmentRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)

	_, err := repo.Create(ctx, employee.Employee{
		FirstName:  "Jane",
		LastName:   "Roe",
		Email:      "jane@example.com",
		Position:   "Analyst",
		Department: "Nowhere",
		HireDate:   date(2024, 3, 1),
	})
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)

	emp := createEmployee(t, db, "John", "Doe", nil)
	missing := "Nowhere"
	err = repo.Update(ctx, emp.ID, employee.UpdateEmployeeRequest{Department: &missing})
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)
}

func TestTeamRepository_MemberInOneTeam(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewTeamRepository(db)

	a := createEmployee(t, db, "Ann", "A", nil)
	b := createEmployee(t, db, "Ben", "B", nil)
	c := createEmployee(t, db, "Cat", "C", nil)
	lead := createEmployee(t, db, "Lee", "L", nil)
	depts, err := postgresql.NewDepartmentRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 1)

	first, err := repo.Create(ctx, team.Team{Name: "Platform", DepartmentID: depts[0].ID, ManagerID: &lead.ID}, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, first.MemberIDs())
	require.NotNil(t, first.ManagerName)
	assert.Equal(t, "Lee L", *first.ManagerName)

	_, err = repo.Create(ctx, team.Team{Name: "Data", DepartmentID: depts[0].ID}, []string{b.ID, c.ID})
	assert.ErrorIs(t, err, team.ErrMemberInOtherTeam)
	all, err := repo.List(ctx, team.TeamFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1, "failed create must roll back the team row")

	require.NoError(t, repo.SetMembers(ctx, first.ID, []string{a.ID, c.ID}))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, c.ID}, got.MemberIDs())

	mine, err := repo.ListForEmployee(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	mine, err = repo.ListForEmployee(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	require.NoError(t, repo.Delete(ctx, first.ID))
	mine, err = repo.ListForEmployee(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestClaimRepository_StatusIsGuarded(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewClaimRepository(db)

	reviewer := createUser(t, db, "hr@example.com", user.RoleHRAdvisor)
	emp := createEmployee(t, db, "John", "Doe", nil)

	routine, err := repo.Create(ctx, claim.Claim{EmployeeID: emp.ID, Type: claim.ClaimTypeMaterial, Description: "Chair", Status: claim.ClaimStatusPending})
	require.NoError(t, err)
	urgent, err := repo.Create(ctx, claim.Claim{EmployeeID: emp.ID, Type: claim.ClaimTypeAccount, Description: "VPN", IsUrgent: true, Status: claim.ClaimStatusPending})
	require.NoError(t, err)

	list, total, err := repo.List(ctx, claim.ClaimFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, urgent.ID, list[0].ID)

	note := "replaced"
	done, err := repo.UpdateStatus(ctx, routine.ID, claim.ClaimStatusProcessed, reviewer.ID, &note)
	require.NoError(t, err)
	assert.Equal(t, claim.ClaimStatusProcessed, done.Status)

	_, err = repo.UpdateStatus(ctx, routine.ID, claim.ClaimStatusRejected, reviewer.ID, nil)
	assert.ErrorIs(t, err, claim.ErrClaimAlreadyProcessed)

	assert.ErrorIs(t, repo.Delete(ctx, routine.ID), claim.ErrClaimAlreadyProcessed)
	require.NoError(t, repo.Delete(ctx, urgent.ID))
	_, err = repo.GetByID(ctx, urgent.ID)
	assert.ErrorIs(t, err, claim.ErrClaimNotFound)
}
