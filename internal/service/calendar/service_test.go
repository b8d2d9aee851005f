package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/calendar"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolidayRepo struct {
	mu       sync.Mutex
	holidays map[string]calendar.Holiday
}

func newFakeHolidayRepo(hs ...calendar.Holiday) *fakeHolidayRepo {
	f := &fakeHolidayRepo{holidays: map[string]calendar.Holiday{}}
	for _, h := range hs {
		f.holidays[h.ID] = h
	}
	return f
}

func (f *fakeHolidayRepo) clash(h calendar.Holiday) bool {
	for _, existing := range f.holidays {
		if existing.ID != h.ID && existing.Name == h.Name && existing.Date.Equal(h.Date) {
			return true
		}
	}
	return false
}

func (f *fakeHolidayRepo) Create(ctx context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clash(h) {
		return calendar.Holiday{}, calendar.ErrHolidayExists
	}
	h.ID = f.nextID(h.ID)
	f.holidays[h.ID] = h
	return h, nil
}

func (f *fakeHolidayRepo) GetByID(ctx context.Context, id string) (calendar.Holiday, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.holidays[id]
	if !ok {
		return calendar.Holiday{}, calendar.ErrHolidayNotFound
	}
	return h, nil
}

func (f *fakeHolidayRepo) ListForYears(ctx context.Context, fromYear, toYear int) ([]calendar.Holiday, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []calendar.Holiday
	for _, h := range f.holidays {
		if h.IsRecurring || (h.Date.Year() >= fromYear && h.Date.Year() <= toYear) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHolidayRepo) Update(ctx context.Context, h calendar.Holiday) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.holidays[h.ID]; !ok {
		return calendar.ErrHolidayNotFound
	}
	if f.clash(h) {
		return calendar.ErrHolidayExists
	}
	f.holidays[h.ID] = h
	return nil
}

func (f *fakeHolidayRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.holidays[id]; !ok {
		return calendar.ErrHolidayNotFound
	}
	delete(f.holidays, id)
	return nil
}

func (f *fakeHolidayRepo) Upsert(ctx context.Context, h calendar.Holiday) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.holidays {
		if existing.Name == h.Name && existing.Date.Equal(h.Date) {
			existing.IsRecurring = h.IsRecurring
			f.holidays[id] = existing
			return false, nil
		}
	}
	h.ID = f.nextID(h.ID)
	f.holidays[h.ID] = h
	return true, nil
}

func (f *fakeHolidayRepo) nextID(id string) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("holiday-%d", len(f.holidays)+1)
}

// approvedLeave only serves the calendar query; other methods panic on the nil interface.
type approvedLeave struct {
	leave.LeaveRequestRepository
	requests []leave.LeaveRequest
	err      error
}

func (a *approvedLeave) GetApprovedInRange(ctx context.Context, start, end time.Time) ([]leave.LeaveRequest, error) {
	if a.err != nil {
		return nil, a.err
	}
	var out []leave.LeaveRequest
	for _, r := range a.requests {
		if r.Overlaps(start, end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func strPtr(s string) *string { return &s }

func newCalendarFixture() (*CalendarServiceImpl, *fakeHolidayRepo, *approvedLeave) {
	holidays := newFakeHolidayRepo(
		calendar.Holiday{ID: "h-new-year", Name: "New Year", Date: day("2020-01-01"), IsRecurring: true},
		calendar.Holiday{ID: "h-offsite", Name: "Offsite", Date: day("2025-01-03")},
	)
	leaves := &approvedLeave{requests: []leave.LeaveRequest{
		{ID: "l1", EmployeeID: "e1", Type: leave.LeaveTypeVacation, StartDate: day("2025-01-02"), EndDate: day("2025-01-04"), Reason: "ski", EmployeeName: strPtr("Olive Owner")},
		{ID: "l2", EmployeeID: "e2", Type: leave.LeaveTypeSick, StartDate: day("2024-12-30"), EndDate: day("2024-12-31")},
	}}
	svc := NewCalendarService(holidays, leaves, &servicetest.Checker{}).(*CalendarServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC) }
	return svc, holidays, leaves
}

func adminCtx() context.Context { return servicetest.ActorContext("user-admin", user.RoleAdmin, "") }
func hrCtx() context.Context    { return servicetest.ActorContext("user-hr", user.RoleHRAdvisor, "") }

func TestCalendarService_GetLeaveEvents(t *testing.T) {
	svc, _, _ := newCalendarFixture()

	events, err := svc.GetLeaveEvents(context.Background(), day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "Olive Owner - Vacation Leave", ev.Title)
	assert.Equal(t, "#4299e1", ev.Color)
	assert.Equal(t, "ski", ev.Description)
	assert.True(t, ev.AllDay)
	assert.Equal(t, calendar.EventTypeLeave, ev.Type)
	assert.Equal(t, day("2025-01-05"), ev.End)

	events, err = svc.GetLeaveEvents(context.Background(), day("2024-12-01"), day("2024-12-31"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Employee - Sick Leave", events[0].Title)
	assert.Equal(t, "#f56565", events[0].Color)
}

func TestCalendarService_GetAllEventsSorted(t *testing.T) {
	svc, _, _ := newCalendarFixture()

	events, err := svc.GetAllEvents(context.Background(), day("2024-12-01"), day("2025-01-31"))
	require.NoError(t, err)

	var ids []string
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"l2", "h-new-year-2025", "l1", "h-offsite"}, ids)
}

func TestCalendarService_GetAllEvents_PropagatesErrors(t *testing.T) {
	svc, _, leaves := newCalendarFixture()
	leaves.err = errors.New("db down")

	_, err := svc.GetAllEvents(context.Background(), day("2025-01-01"), day("2025-01-31"))
	assert.Error(t, err)
}

func TestCalendarService_RangeValidation(t *testing.T) {
	svc, _, _ := newCalendarFixture()

	_, err := svc.GetAllEvents(context.Background(), day("2025-02-01"), day("2025-01-01"))
	assert.ErrorIs(t, err, calendar.ErrInvalidRange)

	_, err = svc.GetHolidayEvents(context.Background(), day("2024-01-01"), day("2025-06-01"))
	assert.ErrorIs(t, err, calendar.ErrInvalidRange)
}

func TestCalendarService_ExportICS(t *testing.T) {
	svc, _, _ := newCalendarFixture()

	var buf bytes.Buffer
	require.NoError(t, svc.ExportICS(context.Background(), day("2025-01-01"), day("2025-01-31"), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, out, "UID:l1@hr-portal")
	assert.Contains(t, out, "SUMMARY:Olive Owner - Vacation Leave")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250102")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250105")
	assert.Contains(t, out, "UID:h-new-year-2025@hr-portal")
	assert.Contains(t, out, "DTSTAMP:20250101T080000Z")
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
}

func TestCalendarService_HolidayCRUD(t *testing.T) {
	svc, repo, _ := newCalendarFixture()

	req := calendar.HolidayRequest{Name: " Founders Day ", Date: "2025-06-10"}
	_, err := svc.CreateHoliday(hrCtx(), req)
	assert.ErrorIs(t, err, calendar.ErrForbidden)

	created, err := svc.CreateHoliday(adminCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, "Founders Day", created.Name)
	assert.Equal(t, "2025-06-10", created.Date)

	_, err = svc.CreateHoliday(adminCtx(), calendar.HolidayRequest{Name: "Founders Day", Date: "2025-06-10"})
	assert.ErrorIs(t, err, calendar.ErrHolidayExists)

	updated, err := svc.UpdateHoliday(adminCtx(), created.ID, calendar.HolidayRequest{Name: "Founders Day", Date: "2025-06-11", IsRecurring: true})
	require.NoError(t, err)
	assert.True(t, updated.IsRecurring)
	assert.Equal(t, "2025-06-11", updated.Date)

	list, err := svc.GetHolidays(context.Background(), 2026)
	require.NoError(t, err)
	var names []string
	for _, h := range list {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"New Year", "Founders Day"}, names)

	require.NoError(t, svc.DeleteHoliday(adminCtx(), created.ID))
	assert.ErrorIs(t, svc.DeleteHoliday(adminCtx(), created.ID), calendar.ErrHolidayNotFound)
	assert.Len(t, repo.holidays, 2)
}

func TestCalendarService_SeedHolidays(t *testing.T) {
	svc, repo, _ := newCalendarFixture()

	seed := []calendar.HolidayRequest{
		{Name: "New Year", Date: "2020-01-01", IsRecurring: true},
		{Name: "Labour Day", Date: "2025-05-01", IsRecurring: true},
	}
	n, err := svc.SeedHolidays(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, repo.holidays, 3)

	// running it again inserts nothing
	n, err = svc.SeedHolidays(context.Background(), seed)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.SeedHolidays(context.Background(), []calendar.HolidayRequest{{Name: "Broken", Date: "01/05"}})
	assert.Error(t, err)
}
