package calendar

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/calendar"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/leave"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/ics"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

const (
	icsProdID    = "-//HR Portal//Calendar//EN"
	icsUIDSuffix = "@hr-portal"
)

type CalendarServiceImpl struct {
	holidayRepo calendar.HolidayRepository
	leaveRepo   leave.LeaveRequestRepository
	permissions permission.Checker
	now         func() time.Time
}

func NewCalendarService(holidayRepo calendar.HolidayRepository, leaveRepo leave.LeaveRequestRepository, permissions permission.Checker) calendar.CalendarService {
	return &CalendarServiceImpl{
		holidayRepo: holidayRepo,
		leaveRepo:   leaveRepo,
		permissions: permissions,
		now:         time.Now,
	}
}

func (s *CalendarServiceImpl) requireConfigure(ctx context.Context) error {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	ok, err := s.permissions.HasPermission(ctx, actor.UserID, actor.Role, user.PermissionConfigureSystem)
	if err != nil {
		return fmt.Errorf("failed to check permission %s: %w", user.PermissionConfigureSystem, err)
	}
	if !ok {
		return calendar.ErrForbidden
	}
	return nil
}

func (s *CalendarServiceImpl) GetLeaveEvents(ctx context.Context, start, end time.Time) ([]calendar.Event, error) {
	if err := calendar.ValidateRange(start, end); err != nil {
		return nil, err
	}

	requests, err := s.leaveRepo.GetApprovedInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved leave: %w", err)
	}

	events := make([]calendar.Event, 0, len(requests))
	for _, r := range requests {
		name := ""
		if r.EmployeeName != nil {
			name = *r.EmployeeName
		}
		events = append(events, calendar.LeaveEvent(r.ID, r.EmployeeID, name, string(r.Type), r.Reason, r.StartDate, r.EndDate))
	}
	sortEvents(events)
	return events, nil
}

func (s *CalendarServiceImpl) GetHolidayEvents(ctx context.Context, start, end time.Time) ([]calendar.Event, error) {
	if err := calendar.ValidateRange(start, end); err != nil {
		return nil, err
	}

	holidays, err := s.holidayRepo.ListForYears(ctx, start.Year(), end.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}

	events := make([]calendar.Event, 0, len(holidays))
	for _, h := range holidays {
		events = append(events, calendar.HolidayEvents(h, start, end)...)
	}
	sortEvents(events)
	return events, nil
}

// GetAllEvents loads leave and holiday events concurrently and merges them by start date.
func (s *CalendarServiceImpl) GetAllEvents(ctx context.Context, start, end time.Time) ([]calendar.Event, error) {
	if err := calendar.ValidateRange(start, end); err != nil {
		return nil, err
	}

	var leaveEvents, holidayEvents []calendar.Event
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leaveEvents, err = s.GetLeaveEvents(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		holidayEvents, err = s.GetHolidayEvents(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	events := make([]calendar.Event, 0, len(leaveEvents)+len(holidayEvents))
	events = append(events, leaveEvents...)
	events = append(events, holidayEvents...)
	sortEvents(events)
	return events, nil
}

func (s *CalendarServiceImpl) ExportICS(ctx context.Context, start, end time.Time, w io.Writer) error {
	events, err := s.GetAllEvents(ctx, start, end)
	if err != nil {
		return err
	}

	out := make([]ics.Event, 0, len(events))
	for _, ev := range events {
		out = append(out, ics.Event{
			UID:         ev.ID + icsUIDSuffix,
			Summary:     ev.Title,
			Description: ev.Description,
			Start:       ev.Start,
			End:         ev.End,
			AllDay:      ev.AllDay,
			Categories:  []string{ev.Type},
		})
	}
	return ics.Write(w, icsProdID, s.now(), out)
}

// GetHolidays lists recurring holidays and those dated in year, by month and day.
func (s *CalendarServiceImpl) GetHolidays(ctx context.Context, year int) ([]calendar.HolidayResponse, error) {
	holidays, err := s.holidayRepo.ListForYears(ctx, year, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		a, b := holidays[i].Date, holidays[j].Date
		if a.Month() != b.Month() {
			return a.Month() < b.Month()
		}
		return a.Day() < b.Day()
	})

	out := make([]calendar.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, h.ToResponse())
	}
	return out, nil
}

func (s *CalendarServiceImpl) CreateHoliday(ctx context.Context, req calendar.HolidayRequest) (calendar.HolidayResponse, error) {
	if err := s.requireConfigure(ctx); err != nil {
		return calendar.HolidayResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return calendar.HolidayResponse{}, err
	}

	created, err := s.holidayRepo.Create(ctx, calendar.Holiday{
		Name:        req.Name,
		Date:        req.Day,
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		return calendar.HolidayResponse{}, err
	}
	return created.ToResponse(), nil
}

func (s *CalendarServiceImpl) UpdateHoliday(ctx context.Context, id string, req calendar.HolidayRequest) (calendar.HolidayResponse, error) {
	if err := s.requireConfigure(ctx); err != nil {
		return calendar.HolidayResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return calendar.HolidayResponse{}, err
	}

	h, err := s.holidayRepo.GetByID(ctx, id)
	if err != nil {
		return calendar.HolidayResponse{}, err
	}
	h.Name = req.Name
	h.Date = req.Day
	h.IsRecurring = req.IsRecurring
	if err := s.holidayRepo.Update(ctx, h); err != nil {
		return calendar.HolidayResponse{}, err
	}
	return h.ToResponse(), nil
}

func (s *CalendarServiceImpl) DeleteHoliday(ctx context.Context, id string) error {
	if err := s.requireConfigure(ctx); err != nil {
		return err
	}
	return s.holidayRepo.Delete(ctx, id)
}

// SeedHolidays upserts by (name, date). It runs at startup and from the CLI, so no caller is checked.
func (s *CalendarServiceImpl) SeedHolidays(ctx context.Context, holidays []calendar.HolidayRequest) (int, error) {
	inserted := 0
	for i := range holidays {
		req := holidays[i]
		if err := req.Validate(); err != nil {
			return inserted, fmt.Errorf("holiday %q: %w", req.Name, err)
		}
		created, err := s.holidayRepo.Upsert(ctx, calendar.Holiday{
			Name:        req.Name,
			Date:        req.Day,
			IsRecurring: req.IsRecurring,
		})
		if err != nil {
			return inserted, fmt.Errorf("failed to upsert holiday %q: %w", req.Name, err)
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}

func sortEvents(events []calendar.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}
