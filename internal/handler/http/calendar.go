package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/calendar"
	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type CalendarHandler interface {
	GetEvents(w http.ResponseWriter, r *http.Request)
	GetLeaveEvents(w http.ResponseWriter, r *http.Request)
	GetHolidayEvents(w http.ResponseWriter, r *http.Request)
	ExportICS(w http.ResponseWriter, r *http.Request)

	ListHolidays(w http.ResponseWriter, r *http.Request)
	CreateHoliday(w http.ResponseWriter, r *http.Request)
	UpdateHoliday(w http.ResponseWriter, r *http.Request)
	DeleteHoliday(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.CalendarService
	now             func() time.Time
}

func NewCalendarHandler(calendarService calendar.CalendarService) CalendarHandler {
	return &calendarHandlerImpl{calendarService: calendarService, now: time.Now}
}

// rangeFrom reads ?start=&end=. Missing bounds default to the current month.
func (h *calendarHandlerImpl) rangeFrom(r *http.Request) (calendar.RangeRequest, error) {
	now := h.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	req := calendar.RangeRequest{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
	if req.Start == "" {
		req.Start = first.Format(time.DateOnly)
	}
	if req.End == "" {
		req.End = first.AddDate(0, 1, -1).Format(time.DateOnly)
	}
	return req, req.Validate()
}

func (h *calendarHandlerImpl) events(w http.ResponseWriter, r *http.Request, load func(r *http.Request, start, end time.Time) ([]calendar.Event, error)) {
	rng, err := h.rangeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	events, err := load(r, rng.From, rng.To)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, events)
}

// GetEvents implements CalendarHandler
func (h *calendarHandlerImpl) GetEvents(w http.ResponseWriter, r *http.Request) {
	h.events(w, r, func(r *http.Request, start, end time.Time) ([]calendar.Event, error) {
		return h.calendarService.GetAllEvents(r.Context(), start, end)
	})
}

// GetLeaveEvents implements CalendarHandler
func (h *calendarHandlerImpl) GetLeaveEvents(w http.ResponseWriter, r *http.Request) {
	h.events(w, r, func(r *http.Request, start, end time.Time) ([]calendar.Event, error) {
		return h.calendarService.GetLeaveEvents(r.Context(), start, end)
	})
}

// GetHolidayEvents implements CalendarHandler
func (h *calendarHandlerImpl) GetHolidayEvents(w http.ResponseWriter, r *http.Request) {
	h.events(w, r, func(r *http.Request, start, end time.Time) ([]calendar.Event, error) {
		return h.calendarService.GetHolidayEvents(r.Context(), start, end)
	})
}

// ExportICS implements CalendarHandler
func (h *calendarHandlerImpl) ExportICS(w http.ResponseWriter, r *http.Request) {
	rng, err := h.rangeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	if err := h.calendarService.ExportICS(r.Context(), rng.From, rng.To, w); err != nil {
		// headers may already be flushed; log only
		slog.Error("ExportICS error", "error", err)
	}
}

// ListHolidays implements CalendarHandler
func (h *calendarHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || !validator.IsValidYear(parsed) {
			response.HandleError(w, validator.ValidationErrors{{Field: "year", Message: "year is invalid"}})
			return
		}
		year = parsed
	}

	holidays, err := h.calendarService.GetHolidays(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, holidays)
}

// CreateHoliday implements CalendarHandler
func (h *calendarHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req calendar.HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateHoliday decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.calendarService.CreateHoliday(r.Context(), req)
	if err != nil {
		slog.Error("CreateHoliday service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", result)
}

// UpdateHoliday implements CalendarHandler
func (h *calendarHandlerImpl) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	var req calendar.HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateHoliday decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.calendarService.UpdateHoliday(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		slog.Error("UpdateHoliday service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday updated successfully", result)
}

// DeleteHoliday implements CalendarHandler
func (h *calendarHandlerImpl) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.calendarService.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("DeleteHoliday service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}
