package calendar

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

type RangeRequest struct {
	Start string
	End   string

	From time.Time
	To   time.Time
}

func (r *RangeRequest) Validate() error {
	var errs validator.ValidationErrors

	from, okFrom := validator.IsValidDate(r.Start)
	if !okFrom {
		errs.Add("start", "start must be in YYYY-MM-DD format")
	}
	to, okTo := validator.IsValidDate(r.End)
	if !okTo {
		errs.Add("end", "end must be in YYYY-MM-DD format")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if err := ValidateRange(from, to); err != nil {
		errs.Add("end", err.Error())
		return errs
	}

	r.From, r.To = from, to
	return nil
}

// ValidateRange enforces start <= end and a span of at most MaxRangeDays.
func ValidateRange(start, end time.Time) error {
	if end.Before(start) || end.Sub(start) > MaxRangeDays*24*time.Hour {
		return ErrInvalidRange
	}
	return nil
}

type HolidayRequest struct {
	Name        string `json:"name" yaml:"name"`
	Date        string `json:"date" yaml:"date"`
	IsRecurring bool   `json:"is_recurring" yaml:"recurring"`

	Day time.Time `json:"-" yaml:"-"`
}

func (r *HolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}

	day, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	r.Day = day

	return errs.Err()
}

type HolidayResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	IsRecurring bool   `json:"is_recurring"`
}

func (h Holiday) ToResponse() HolidayResponse {
	return HolidayResponse{
		ID:          h.ID,
		Name:        h.Name,
		Date:        h.Date.Format("2006-01-02"),
		IsRecurring: h.IsRecurring,
	}
}
