package calendar

import "context"

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	GetByID(ctx context.Context, id string) (Holiday, error)
	// ListForYears returns recurring holidays plus those dated within [fromYear, toYear].
	ListForYears(ctx context.Context, fromYear, toYear int) ([]Holiday, error)
	Update(ctx context.Context, h Holiday) error
	Delete(ctx context.Context, id string) error
	// Upsert inserts or updates by (name, date) and reports whether a row was inserted.
	Upsert(ctx context.Context, h Holiday) (bool, error)
}
