package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/calendar"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `id, name, date, is_recurring, created_at, updated_at`

func scanHoliday(row pgx.Row) (calendar.Holiday, error) {
	var h calendar.Holiday
	err := row.Scan(&h.ID, &h.Name, &h.Date, &h.IsRecurring, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Holiday{}, calendar.ErrHolidayNotFound
		}
		return calendar.Holiday{}, err
	}
	return h, nil
}

func (r *holidayRepositoryImpl) Create(ctx context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	if h.ID == "" {
		id, err := newID()
		if err != nil {
			return calendar.Holiday{}, err
		}
		h.ID = id
	}

	query := `
		INSERT INTO holidays (id, name, date, is_recurring)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + holidayColumns
	created, err := scanHoliday(q.QueryRow(ctx, query, h.ID, h.Name, h.Date, h.IsRecurring))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return calendar.Holiday{}, calendar.ErrHolidayExists
		}
		return calendar.Holiday{}, err
	}
	return created, nil
}

func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string) (calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	return scanHoliday(q.QueryRow(ctx, `SELECT `+holidayColumns+` FROM holidays WHERE id = $1`, id))
}

func (r *holidayRepositoryImpl) ListForYears(ctx context.Context, fromYear, toYear int) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + holidayColumns + `
		FROM holidays
		WHERE is_recurring OR EXTRACT(YEAR FROM date)::int BETWEEN $1 AND $2
		ORDER BY date ASC, name ASC
	`
	rows, err := q.Query(ctx, query, fromYear, toYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]calendar.Holiday, 0)
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (r *holidayRepositoryImpl) Update(ctx context.Context, h calendar.Holiday) error {
	q := GetQuerier(ctx, r.db)
	err := execOne(ctx, q, calendar.ErrHolidayNotFound, `
		UPDATE holidays
		SET name = $2, date = $3, is_recurring = $4, updated_at = NOW()
		WHERE id = $1
	`, h.ID, h.Name, h.Date, h.IsRecurring)
	if database.IsUniqueViolation(err) {
		return calendar.ErrHolidayExists
	}
	return err
}

func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, calendar.ErrHolidayNotFound, `DELETE FROM holidays WHERE id = $1`, id)
}

// Upsert relies on xmax being zero only for freshly inserted tuples.
func (r *holidayRepositoryImpl) Upsert(ctx context.Context, h calendar.Holiday) (bool, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return false, err
	}

	var inserted bool
	err = q.QueryRow(ctx, `
		INSERT INTO holidays (id, name, date, is_recurring)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, date)
		DO UPDATE SET is_recurring = EXCLUDED.is_recurring, updated_at = NOW()
		RETURNING (xmax = 0)
	`, id, h.Name, h.Date, h.IsRecurring).Scan(&inserted)
	if err != nil {
		return false, err
	}
	return inserted, nil
}
