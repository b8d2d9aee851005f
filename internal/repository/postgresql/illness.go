package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/illness"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type illnessRepositoryImpl struct {
	db *database.DB
}

func NewIllnessRepository(db *database.DB) illness.IllnessRepository {
	return &illnessRepositoryImpl{db: db}
}

const illnessSelect = `
	SELECT ir.id, ir.employee_id, ir.type, ir.status, ir.start_date, ir.end_date, ir.description,
	       ir.medical_certificate_url, ir.medical_certificate_expiry, ir.follow_up_date, ir.notes,
	       ir.documents, ir.created_by, ir.updated_by, ir.created_at, ir.updated_at,
	       NULLIF(TRIM(e.first_name || ' ' || e.last_name), '')
	FROM illness_records ir
	JOIN employees e ON e.id = ir.employee_id`

func scanIllnessRecord(row pgx.Row) (illness.IllnessRecord, error) {
	var rec illness.IllnessRecord
	err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.Type,
		&rec.Status,
		&rec.StartDate,
		&rec.EndDate,
		&rec.Description,
		&rec.MedicalCertificateURL,
		&rec.MedicalCertificateExpiry,
		&rec.FollowUpDate,
		&rec.Notes,
		&rec.Documents,
		&rec.CreatedBy,
		&rec.UpdatedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return illness.IllnessRecord{}, illness.ErrIllnessRecordNotFound
		}
		return illness.IllnessRecord{}, err
	}
	if rec.Documents == nil {
		rec.Documents = []employee.Document{}
	}
	return rec, nil
}

func (r *illnessRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]illness.IllnessRecord, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]illness.IllnessRecord, 0)
	for rows.Next() {
		rec, err := scanIllnessRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *illnessRepositoryImpl) Create(ctx context.Context, record illness.IllnessRecord) (illness.IllnessRecord, error) {
	q := GetQuerier(ctx, r.db)

	if record.ID == "" {
		id, err := newID()
		if err != nil {
			return illness.IllnessRecord{}, err
		}
		record.ID = id
	}
	if record.Documents == nil {
		record.Documents = []employee.Document{}
	}

	query := `
		INSERT INTO illness_records (
			id, employee_id, type, status, start_date, end_date, description,
			medical_certificate_url, medical_certificate_expiry, follow_up_date, notes,
			documents, created_by, updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := q.Exec(ctx, query,
		record.ID,
		record.EmployeeID,
		record.Type,
		record.Status,
		record.StartDate,
		record.EndDate,
		record.Description,
		record.MedicalCertificateURL,
		record.MedicalCertificateExpiry,
		record.FollowUpDate,
		record.Notes,
		record.Documents,
		record.CreatedBy,
		record.UpdatedBy,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return illness.IllnessRecord{}, employee.ErrEmployeeNotFound
		}
		return illness.IllnessRecord{}, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *illnessRepositoryImpl) GetByID(ctx context.Context, id string) (illness.IllnessRecord, error) {
	q := GetQuerier(ctx, r.db)
	return scanIllnessRecord(q.QueryRow(ctx, illnessSelect+` WHERE ir.id = $1`, id))
}

func (r *illnessRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]illness.IllnessRecord, error) {
	return r.query(ctx, illnessSelect+` WHERE ir.employee_id = $1 ORDER BY ir.start_date DESC`, employeeID)
}

func (r *illnessRepositoryImpl) GetAllActive(ctx context.Context) ([]illness.IllnessRecord, error) {
	return r.query(ctx, illnessSelect+` WHERE ir.status = 'active' ORDER BY ir.start_date DESC`)
}

// Update applies a partial change. Empty optional dates and notes are cleared.
func (r *illnessRepositoryImpl) Update(ctx context.Context, id string, req illness.UpdateIllnessRequest, updatedBy string) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.StartDate != nil && *req.StartDate != "" {
		set("start_date", *req.StartDate)
	}
	if req.EndDate != nil {
		set("end_date", emptyToNil(*req.EndDate))
	}
	if req.Description != nil {
		set("description", strings.TrimSpace(*req.Description))
	}
	if req.MedicalCertificateExpiry != nil {
		set("medical_certificate_expiry", emptyToNil(*req.MedicalCertificateExpiry))
	}
	if req.FollowUpDate != nil {
		set("follow_up_date", emptyToNil(*req.FollowUpDate))
	}
	if req.Notes != nil {
		set("notes", emptyToNil(*req.Notes))
	}
	set("updated_by", updatedBy)

	q := GetQuerier(ctx, r.db)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE illness_records SET %s, updated_at = NOW() WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	return execOne(ctx, q, illness.ErrIllnessRecordNotFound, query, args...)
}

func (r *illnessRepositoryImpl) UpdateStatus(ctx context.Context, id string, status illness.IllnessStatus, endDate *time.Time, updatedBy string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE illness_records
		SET status = $2, end_date = COALESCE($3, end_date), updated_by = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`
	tag, err := q.Exec(ctx, query, id, status, endDate, updatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return illness.ErrInvalidStatusTransition
	}
	return nil
}

func (r *illnessRepositoryImpl) SetMedicalCertificate(ctx context.Context, id string, path string, expiry *time.Time, doc employee.Document, updatedBy string) error {
	q := GetQuerier(ctx, r.db)
	return execOne(ctx, q, illness.ErrIllnessRecordNotFound, `
		UPDATE illness_records
		SET medical_certificate_url = $2,
		    medical_certificate_expiry = COALESCE($3, medical_certificate_expiry),
		    documents = documents || $4::jsonb,
		    updated_by = $5,
		    updated_at = NOW()
		WHERE id = $1
	`, id, path, expiry, []employee.Document{doc}, updatedBy)
}

func (r *illnessRepositoryImpl) GetStatistics(ctx context.Context) (illness.Statistics, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT status, type, COUNT(*) FROM illness_records GROUP BY status, type`)
	if err != nil {
		return illness.Statistics{}, err
	}
	defer rows.Close()

	stats := illness.Statistics{ByType: make(map[illness.IllnessType]int64)}
	for rows.Next() {
		var status illness.IllnessStatus
		var illnessType illness.IllnessType
		var count int64
		if err := rows.Scan(&status, &illnessType, &count); err != nil {
			return illness.Statistics{}, err
		}
		switch status {
		case illness.IllnessStatusActive:
			stats.TotalActive += count
		case illness.IllnessStatusRecovered:
			stats.TotalRecovered += count
		case illness.IllnessStatusChronic:
			stats.TotalChronic += count
		}
		stats.ByType[illnessType] += count
	}
	return stats, rows.Err()
}

func (r *illnessRepositoryImpl) GetCertificatesExpiringBetween(ctx context.Context, from, to time.Time) ([]illness.IllnessRecord, error) {
	return r.query(ctx, illnessSelect+`
		WHERE ir.medical_certificate_expiry BETWEEN $1 AND $2
		  AND ir.status <> 'recovered'
		ORDER BY ir.medical_certificate_expiry ASC`, from, to)
}

func (r *illnessRepositoryImpl) GetFollowUpsOn(ctx context.Context, day time.Time) ([]illness.IllnessRecord, error) {
	return r.query(ctx, illnessSelect+` WHERE ir.follow_up_date = $1 ORDER BY ir.start_date DESC`, day)
}

func (r *illnessRepositoryImpl) ClaimReminder(ctx context.Context, illnessID string, kind illness.ReminderKind, dueOn time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		INSERT INTO illness_reminders (illness_id, kind, due_on)
		VALUES ($1, $2, $3)
		ON CONFLICT (illness_id, kind, due_on) DO NOTHING
	`, illnessID, kind, dueOn)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *illnessRepositoryImpl) ReleaseReminder(ctx context.Context, illnessID string, kind illness.ReminderKind, dueOn time.Time) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM illness_reminders WHERE illness_id = $1 AND kind = $2 AND due_on = $3`, illnessID, kind, dueOn)
	return err
}
