package illness

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

type CreateIllnessRequest struct {
	// EmployeeID defaults to the caller's own record when empty.
	EmployeeID   string  `json:"employee_id,omitempty"`
	Type         string  `json:"type"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date,omitempty"`
	Description  string  `json:"description"`
	FollowUpDate *string `json:"follow_up_date,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	Start    time.Time  `json:"-"`
	End      *time.Time `json:"-"`
	FollowUp *time.Time `json:"-"`
}

func (r *CreateIllnessRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if !IllnessType(r.Type).IsValid() {
		errs.Add("type", "type must be one of sick_leave, work_accident, long_term, other")
	}

	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	r.End = parseOptionalDate(&errs, "end_date", r.EndDate)
	if ok && r.End != nil && r.End.Before(start) {
		errs.Add("end_date", "end_date must be on or after start_date")
	}
	r.FollowUp = parseOptionalDate(&errs, "follow_up_date", r.FollowUpDate)

	if validator.IsEmpty(r.Description) {
		errs.Add("description", "description is required")
	} else if len(r.Description) > 2000 {
		errs.Add("description", "description must not exceed 2000 characters")
	}

	r.Start = start
	return errs.Err()
}

type UpdateIllnessRequest struct {
	StartDate                *string `json:"start_date,omitempty"`
	EndDate                  *string `json:"end_date,omitempty"`
	Description              *string `json:"description,omitempty"`
	MedicalCertificateExpiry *string `json:"medical_certificate_expiry,omitempty"`
	FollowUpDate             *string `json:"follow_up_date,omitempty"`
	Notes                    *string `json:"notes,omitempty"`
}

func (r *UpdateIllnessRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.StartDate == nil && r.EndDate == nil && r.Description == nil &&
		r.MedicalCertificateExpiry == nil && r.FollowUpDate == nil && r.Notes == nil {
		errs.Add("request", "at least one field must be provided")
		return errs
	}

	start := parseOptionalDate(&errs, "start_date", r.StartDate)
	end := parseOptionalDate(&errs, "end_date", r.EndDate)
	if start != nil && end != nil && end.Before(*start) {
		errs.Add("end_date", "end_date must be on or after start_date")
	}
	parseOptionalDate(&errs, "medical_certificate_expiry", r.MedicalCertificateExpiry)
	parseOptionalDate(&errs, "follow_up_date", r.FollowUpDate)

	if r.Description != nil && validator.IsEmpty(*r.Description) {
		errs.Add("description", "description must not be empty")
	}

	return errs.Err()
}

type UpdateStatusRequest struct {
	Status  string  `json:"status"`
	EndDate *string `json:"end_date,omitempty"`

	End *time.Time `json:"-"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if !IllnessStatus(r.Status).IsValid() {
		errs.Add("status", "status must be one of active, recovered, chronic")
	}
	r.End = parseOptionalDate(&errs, "end_date", r.EndDate)

	return errs.Err()
}

type UploadCertificateRequest struct {
	File     io.Reader
	FileName string
	Size     int64
	Expiry   *string

	ExpiryDate *time.Time
}

func (r *UploadCertificateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs.Add("file", "file is required")
	}
	if validator.IsEmpty(r.FileName) || filepath.Base(r.FileName) != r.FileName {
		errs.Add("file", "file name is invalid")
	}
	if r.Size > employee.MaxDocumentSize {
		errs.Add("file", "file must not exceed 10 MiB")
	}
	r.ExpiryDate = parseOptionalDate(&errs, "expiry", r.Expiry)

	return errs.Err()
}

func parseOptionalDate(errs *validator.ValidationErrors, field string, value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, ok := validator.IsValidDate(*value)
	if !ok {
		errs.Add(field, field+" must be in YYYY-MM-DD format")
		return nil
	}
	return &t
}

type IllnessRecordResponse struct {
	ID                       string              `json:"id"`
	EmployeeID               string              `json:"employee_id"`
	EmployeeName             *string             `json:"employee_name,omitempty"`
	Type                     IllnessType         `json:"type"`
	Status                   IllnessStatus       `json:"status"`
	StartDate                string              `json:"start_date"`
	EndDate                  *string             `json:"end_date,omitempty"`
	Description              string              `json:"description"`
	MedicalCertificateURL    *string             `json:"medical_certificate_url,omitempty"`
	MedicalCertificateExpiry *string             `json:"medical_certificate_expiry,omitempty"`
	FollowUpDate             *string             `json:"follow_up_date,omitempty"`
	Notes                    *string             `json:"notes,omitempty"`
	Documents                []employee.Document `json:"documents"`
	CreatedBy                string              `json:"created_by"`
	UpdatedBy                string              `json:"updated_by"`
	CreatedAt                time.Time           `json:"created_at"`
	UpdatedAt                time.Time           `json:"updated_at"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func (r IllnessRecord) ToResponse() IllnessRecordResponse {
	docs := r.Documents
	if docs == nil {
		docs = []employee.Document{}
	}
	return IllnessRecordResponse{
		ID:                       r.ID,
		EmployeeID:               r.EmployeeID,
		EmployeeName:             r.EmployeeName,
		Type:                     r.Type,
		Status:                   r.Status,
		StartDate:                r.StartDate.Format("2006-01-02"),
		EndDate:                  formatDate(r.EndDate),
		Description:              r.Description,
		MedicalCertificateURL:    r.MedicalCertificateURL,
		MedicalCertificateExpiry: formatDate(r.MedicalCertificateExpiry),
		FollowUpDate:             formatDate(r.FollowUpDate),
		Notes:                    r.Notes,
		Documents:                docs,
		CreatedBy:                r.CreatedBy,
		UpdatedBy:                r.UpdatedBy,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

func ToResponses(records []IllnessRecord) []IllnessRecordResponse {
	out := make([]IllnessRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToResponse())
	}
	return out
}
