package claim

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

type CreateClaimRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	IsUrgent    bool   `json:"is_urgent"`
}

func (r *CreateClaimRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if validator.IsEmpty(r.Type) {
		errs.Add("type", "type is required")
	} else if !ClaimType(r.Type).IsValid() {
		errs.Add("type", "type must be one of material, account, other")
	}

	r.Description = strings.TrimSpace(r.Description)
	if validator.IsEmpty(r.Description) {
		errs.Add("description", "description is required")
	} else if len(r.Description) > 2000 {
		errs.Add("description", "description must not exceed 2000 characters")
	}

	return errs.Err()
}

// ProcessClaimRequest carries an optional note for the employee.
type ProcessClaimRequest struct {
	Note string `json:"note"`
}

func (r *ProcessClaimRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Note = strings.TrimSpace(r.Note)
	if len(r.Note) > 1000 {
		errs.Add("note", "note must not exceed 1000 characters")
	}
	return errs.Err()
}

type RejectClaimRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectClaimRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Reason = strings.TrimSpace(r.Reason)
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required when rejecting a claim")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}
	return errs.Err()
}

type UploadAttachmentRequest struct {
	File     io.Reader
	FileName string
	Size     int64
}

// MaxAttachmentSize bounds claim attachments at 10 MiB.
const MaxAttachmentSize = 10 << 20

func (r *UploadAttachmentRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.File == nil {
		errs.Add("file", "file is required")
	}
	if validator.IsEmpty(r.FileName) || filepath.Base(r.FileName) != r.FileName {
		errs.Add("file", "file name is invalid")
	}
	if r.Size > MaxAttachmentSize {
		errs.Add("file", "file exceeds the 10 MiB limit")
	}
	return errs.Err()
}

type ClaimFilter struct {
	Status     *ClaimStatus
	Type       *ClaimType
	IsUrgent   *bool
	EmployeeID *string
	Page       int
	Limit      int
}

func (f *ClaimFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ClaimResponse struct {
	ID             string      `json:"id"`
	EmployeeID     string      `json:"employee_id"`
	EmployeeName   *string     `json:"employee_name,omitempty"`
	Type           ClaimType   `json:"type"`
	Description    string      `json:"description"`
	IsUrgent       bool        `json:"is_urgent"`
	Status         ClaimStatus `json:"status"`
	AttachmentURL  *string     `json:"attachment_url,omitempty"`
	ProcessedBy    *string     `json:"processed_by,omitempty"`
	ResolutionNote *string     `json:"resolution_note,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (c Claim) ToResponse() ClaimResponse {
	return ClaimResponse{
		ID:             c.ID,
		EmployeeID:     c.EmployeeID,
		EmployeeName:   c.EmployeeName,
		Type:           c.Type,
		Description:    c.Description,
		IsUrgent:       c.IsUrgent,
		Status:         c.Status,
		AttachmentURL:  c.AttachmentURL,
		ProcessedBy:    c.ProcessedBy,
		ResolutionNote: c.ResolutionNote,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func ToResponses(claims []Claim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, c.ToResponse())
	}
	return out
}
