package employee

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	UserID           *string           `json:"user_id,omitempty"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Email            string            `json:"email"`
	Position         string            `json:"position"`
	Department       string            `json:"department"`
	HireDate         string            `json:"hire_date"`
	Phone            *string           `json:"phone,omitempty"`
	Address          *string           `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID != nil && !validator.IsValidUUID(*r.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}

	validateName(&errs, "first_name", r.FirstName)
	validateName(&errs, "last_name", r.LastName)

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}

	if len(r.Position) > 100 {
		errs.Add("position", "position must not exceed 100 characters")
	}
	if len(r.Department) > 100 {
		errs.Add("department", "department must not exceed 100 characters")
	}

	if validator.IsEmpty(r.HireDate) {
		errs.Add("hire_date", "hire_date is required")
	} else if _, ok := validator.IsValidDate(r.HireDate); !ok {
		errs.Add("hire_date", "hire_date must be in YYYY-MM-DD format")
	}

	validateContact(&errs, r.Phone, r.EmergencyContact)

	return errs.Err()
}

// UpdateEmployeeRequest is a partial update; nil fields are left untouched.
type UpdateEmployeeRequest struct {
	FirstName        *string           `json:"first_name,omitempty"`
	LastName         *string           `json:"last_name,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Position         *string           `json:"position,omitempty"`
	Department       *string           `json:"department,omitempty"`
	HireDate         *string           `json:"hire_date,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	Address          *string           `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FirstName == nil && r.LastName == nil && r.Email == nil && r.Position == nil &&
		r.Department == nil && r.HireDate == nil && r.Phone == nil && r.Address == nil && r.EmergencyContact == nil {
		errs.Add("request", "at least one field must be provided")
		return errs
	}

	if r.FirstName != nil {
		validateName(&errs, "first_name", *r.FirstName)
	}
	if r.LastName != nil {
		validateName(&errs, "last_name", *r.LastName)
	}
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &email
		if !validator.IsValidEmail(email) {
			errs.Add("email", "email must be a valid email address")
		}
	}
	if r.HireDate != nil {
		if _, ok := validator.IsValidDate(*r.HireDate); !ok {
			errs.Add("hire_date", "hire_date must be in YYYY-MM-DD format")
		}
	}

	validateContact(&errs, r.Phone, r.EmergencyContact)

	return errs.Err()
}

// UpdateOwnProfileRequest is what an employee may change on their own record.
type UpdateOwnProfileRequest struct {
	Phone            *string           `json:"phone,omitempty"`
	Address          *string           `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
}

func (r *UpdateOwnProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Phone == nil && r.Address == nil && r.EmergencyContact == nil {
		errs.Add("request", "at least one of phone, address or emergency_contact must be provided")
		return errs
	}
	if r.Address != nil && len(*r.Address) > 500 {
		errs.Add("address", "address must not exceed 500 characters")
	}
	validateContact(&errs, r.Phone, r.EmergencyContact)

	return errs.Err()
}

func validateName(errs *validator.ValidationErrors, field, value string) {
	if validator.IsEmpty(value) {
		errs.Add(field, field+" is required")
	} else if len(value) > 100 {
		errs.Add(field, field+" must not exceed 100 characters")
	}
}

func validateContact(errs *validator.ValidationErrors, phone *string, contact *EmergencyContact) {
	if phone != nil && *phone != "" && !validator.IsValidPhoneNumber(*phone) {
		errs.Add("phone", "phone must be a valid phone number")
	}
	if contact != nil {
		if validator.IsEmpty(contact.Name) {
			errs.Add("emergency_contact.name", "emergency contact name is required")
		}
		if !validator.IsValidPhoneNumber(contact.Phone) {
			errs.Add("emergency_contact.phone", "emergency contact phone must be a valid phone number")
		}
	}
}

type EmployeeFilter struct {
	Search     string
	Department string
	Page       int
	Limit      int
}

func (f *EmployeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	f.Search = strings.TrimSpace(f.Search)
}

type UploadDocumentRequest struct {
	File     io.Reader
	FileName string
	Size     int64
	Name     string
	Type     DocumentType
}

func (r *UploadDocumentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs.Add("file", "file is required")
	}
	if validator.IsEmpty(r.FileName) || filepath.Base(r.FileName) != r.FileName {
		errs.Add("file", "file name is invalid")
	}
	if r.Size > MaxDocumentSize {
		errs.Add("file", "file must not exceed 10 MiB")
	}
	if r.Name == "" {
		r.Name = r.FileName
	}
	if r.Type == "" {
		r.Type = DocumentTypeOther
	}
	if !r.Type.IsValid() {
		errs.Add("type", "type must be one of contract, id, certificate, medical, other")
	}

	return errs.Err()
}

type UploadAvatarRequest struct {
	File     io.Reader
	FileName string
	Size     int64
}

func (r *UploadAvatarRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs.Add("avatar", "avatar file is required")
	}
	ext := strings.ToLower(filepath.Ext(r.FileName))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		errs.Add("avatar", "avatar must be a jpg or png image")
	}
	if r.Size > MaxDocumentSize {
		errs.Add("avatar", "avatar must not exceed 10 MiB")
	}

	return errs.Err()
}

type EmployeeResponse struct {
	ID               string            `json:"id"`
	UserID           *string           `json:"user_id,omitempty"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	FullName         string            `json:"full_name"`
	Email            string            `json:"email"`
	Position         string            `json:"position"`
	Department       string            `json:"department"`
	HireDate         string            `json:"hire_date"`
	Phone            *string           `json:"phone,omitempty"`
	Address          *string           `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	ProfilePicture   *string           `json:"profile_picture,omitempty"`
	Documents        []Document        `json:"documents"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (e Employee) ToResponse() EmployeeResponse {
	docs := e.Documents
	if docs == nil {
		docs = []Document{}
	}
	return EmployeeResponse{
		ID:               e.ID,
		UserID:           e.UserID,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		FullName:         e.FullName(),
		Email:            e.Email,
		Position:         e.Position,
		Department:       e.Department,
		HireDate:         e.HireDate.Format("2006-01-02"),
		Phone:            e.Phone,
		Address:          e.Address,
		EmergencyContact: e.EmergencyContact,
		ProfilePicture:   e.ProfilePicture,
		Documents:        docs,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
