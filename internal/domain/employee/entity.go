package employee

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID               string
	UserID           *string
	FirstName        string
	LastName         string
	Email            string
	Position         string
	Department       string
	HireDate         time.Time
	Phone            *string
	Address          *string
	EmergencyContact *EmergencyContact
	ProfilePicture   *string
	Documents        []Document
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName joins first and last name, skipping empty parts.
func (e Employee) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

// IsLinkedTo reports whether the employee record belongs to the given user.
func (e Employee) IsLinkedTo(userID string) bool {
	return e.UserID != nil && *e.UserID == userID
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type DocumentType string

const (
	DocumentTypeContract    DocumentType = "contract"
	DocumentTypeID          DocumentType = "id"
	DocumentTypeCertificate DocumentType = "certificate"
	DocumentTypeMedical     DocumentType = "medical"
	DocumentTypeOther       DocumentType = "other"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeContract, DocumentTypeID, DocumentTypeCertificate, DocumentTypeMedical, DocumentTypeOther:
		return true
	}
	return false
}

// Document is a file attached to an employee or illness record. URL holds the storage path.
type Document struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	URL        string       `json:"url"`
	UploadDate time.Time    `json:"upload_date"`
	Type       DocumentType `json:"type"`
}

// NewDocument stamps a document entry with a time-ordered id.
func NewDocument(name, url string, docType DocumentType, uploaded time.Time) (Document, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Document{}, fmt.Errorf("generate document id: %w", err)
	}
	return Document{ID: id.String(), Name: name, URL: url, UploadDate: uploaded, Type: docType}, nil
}

const MaxDocumentSize = 10 << 20
