package file

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/storage"
	"github.com/google/uuid"
)

// FileService lays out uploaded files in the storage backend. Every method returns the storage key.
type FileService interface {
	// Avatar uploads
	UploadAvatar(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)

	// Document uploads
	UploadEmployeeDocument(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)
	UploadMedicalCertificate(ctx context.Context, employeeID, illnessID string, file io.Reader, filename string) (string, error)
	UploadClaimAttachment(ctx context.Context, employeeID, claimID string, file io.Reader, filename string) (string, error)

	// Payslip PDFs, stored under a fixed key so re-uploads replace the file
	UploadPayslipPDF(ctx context.Context, payslipID string, file io.Reader) (string, error)
	PayslipPDFPath(payslipID string) string

	// Generic operations
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

var avatarExts = []string{".jpg", ".jpeg", ".png"}

// UploadAvatar uploads employee avatar
func (s *fileServiceImpl) UploadAvatar(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	// Validate file extension
	ext := strings.ToLower(filepath.Ext(filename))

	isValid := false
	for _, allowed := range avatarExts {
		if ext == allowed {
			isValid = true
			break
		}
	}

	if !isValid {
		return "", fmt.Errorf("invalid file type: only jpg, jpeg, png allowed")
	}

	// Generate unique filename so cached URLs change with the picture
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate avatar name: %w", err)
	}
	newFilename := fmt.Sprintf("avatar-%s%s", id.String(), ext)
	key := path.Join("employees", employeeID, newFilename)

	uploadedPath, err := s.storage.Upload(ctx, file, key, contentType(ext))
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return uploadedPath, nil
}

// UploadEmployeeDocument stores at employees/{employeeID}/documents/{filename}.
func (s *fileServiceImpl) UploadEmployeeDocument(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	name, err := baseName(filename)
	if err != nil {
		return "", err
	}
	key := path.Join("employees", employeeID, "documents", name)

	uploadedPath, err := s.storage.Upload(ctx, file, key, contentType(filepath.Ext(name)))
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	return uploadedPath, nil
}

// UploadMedicalCertificate stores at employees/{employeeID}/medical/{illnessID}/{filename}.
func (s *fileServiceImpl) UploadMedicalCertificate(ctx context.Context, employeeID, illnessID string, file io.Reader, filename string) (string, error) {
	name, err := baseName(filename)
	if err != nil {
		return "", err
	}
	key := path.Join("employees", employeeID, "medical", illnessID, name)

	uploadedPath, err := s.storage.Upload(ctx, file, key, contentType(filepath.Ext(name)))
	if err != nil {
		return "", fmt.Errorf("failed to upload medical certificate: %w", err)
	}

	return uploadedPath, nil
}

// UploadClaimAttachment stores at employees/{employeeID}/claims/{claimID}/{filename}.
func (s *fileServiceImpl) UploadClaimAttachment(ctx context.Context, employeeID, claimID string, file io.Reader, filename string) (string, error) {
	name, err := baseName(filename)
	if err != nil {
		return "", err
	}
	key := path.Join("employees", employeeID, "claims", claimID, name)

	uploadedPath, err := s.storage.Upload(ctx, file, key, contentType(filepath.Ext(name)))
	if err != nil {
		return "", fmt.Errorf("failed to upload claim attachment: %w", err)
	}

	return uploadedPath, nil
}

func (s *fileServiceImpl) PayslipPDFPath(payslipID string) string {
	return path.Join("payslips", payslipID+".pdf")
}

func (s *fileServiceImpl) UploadPayslipPDF(ctx context.Context, payslipID string, file io.Reader) (string, error) {
	uploadedPath, err := s.storage.Upload(ctx, file, s.PayslipPDFPath(payslipID), "application/pdf")
	if err != nil {
		return "", fmt.Errorf("failed to upload payslip pdf: %w", err)
	}
	return uploadedPath, nil
}

func (s *fileServiceImpl) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, key)
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, key, expiry)
}

// ==================== HELPER FUNCTIONS ====================

func baseName(filename string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == ".." || name == string(filepath.Separator) || strings.TrimSpace(name) == "" {
		return "", storage.ErrInvalidPath
	}
	return name, nil
}

func contentType(ext string) string {
	if ct := mime.TypeByExtension(strings.ToLower(ext)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
