package http

import (
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"

	"github.com/cmlabs-hris/hr-portal-backend/internal/handler/http/response"
)

// multipartOverhead leaves room for form fields next to the file part.
const multipartOverhead = 1 << 20

func paginationMeta(page, limit int, total int64) *response.Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// readFormFile parses a multipart body capped at maxSize plus form overhead and returns
// the named file part. It writes the 400 response itself when ok is false.
func readFormFile(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize + multipartOverhead); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		response.BadRequest(w, "Field '"+field+"' is required", nil)
		return nil, nil, false
	}
	return file, header, true
}

func optionalQuery(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}
