package handlers

import (
	"net/http"
	"path"

	"github.com/aroundu/app/internal/middleware"
	"github.com/aroundu/app/internal/models"
	"github.com/aroundu/app/internal/upload"
)

type PhotoHandler struct {
	uploader  upload.Uploader
	maxSizeMB int64
}

func NewPhotoHandler(uploader upload.Uploader, maxSizeMB int64) *PhotoHandler {
	return &PhotoHandler{
		uploader:  uploader,
		maxSizeMB: maxSizeMB,
	}
}

// Upload receives a multipart profile photo and stores it under the
// pending prefix keyed by the account email.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Account email is required for uploads"))
		return
	}

	// Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxSizeMB * 1024 * 1024); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("File too large or invalid form data"))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("No photo file provided"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !isValidImageType(contentType) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid image type. Allowed: JPEG, PNG, WebP"))
		return
	}

	res, err := h.uploader.Upload(r.Context(), file, contentType, h.maxSizeMB*1024*1024, path.Join(email, "photo"))
	if err != nil {
		if err == upload.ErrFileTooLarge {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Max file size is 8MB"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to upload photo"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.PhotoUploadResponse{
		URL:  res.URL,
		Path: res.Path,
	}))
}

func isValidImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}
