package handlers

import (
	"net/http"

	authsvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/auth"
	mediasvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/media"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/dto"
	httperrors "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/errors"
)

// multipart framing on top of the file itself
const multipartOverhead = 1 << 20

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	maxBytes := h.service.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	upload, err := h.service.Upload(r.Context(), identity.AccountID, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		writeServiceError(w, err, "media upload failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MediaUploadResponse{
		URL:         upload.URL,
		Key:         upload.Key,
		ContentType: upload.ContentType,
		Size:        upload.Size,
	})
}
