package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/devhive/identity-server/internal/apperrors"
	"github.com/devhive/identity-server/internal/logger"
	"github.com/devhive/identity-server/internal/model"
	"github.com/devhive/identity-server/internal/service"
)

// maxImageSize bounds multipart memory use for profile image uploads.
const maxImageSize = 10 << 20

// ProfileImageService defines profile image storage operations.
type ProfileImageService interface {
	Upload(ctx context.Context, params service.UploadParams) (model.Document, error)
	Get(ctx context.Context, userID uuid.UUID) (model.Document, error)
	Update(ctx context.Context, userID uuid.UUID, params service.UploadParams) (model.Document, error)
}

// ProfileImage handles HTTP endpoints for profile image upload and lookup.
type ProfileImage struct {
	imageService   ProfileImageService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewProfileImage creates a new ProfileImage handler.
func NewProfileImage(imageService ProfileImageService, contextManager model.ContextManager, logger *logger.Logger) *ProfileImage {
	return &ProfileImage{
		imageService:   imageService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type documentResponse struct {
	ID        string `json:"id"`
	InputName string `json:"input_name"`
	URL       string `json:"url"`
}

func toDocumentResponse(doc model.Document) documentResponse {
	return documentResponse{
		ID:        doc.ID.String(),
		InputName: doc.InputName,
		URL:       doc.URL,
	}
}

func (h *ProfileImage) uploadParams(r *http.Request) (service.UploadParams, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return service.UploadParams{}, err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return service.UploadParams{}, err
	}

	return service.UploadParams{
		Filename:    header.Filename,
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

// Upload stores a standalone profile image and returns its document. The
// returned document ID can be attached during sign-up.
func (h *ProfileImage) Upload(w http.ResponseWriter, r *http.Request) {
	params, err := h.uploadParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "image file is required")
		return
	}

	h.logger.Debug("ProfileImage handler: processing upload",
		"filename", params.Filename)

	doc, err := h.imageService.Upload(r.Context(), params)
	if err != nil {
		h.logger.Error("ProfileImage handler: upload failed",
			"filename", params.Filename,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("ProfileImage handler: upload completed",
		"document_id", doc.ID)

	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

// Get returns the caller's current profile image document.
func (h *ProfileImage) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, apperrors.CodeAuthentication, "missing authorization token")
		return
	}

	doc, err := h.imageService.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("ProfileImage handler: lookup failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// Update replaces the caller's profile image.
func (h *ProfileImage) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, apperrors.CodeAuthentication, "missing authorization token")
		return
	}

	params, err := h.uploadParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "image file is required")
		return
	}

	h.logger.Debug("ProfileImage handler: processing replacement",
		"user_id", userID,
		"filename", params.Filename)

	doc, err := h.imageService.Update(r.Context(), userID, params)
	if err != nil {
		h.logger.Error("ProfileImage handler: replacement failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("ProfileImage handler: replacement completed",
		"user_id", userID,
		"document_id", doc.ID)

	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}
