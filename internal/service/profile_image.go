package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devhive/identity-server/internal/apperrors"
	"github.com/devhive/identity-server/internal/logger"
	"github.com/devhive/identity-server/internal/model"
	storage "github.com/devhive/identity-server/internal/storage/minio"
)

const profileImageNamespace = "profiles"

// ProfileImage manages the document records and stored bytes of account
// profile images. Accounts reference documents by ID; the bytes live in
// object storage and only the resulting URL is kept.
type ProfileImage struct {
	userStore     model.UserStore
	documentStore model.DocumentStore
	storage       model.Storage
	logger        *logger.Logger
}

func NewProfileImage(
	userStore model.UserStore,
	documentStore model.DocumentStore,
	storage model.Storage,
	logger *logger.Logger,
) *ProfileImage {
	return &ProfileImage{
		userStore:     userStore,
		documentStore: documentStore,
		storage:       storage,
		logger:        logger,
	}
}

// UploadParams describes an incoming image file.
type UploadParams struct {
	Filename    string
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Upload stores a standalone profile image and returns its document. The
// document can later be attached during sign-up or OAuth completion.
func (s *ProfileImage) Upload(ctx context.Context, params UploadParams) (model.Document, error) {
	if err := validateImageName(params.Filename); err != nil {
		return model.Document{}, err
	}

	path := storage.BuildPath(params.Filename, profileImageNamespace)
	url, err := s.storage.Upload(ctx, path, params.Reader, params.Size, params.ContentType)
	if err != nil {
		s.logger.Error("ProfileImage service: upload failed",
			"filename", params.Filename,
			"error", err.Error())
		return model.Document{}, fmt.Errorf("failed to upload profile image: %w", err)
	}

	doc, err := s.documentStore.Create(ctx, model.Document{
		ID:        uuid.New(),
		InputName: params.Filename,
		Path:      path,
		URL:       url,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

// Get returns the caller's current profile image document.
func (s *ProfileImage) Get(ctx context.Context, userID uuid.UUID) (model.Document, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Document{}, apperrors.NewErrUserNotFound()
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if user.ProfileImageID == nil {
		return model.Document{}, apperrors.NewErrProfileImageNotFound()
	}

	doc, err := s.documentStore.GetByID(ctx, *user.ProfileImageID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Document{}, apperrors.NewErrProfileImageNotFound()
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to get document by id: %w", err)
	}

	return doc, nil
}

// Update replaces the caller's profile image. An existing image is deleted
// from object storage and its document rewritten in place; otherwise a new
// document is created and attached to the account.
func (s *ProfileImage) Update(ctx context.Context, userID uuid.UUID, params UploadParams) (model.Document, error) {
	if err := validateImageName(params.Filename); err != nil {
		return model.Document{}, err
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Document{}, apperrors.NewErrUserNotFound()
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	path := storage.BuildPath(params.Filename, profileImageNamespace)
	url, err := s.storage.Upload(ctx, path, params.Reader, params.Size, params.ContentType)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to upload profile image: %w", err)
	}

	if user.ProfileImageID == nil {
		doc, err := s.documentStore.Create(ctx, model.Document{
			ID:        uuid.New(),
			InputName: params.Filename,
			Path:      path,
			URL:       url,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
		if err != nil {
			return model.Document{}, fmt.Errorf("failed to create document: %w", err)
		}

		if _, err := s.userStore.Save(ctx, user.WithProfileImage(doc.ID)); err != nil {
			return model.Document{}, fmt.Errorf("failed to save user: %w", err)
		}

		return doc, nil
	}

	doc, err := s.documentStore.GetByID(ctx, *user.ProfileImageID)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to get document by id: %w", err)
	}

	if err := s.storage.Delete(ctx, doc.Path); err != nil {
		s.logger.Error("ProfileImage service: failed to delete replaced image",
			"path", doc.Path,
			"error", err.Error())
		return model.Document{}, fmt.Errorf("failed to delete replaced image: %w", err)
	}

	doc.InputName = params.Filename
	doc.Path = path
	doc.URL = url

	savedDoc, err := s.documentStore.Save(ctx, doc)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to save document: %w", err)
	}

	return savedDoc, nil
}

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

func validateImageName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return apperrors.NewErrInvalidImageFile()
	}
	return nil
}
