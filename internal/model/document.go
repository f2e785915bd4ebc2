package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DocumentStore defines persistence operations for uploaded documents.
type DocumentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Document, error)
	Create(ctx context.Context, document Document) (Document, error)
	Save(ctx context.Context, document Document) (Document, error)
}

// Document is the stored reference to an uploaded file: the bytes live in
// object storage, accounts hold only the document ID.
type Document struct {
	ID        uuid.UUID
	InputName string
	Path      string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
