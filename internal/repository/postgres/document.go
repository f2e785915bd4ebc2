package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devhive/identity-server/internal/model"
)

var _ model.DocumentStore = (*DocumentRepository)(nil)

type DocumentRepository struct {
	db *Connection
}

func NewDocumentRepository(db *Connection) *DocumentRepository {
	return &DocumentRepository{
		db: db,
	}
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Document, error) {
	var doc model.Document
	query := `SELECT id, input_name, path, url, created_at, updated_at
			  FROM documents WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.InputName, &doc.Path, &doc.URL, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		return model.Document{}, fmt.Errorf("failed to get document by id: %w", err)
	}

	return doc, nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc model.Document) (model.Document, error) {
	query := `INSERT INTO documents (id, input_name, path, url, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, now(), now())
			  RETURNING id, input_name, path, url, created_at, updated_at`

	var saved model.Document
	err := r.db.QueryRow(ctx, query, doc.ID, doc.InputName, doc.Path, doc.URL).Scan(
		&saved.ID, &saved.InputName, &saved.Path, &saved.URL, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to create document: %w", err)
	}

	return saved, nil
}

func (r *DocumentRepository) Save(ctx context.Context, doc model.Document) (model.Document, error) {
	query := `UPDATE documents SET input_name = $2, path = $3, url = $4, updated_at = now()
			  WHERE id = $1
			  RETURNING id, input_name, path, url, created_at, updated_at`

	var saved model.Document
	err := r.db.QueryRow(ctx, query, doc.ID, doc.InputName, doc.Path, doc.URL).Scan(
		&saved.ID, &saved.InputName, &saved.Path, &saved.URL, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		return model.Document{}, fmt.Errorf("failed to save document: %w", err)
	}

	return saved, nil
}
