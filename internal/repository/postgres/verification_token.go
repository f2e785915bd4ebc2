package postgres

import (
	"context"
	"fmt"

	"github.com/devhive/identity-server/internal/model"
)

var _ model.VerificationTokenStore = (*VerificationTokenRepository)(nil)

type VerificationTokenRepository struct {
	db *Connection
}

func NewVerificationTokenRepository(db *Connection) *VerificationTokenRepository {
	return &VerificationTokenRepository{
		db: db,
	}
}

func (r *VerificationTokenRepository) Create(ctx context.Context, token model.VerificationToken) error {
	query := `INSERT INTO verification_tokens (token, email, expires_at, used, created_at)
			  VALUES ($1, $2, $3, FALSE, now())`

	if _, err := r.db.Exec(ctx, query, token.Token, token.Email, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	return nil
}

func (r *VerificationTokenRepository) Exists(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM verification_tokens
			  WHERE token = $1 AND NOT used AND expires_at > now())`

	var exists bool
	if err := r.db.QueryRow(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check verification token: %w", err)
	}

	return exists, nil
}

// Consume marks the token used. The guarded UPDATE makes the token
// single-use: exactly one caller observes a row change, replays and expired
// tokens report false.
func (r *VerificationTokenRepository) Consume(ctx context.Context, token string) (bool, error) {
	query := `UPDATE verification_tokens SET used = TRUE
			  WHERE token = $1 AND NOT used AND expires_at > now()`

	tag, err := r.db.Exec(ctx, query, token)
	if err != nil {
		return false, fmt.Errorf("failed to consume verification token: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
