package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/devhive/identity-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, userid, email, nickname, password_hash, skills, description, roles,
			  registration_id, profile_image_id, is_active, is_private, created_at, updated_at`

func (r *UserRepository) scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Userid, &user.Email, &user.Nickname, &user.PasswordHash,
		&user.Skills, &user.Description, &user.Roles, &user.RegistrationID,
		&user.ProfileImageID, &user.IsActive, &user.IsPrivate, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, err
	}

	return user, nil
}

func (r *UserRepository) GetByUserid(ctx context.Context, userid string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE userid = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, userid))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by userid: %w", err)
	}

	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, err
}

func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE nickname = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, nickname))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by nickname: %w", err)
	}

	return user, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, err
}

// Create inserts the account in a single statement. The unique indexes on
// userid, email and nickname are the only duplicate check: a conflict is
// reported as a DuplicateError naming the field, so concurrent sign-ups with
// the same value cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, userid, email, nickname, password_hash, skills, description, roles,
			  registration_id, profile_image_id, is_active, is_private, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING ` + userColumns

	savedUser, err := r.scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Userid, user.Email, user.Nickname, user.PasswordHash,
		user.Skills, user.Description, user.Roles, user.RegistrationID,
		user.ProfileImageID, user.IsActive, user.IsPrivate, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if dup := duplicateField(err); dup != "" {
			return model.User{}, &model.DuplicateError{Field: dup}
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

// Save persists the full account snapshot. Conflicts on the unique fields map
// to DuplicateError the same way Create does, covering racing edits.
func (r *UserRepository) Save(ctx context.Context, user model.User) (model.User, error) {
	query := `UPDATE users SET userid = $2, email = $3, nickname = $4, password_hash = $5,
			  skills = $6, description = $7, roles = $8, registration_id = $9,
			  profile_image_id = $10, is_active = $11, is_private = $12, updated_at = now()
			  WHERE id = $1
			  RETURNING ` + userColumns

	savedUser, err := r.scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Userid, user.Email, user.Nickname, user.PasswordHash,
		user.Skills, user.Description, user.Roles, user.RegistrationID,
		user.ProfileImageID, user.IsActive, user.IsPrivate,
	))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		if dup := duplicateField(err); dup != "" {
			return model.User{}, &model.DuplicateError{Field: dup}
		}
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return savedUser, nil
}

// duplicateField maps a postgres unique violation to the account field whose
// index rejected the write.
func duplicateField(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return ""
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "userid"):
		return model.FieldUserid
	case strings.Contains(pgErr.ConstraintName, "email"):
		return model.FieldEmail
	case strings.Contains(pgErr.ConstraintName, "nickname"):
		return model.FieldNickname
	}
	return ""
}
