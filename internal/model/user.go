package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AnonymizedNickname replaces the nickname of a deactivated account.
const AnonymizedNickname = "(unknown)"

// RoleUser is the default role assigned to every account.
const RoleUser = "USER"

// UserStore defines persistence operations for user accounts.
//
// Lookups return ErrNotFound on miss. Create and Save rely on the store's
// unique constraints for userid, email and nickname; a conflict surfaces as
// a DuplicateError naming the colliding field, which closes the
// check-then-insert race at the single point where it can be closed.
type UserStore interface {
	GetByUserid(ctx context.Context, userid string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByNickname(ctx context.Context, nickname string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Save(ctx context.Context, user User) (User, error)
}

// User represents a stored account with credentials and profile data.
//
// Userid and Email are pointers because deactivation clears them to NULL
// while the partial unique indexes keep them unique whenever set.
// RegistrationID is set only for accounts originated by an external identity
// provider; its presence permanently locks userid, email and password.
type User struct {
	ID             uuid.UUID
	Userid         *string
	Email          *string
	Nickname       string
	PasswordHash   string
	Skills         string
	Description    string
	Roles          []string
	RegistrationID *string
	ProfileImageID *uuid.UUID
	IsActive       bool
	IsPrivate      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExternallyRegistered reports whether the account was created through a
// third-party identity provider. Such accounts may not change their userid,
// email or password here: those fields are owned by the provider.
func (u User) ExternallyRegistered() bool {
	return u.RegistrationID != nil
}

// WithNickname returns a copy of the account with the nickname replaced.
func (u User) WithNickname(nickname string) User {
	u.Nickname = nickname
	return u
}

// WithProfile returns a copy of the account with description and skills
// overwritten.
func (u User) WithProfile(description, skills string) User {
	u.Description = description
	u.Skills = skills
	return u
}

// WithUserid returns a copy of the account with the login handle replaced.
func (u User) WithUserid(userid string) User {
	u.Userid = &userid
	return u
}

// WithEmail returns a copy of the account with the email replaced.
func (u User) WithEmail(email string) User {
	u.Email = &email
	return u
}

// WithPasswordHash returns a copy of the account with the credential rotated.
func (u User) WithPasswordHash(hash string) User {
	u.PasswordHash = hash
	return u
}

// WithProfileImage returns a copy of the account referencing the document.
func (u User) WithProfileImage(documentID uuid.UUID) User {
	u.ProfileImageID = &documentID
	return u
}

// WithPrivate returns a copy of the account with the visibility flag set.
func (u User) WithPrivate(private bool) User {
	u.IsPrivate = private
	return u
}

// Activated returns a copy of the account marked active and public. Used by
// the OAuth completion flow once the profile is filled in.
func (u User) Activated() User {
	u.IsActive = true
	u.IsPrivate = false
	return u
}

// Deactivated returns the terminal snapshot of the account: identity fields
// nulled, nickname anonymized, sign-in disabled. The caller must replace the
// password hash with one derived from an unrecoverable value so no former
// credential combination works again.
func (u User) Deactivated(scrambledHash string) User {
	u.Userid = nil
	u.Email = nil
	u.Nickname = AnonymizedNickname
	u.IsActive = false
	u.PasswordHash = scrambledHash
	return u
}
