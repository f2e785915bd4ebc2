package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_ExternallyRegistered(t *testing.T) {
	regID := "google-123"

	assert.False(t, User{}.ExternallyRegistered())
	assert.True(t, User{RegistrationID: &regID}.ExternallyRegistered())
}

func TestUser_Deactivated(t *testing.T) {
	userid := "devhive"
	email := "dev@example.com"
	u := User{
		Userid:       &userid,
		Email:        &email,
		Nickname:     "Dev",
		PasswordHash: "original-hash",
		IsActive:     true,
	}

	got := u.Deactivated("scrambled-hash")

	assert.Nil(t, got.Userid)
	assert.Nil(t, got.Email)
	assert.Equal(t, AnonymizedNickname, got.Nickname)
	assert.False(t, got.IsActive)
	assert.Equal(t, "scrambled-hash", got.PasswordHash)

	// The receiver is untouched.
	assert.Equal(t, "devhive", *u.Userid)
	assert.True(t, u.IsActive)
}

func TestUser_TransitionsCopy(t *testing.T) {
	u := User{Nickname: "Old", Description: "old desc", Skills: "old"}

	updated := u.WithNickname("New").WithProfile("new desc", "go")

	assert.Equal(t, "New", updated.Nickname)
	assert.Equal(t, "new desc", updated.Description)
	assert.Equal(t, "go", updated.Skills)
	assert.Equal(t, "Old", u.Nickname)
}

func TestIsDuplicate(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		field, ok := IsDuplicate(&DuplicateError{Field: FieldEmail})
		require.True(t, ok)
		assert.Equal(t, FieldEmail, field)
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("failed to create user: %w", &DuplicateError{Field: FieldNickname})
		field, ok := IsDuplicate(wrapped)
		require.True(t, ok)
		assert.Equal(t, FieldNickname, field)
	})

	t.Run("unrelated", func(t *testing.T) {
		_, ok := IsDuplicate(errors.New("connection lost"))
		assert.False(t, ok)
	})
}
