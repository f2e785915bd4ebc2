package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no row matches the lookup.
var ErrNotFound = errors.New("not found")

// Unique field names reported by DuplicateError.
const (
	FieldUserid   = "userid"
	FieldEmail    = "email"
	FieldNickname = "nickname"
)

// DuplicateError reports a unique-constraint violation on an account field.
// The store raises it from the single constrained insert/update, so two
// concurrent writes with the same value can never both succeed.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}

// IsDuplicate reports whether err is a DuplicateError and returns the field.
func IsDuplicate(err error) (string, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Field, true
	}
	return "", false
}
