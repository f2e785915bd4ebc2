// Package password provides one-way credential hashing. Plaintext passwords
// never leave this package once hashed.
package password

import (
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

// Hasher defines one-way password hashing and verification.
type Hasher interface {
	Hash(plaintext string) (string, error)
	// Verify compares in constant time and never returns the stored hash.
	Verify(plaintext, encoded string) (bool, error)
}

// Argon2 implements Hasher using argon2id with per-hash random salts.
type Argon2 struct {
	config argon2.Config
}

var _ Hasher = (*Argon2)(nil)

// NewArgon2 creates a hasher with the library's recommended defaults.
func NewArgon2() *Argon2 {
	return &Argon2{config: argon2.DefaultConfig()}
}

// Hash derives an encoded argon2id hash from the plaintext.
func (a *Argon2) Hash(plaintext string) (string, error) {
	encoded, err := a.config.HashEncoded([]byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(encoded), nil
}

// Verify reports whether the plaintext matches the encoded hash. The
// comparison is constant-time with respect to the derived key.
func (a *Argon2) Verify(plaintext, encoded string) (bool, error) {
	ok, err := argon2.VerifyEncoded([]byte(plaintext), []byte(encoded))
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
	return ok, nil
}
