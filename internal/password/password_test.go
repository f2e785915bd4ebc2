package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgon2_HashAndVerify(t *testing.T) {
	h := NewArgon2()

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, encoded)
	require.NotContains(t, encoded, "correct horse battery staple")

	ok, err := h.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestArgon2_Verify_WrongPassword(t *testing.T) {
	h := NewArgon2()

	encoded, err := h.Hash("password-one")
	require.NoError(t, err)

	ok, err := h.Verify("password-two", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArgon2_Hash_UniqueSalts(t *testing.T) {
	h := NewArgon2()

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestArgon2_Verify_MalformedHash(t *testing.T) {
	h := NewArgon2()

	_, err := h.Verify("anything", "not-an-encoded-hash")
	require.Error(t, err)
}
