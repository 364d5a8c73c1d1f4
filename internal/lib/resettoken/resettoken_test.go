package resettoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAndVerify_Roundtrip(t *testing.T) {
	t.Parallel()

	token, err := New("alice@example.com", 15*time.Minute, "secret")
	require.NoError(t, err)

	email, err := Verify(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", email)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	token, err := New("alice@example.com", -1*time.Minute, "secret")
	require.NoError(t, err)

	_, err = Verify(token, "secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := New("alice@example.com", 15*time.Minute, "right-secret")
	require.NoError(t, err)

	_, err = Verify(token, "wrong-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := Verify("not-a-token", "secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}
