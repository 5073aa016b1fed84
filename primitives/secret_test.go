package primitives_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kryptorfile/kryptor/primitives"
)

func TestSecretWipeZeroesBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	s := primitives.NewSecret(buf)
	require.Equal(t, 5, s.Len())

	s.Wipe()
	require.Equal(t, 0, s.Len())
	require.Nil(t, s.Bytes())

	for _, b := range buf {
		require.Equal(t, byte(0), b)
	}
}

func TestSecretWipeIsIdempotent(t *testing.T) {
	s := primitives.NewSecret([]byte{9, 9, 9})
	s.Wipe()
	require.NotPanics(t, func() { s.Wipe() })
}

func TestSecretWipeOnNilIsSafe(t *testing.T) {
	var s *primitives.Secret
	require.NotPanics(t, func() { s.Wipe() })
	require.Equal(t, 0, s.Len())
	require.Nil(t, s.Bytes())
}

func TestZeroOverwritesInPlace(t *testing.T) {
	buf := []byte{1, 2, 3}
	primitives.Zero(buf)
	require.Equal(t, []byte{0, 0, 0}, buf)
}
