package primitives_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kryptorfile/kryptor/primitives"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := primitives.RandomBytes(primitives.KeySize)
	require.NoError(t, err)
	nonce, err := primitives.RandomBytes(primitives.NonceSize)
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	ad := []byte("associated-data")

	sealed, err := primitives.Seal(key, nonce, plaintext, ad)
	require.NoError(t, err)
	require.Len(t, sealed, len(plaintext)+primitives.TagSize)

	opened, err := primitives.Open(key, nonce, sealed, ad)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestSealOpenEmptyPlaintext(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	nonce, _ := primitives.RandomBytes(primitives.NonceSize)

	sealed, err := primitives.Seal(key, nonce, nil, nil)
	require.NoError(t, err)
	require.Len(t, sealed, primitives.TagSize)

	opened, err := primitives.Open(key, nonce, sealed, nil)
	require.NoError(t, err)
	require.Empty(t, opened)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	nonce, _ := primitives.RandomBytes(primitives.NonceSize)

	sealed, err := primitives.Seal(key, nonce, []byte("payload"), nil)
	require.NoError(t, err)

	sealed[0] ^= 0xFF
	_, err = primitives.Open(key, nonce, sealed, nil)
	require.ErrorIs(t, err, primitives.ErrAuthenticationFailed)
}

func TestOpenRejectsTamperedTag(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	nonce, _ := primitives.RandomBytes(primitives.NonceSize)

	sealed, err := primitives.Seal(key, nonce, []byte("payload"), nil)
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xFF
	_, err = primitives.Open(key, nonce, sealed, nil)
	require.ErrorIs(t, err, primitives.ErrAuthenticationFailed)
}

func TestOpenRejectsWrongAssociatedData(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	nonce, _ := primitives.RandomBytes(primitives.NonceSize)

	sealed, err := primitives.Seal(key, nonce, []byte("payload"), []byte("real-ad"))
	require.NoError(t, err)

	_, err = primitives.Open(key, nonce, sealed, []byte("wrong-ad"))
	require.ErrorIs(t, err, primitives.ErrAuthenticationFailed)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	otherKey, _ := primitives.RandomBytes(primitives.KeySize)
	nonce, _ := primitives.RandomBytes(primitives.NonceSize)

	sealed, err := primitives.Seal(key, nonce, []byte("payload"), nil)
	require.NoError(t, err)

	_, err = primitives.Open(otherKey, nonce, sealed, nil)
	require.ErrorIs(t, err, primitives.ErrAuthenticationFailed)
}

func TestSealRejectsWrongSizedKeyOrNonce(t *testing.T) {
	_, err := primitives.Seal(make([]byte, 10), make([]byte, primitives.NonceSize), nil, nil)
	require.Error(t, err)

	_, err = primitives.Seal(make([]byte, primitives.KeySize), make([]byte, 5), nil, nil)
	require.Error(t, err)
}

func TestSealNonceUniquenessSanity(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		nonce, err := primitives.RandomBytes(primitives.NonceSize)
		require.NoError(t, err)
		_, err = primitives.Seal(key, nonce, nil, nil)
		require.NoError(t, err)
		s := string(nonce)
		require.False(t, seen[s], "nonce collision at iteration %d", i)
		seen[s] = true
	}
}
