package kdf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kryptorfile/kryptor/kdf"
	"github.com/kryptorfile/kryptor/primitives"
)

func randomNonce(t *testing.T) []byte {
	t.Helper()
	n, err := primitives.RandomBytes(primitives.NonceSize)
	require.NoError(t, err)
	return n
}

func TestPasswordDeterministicForSameInputs(t *testing.T) {
	nonce := randomNonce(t)
	a, err := kdf.Password([]byte("pw"), nonce, nil)
	require.NoError(t, err)
	b, err := kdf.Password([]byte("pw"), nonce, nil)
	require.NoError(t, err)
	require.Equal(t, a.Bytes(), b.Bytes())
}

func TestPasswordDiffersPerNonce(t *testing.T) {
	a, err := kdf.Password([]byte("pw"), randomNonce(t), nil)
	require.NoError(t, err)
	b, err := kdf.Password([]byte("pw"), randomNonce(t), nil)
	require.NoError(t, err)
	require.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestPasswordPepperChangesResult(t *testing.T) {
	nonce := randomNonce(t)
	withoutPepper, err := kdf.Password([]byte("pw"), nonce, nil)
	require.NoError(t, err)
	withPepper, err := kdf.Password([]byte("pw"), nonce, []byte("a-pre-shared-key-32-bytes-long!!"))
	require.NoError(t, err)
	require.NotEqual(t, withoutPepper.Bytes(), withPepper.Bytes())
}

func TestSymmetricDeterministic(t *testing.T) {
	key := make([]byte, primitives.KeySize)
	nonce := randomNonce(t)

	a, err := kdf.Symmetric(key, nonce)
	require.NoError(t, err)
	b, err := kdf.Symmetric(key, nonce)
	require.NoError(t, err)
	require.Equal(t, a.Bytes(), b.Bytes())
}

func TestSymmetricRejectsWrongKeySize(t *testing.T) {
	_, err := kdf.Symmetric(make([]byte, 10), randomNonce(t))
	require.Error(t, err)
}

func TestSendReceiveAgree(t *testing.T) {
	senderScalar, senderPoint, err := primitives.GenerateX25519Keypair()
	require.NoError(t, err)
	recipientScalar, recipientPoint, err := primitives.GenerateX25519Keypair()
	require.NoError(t, err)

	sendResult, err := kdf.Send(senderScalar, recipientPoint, nil)
	require.NoError(t, err)

	recvKEK, err := kdf.Receive(recipientScalar, sendResult.EphemeralPublic, senderPoint, nil)
	require.NoError(t, err)

	require.Equal(t, sendResult.KEK.Bytes(), recvKEK.Bytes())
}

func TestSendReceiveWithPresharedKeyAgree(t *testing.T) {
	senderScalar, senderPoint, err := primitives.GenerateX25519Keypair()
	require.NoError(t, err)
	recipientScalar, recipientPoint, err := primitives.GenerateX25519Keypair()
	require.NoError(t, err)
	psk := make([]byte, kdf.PreSharedKeySize)
	psk[0] = 0x42

	sendResult, err := kdf.Send(senderScalar, recipientPoint, psk)
	require.NoError(t, err)
	recvKEK, err := kdf.Receive(recipientScalar, sendResult.EphemeralPublic, senderPoint, psk)
	require.NoError(t, err)
	require.Equal(t, sendResult.KEK.Bytes(), recvKEK.Bytes())

	// A receiver without the PSK derives a different, non-matching KEK.
	wrongKEK, err := kdf.Receive(recipientScalar, sendResult.EphemeralPublic, senderPoint, nil)
	require.NoError(t, err)
	require.NotEqual(t, sendResult.KEK.Bytes(), wrongKEK.Bytes())
}

func TestSelfSendSelfReceiveAgree(t *testing.T) {
	selfScalar, _, err := primitives.GenerateX25519Keypair()
	require.NoError(t, err)

	sendResult, err := kdf.SelfSend(selfScalar, nil)
	require.NoError(t, err)

	recvKEK, err := kdf.SelfReceive(selfScalar, sendResult.EphemeralPublic, nil)
	require.NoError(t, err)

	require.Equal(t, sendResult.KEK.Bytes(), recvKEK.Bytes())
}

func TestSendEachCallUsesFreshEphemeralKey(t *testing.T) {
	_, recipientPoint, err := primitives.GenerateX25519Keypair()
	require.NoError(t, err)
	senderScalar, _, err := primitives.GenerateX25519Keypair()
	require.NoError(t, err)

	a, err := kdf.Send(senderScalar, recipientPoint, nil)
	require.NoError(t, err)
	b, err := kdf.Send(senderScalar, recipientPoint, nil)
	require.NoError(t, err)

	require.NotEqual(t, a.EphemeralPublic, b.EphemeralPublic)
	require.NotEqual(t, a.KEK.Bytes(), b.KEK.Bytes())
}
