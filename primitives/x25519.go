package primitives

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// X25519ScalarSize and X25519PointSize are the fixed sizes of an X25519
// private scalar and public point.
const (
	X25519ScalarSize = 32
	X25519PointSize  = 32
)

// X25519 computes the X25519 shared point for scalar (a private key,
// 32 bytes) and point (a peer public key, 32 bytes).
func X25519(scalar, point []byte) ([]byte, error) {
	curve := ecdh.X25519()

	priv, err := curve.NewPrivateKey(scalar)
	if err != nil {
		return nil, fmt.Errorf("primitives: x25519: invalid scalar: %w", err)
	}
	pub, err := curve.NewPublicKey(point)
	if err != nil {
		return nil, fmt.Errorf("primitives: x25519: invalid point: %w", err)
	}
	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("primitives: x25519: ecdh: %w", err)
	}
	return shared, nil
}

// GenerateX25519Keypair returns a fresh random X25519 (scalar, point)
// pair, each 32 bytes.
func GenerateX25519Keypair() (scalar, point []byte, err error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("primitives: generate x25519 keypair: %w", err)
	}
	return priv.Bytes(), priv.PublicKey().Bytes(), nil
}

// X25519PublicFromScalar derives the public point for a given private
// scalar.
func X25519PublicFromScalar(scalar []byte) ([]byte, error) {
	priv, err := ecdh.X25519().NewPrivateKey(scalar)
	if err != nil {
		return nil, fmt.Errorf("primitives: x25519 public from scalar: %w", err)
	}
	return priv.PublicKey().Bytes(), nil
}
