package primitives

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

const (
	// KeySize is the size in bytes of an AEAD key (KEK or DEK).
	KeySize = 32
	// NonceSize is the size in bytes of the XChaCha20 nonce.
	NonceSize = 24
	// TagSize is the size in bytes of the authentication tag appended
	// to every sealed message.
	TagSize = 16
)

// ErrAuthenticationFailed is returned by Open when the tag does not
// verify. No plaintext bytes are ever returned alongside this error.
var ErrAuthenticationFailed = errors.New("primitives: authentication failed")

// Seal encrypts plaintext under key and nonce using XChaCha20 for
// confidentiality and a BLAKE2b keyed MAC over (ad || ciphertext) for
// integrity, returning ciphertext || tag. key must be 32 bytes and
// nonce must be 24 bytes (the full XChaCha20 nonce, fed straight to
// the stream cipher so no further subkey derivation for the cipher
// itself is needed).
func Seal(key, nonce, plaintext, ad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("primitives: seal: key must be %d bytes, got %d", KeySize, len(key))
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("primitives: seal: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}

	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("primitives: seal: init stream cipher: %w", err)
	}

	out := make([]byte, len(plaintext)+TagSize)
	stream.XORKeyStream(out[:len(plaintext)], plaintext)

	authKey, err := authSubkey(key, nonce)
	if err != nil {
		return nil, err
	}
	tag, err := macTag(authKey, ad, out[:len(plaintext)])
	if err != nil {
		return nil, err
	}
	copy(out[len(plaintext):], tag)
	return out, nil
}

// Open verifies and decrypts a buffer produced by Seal. On any
// authentication failure it returns ErrAuthenticationFailed and a nil
// plaintext slice; callers must not act on a non-nil result unless err
// is nil.
func Open(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("primitives: open: key must be %d bytes, got %d", KeySize, len(key))
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("primitives: open: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}
	if len(ciphertext) < TagSize {
		return nil, ErrAuthenticationFailed
	}

	body := ciphertext[:len(ciphertext)-TagSize]
	gotTag := ciphertext[len(ciphertext)-TagSize:]

	authKey, err := authSubkey(key, nonce)
	if err != nil {
		return nil, err
	}
	wantTag, err := macTag(authKey, ad, body)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(wantTag, gotTag) != 1 {
		return nil, ErrAuthenticationFailed
	}

	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("primitives: open: init stream cipher: %w", err)
	}
	plaintext := make([]byte, len(body))
	stream.XORKeyStream(plaintext, body)
	return plaintext, nil
}

// authSubkey derives the per-message BLAKE2b MAC key from the AEAD key
// and nonce so that the MAC key is never the same bytes used to key
// the stream cipher.
func authSubkey(key, nonce []byte) ([]byte, error) {
	return Blake2bXOF(key, KeySize, []byte("kryptor-aead-auth-key-v1"), nonce)
}

func macTag(authKey, ad, ciphertext []byte) ([]byte, error) {
	h, err := blake2b.New(TagSize, authKey)
	if err != nil {
		return nil, fmt.Errorf("primitives: mac init: %w", err)
	}
	h.Write(ad)
	h.Write(ciphertext)
	return h.Sum(nil), nil
}
