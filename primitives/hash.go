package primitives

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Blake2b hashes input with BLAKE2b, optionally keyed, producing outLen
// bytes (1..64). A nil or empty key yields an unkeyed hash.
func Blake2b(key, input []byte, outLen int) ([]byte, error) {
	h, err := blake2b.New(outLen, key)
	if err != nil {
		return nil, fmt.Errorf("primitives: blake2b init: %w", err)
	}
	if _, err := h.Write(input); err != nil {
		return nil, fmt.Errorf("primitives: blake2b write: %w", err)
	}
	return h.Sum(nil), nil
}

// Blake2bXOF derives outLen bytes from key using BLAKE2b's extendable
// output mode, absorbing each element of parts in order. Used to
// derive the AEAD's authentication subkey from its key and nonce, so
// the MAC key differs from the key the stream cipher uses.
func Blake2bXOF(key []byte, outLen int, parts ...[]byte) ([]byte, error) {
	xof, err := blake2b.NewXOF(uint32(outLen), key)
	if err != nil {
		return nil, fmt.Errorf("primitives: blake2b xof init: %w", err)
	}
	for _, p := range parts {
		if _, err := xof.Write(p); err != nil {
			return nil, fmt.Errorf("primitives: blake2b xof write: %w", err)
		}
	}
	out := make([]byte, outLen)
	if _, err := xof.Read(out); err != nil {
		return nil, fmt.Errorf("primitives: blake2b xof read: %w", err)
	}
	return out, nil
}
