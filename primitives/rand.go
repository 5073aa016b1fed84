package primitives

import (
	"crypto/rand"
	"fmt"
	"io"
)

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("primitives: failed to read random bytes: %w", err)
	}
	return b, nil
}
