package primitives

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Default Argon2id cost parameters. Changing any of them changes the
// KEK derived from a given password and salt, silently breaking
// decryption of existing ciphertexts, so a real run must never alter
// them. SetArgon2idCost exists solely so tests can opt into a cheaper,
// insecure set of parameters; its only caller outside tests is
// cmd/kryptor's config loader, and only when a config sets the
// insecure test override.
const (
	DefaultArgon2Time    uint32 = 12
	DefaultArgon2MemoryKiB uint32 = 256 * 1024
	DefaultArgon2Threads uint8  = 1
	Argon2SaltSize              = 16
)

var (
	argon2Time      = DefaultArgon2Time
	argon2MemoryKiB = DefaultArgon2MemoryKiB
	argon2Threads   = DefaultArgon2Threads
)

// SetArgon2idCost overrides the cost parameters Argon2id uses from
// this point on. Intended only for test suites that cannot afford the
// default 256MiB/12-pass cost on every run; ciphertext produced under
// a non-default cost is only decryptable while that same override is
// in effect, so this must never run on a path that touches real data.
func SetArgon2idCost(timeCost, memoryKiB uint32, threads uint8) {
	argon2Time = timeCost
	argon2MemoryKiB = memoryKiB
	argon2Threads = threads
}

// Argon2id derives an outLen-byte key from password and a 16-byte salt
// using the current cost parameters.
func Argon2id(password, salt []byte, outLen int) ([]byte, error) {
	if len(salt) != Argon2SaltSize {
		return nil, fmt.Errorf("primitives: argon2id: salt must be %d bytes, got %d", Argon2SaltSize, len(salt))
	}
	return argon2.IDKey(password, salt, argon2Time, argon2MemoryKiB, argon2Threads, uint32(outLen)), nil
}
