// Package keysource implements the PasswordProvider and KeyStore
// collaborator interfaces. The core never prompts for passwords or
// parses keyfiles itself; it receives already-resolved key material
// through these interfaces.
package keysource

import (
	"fmt"
	"os"
)

// PasswordProvider supplies a password for password-mode encryption or
// decryption. Get must never return an empty password on encrypt.
type PasswordProvider interface {
	Get() ([]byte, error)
}

// StaticPasswordProvider returns a fixed password, mainly useful for
// tests and for a CLI's --password flag.
type StaticPasswordProvider struct {
	Password []byte
}

func (p StaticPasswordProvider) Get() ([]byte, error) {
	if len(p.Password) == 0 {
		return nil, fmt.Errorf("keysource: static password provider: password is empty")
	}
	return p.Password, nil
}

// EnvPasswordProvider reads a password from an environment variable,
// useful for scripted/batch encryption where a prompt isn't possible.
type EnvPasswordProvider struct {
	Var string
}

func (p EnvPasswordProvider) Get() ([]byte, error) {
	v, ok := os.LookupEnv(p.Var)
	if !ok || v == "" {
		return nil, fmt.Errorf("keysource: env password provider: %s is unset or empty", p.Var)
	}
	return []byte(v), nil
}

// KeyStore loads symmetric keys and asymmetric key material that has
// already been generated and persisted by a separate key-management
// subsystem; generating or persisting key pairs is out of scope here.
type KeyStore interface {
	// LoadPrivate loads a 32-byte private scalar from path, decrypting
	// it with password if the keyfile is itself password-protected.
	LoadPrivate(path string, password []byte) ([]byte, error)
	// LoadPublic loads a 32-byte public key, either from a file at
	// path or, if inline looks like hex-encoded key material rather
	// than a path, decodes it directly.
	LoadPublic(pathOrInline string) ([]byte, error)
}
