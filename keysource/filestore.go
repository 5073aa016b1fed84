package keysource

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kryptorfile/kryptor/kdf"
	"github.com/kryptorfile/kryptor/primitives"
)

// ErrKeyNotFound is returned when a keyfile does not exist.
var ErrKeyNotFound = errors.New("keysource: key not found")

// ErrInvalidPassphrase is returned when a password-protected keyfile
// fails to authenticate.
var ErrInvalidPassphrase = errors.New("keysource: invalid passphrase")

// encryptedKeyFile is the on-disk JSON envelope for a
// password-protected private key, structurally the same
// header-nonce-plus-sealed-payload shape as the main file format but
// scoped to a single 32-byte secret rather than a whole file.
type encryptedKeyFile struct {
	HeaderNonce string `json:"header_nonce"`
	Sealed      string `json:"sealed"`
}

// FileKeyStore implements KeyStore over plain files on disk: a public
// key file holds 32 raw bytes (or their hex encoding); a private key
// file holds either 32 raw bytes, or, if protected, the JSON envelope
// above sealed under a password-derived KEK via the same AEAD the
// file pipeline uses.
type FileKeyStore struct{}

func (FileKeyStore) LoadPrivate(path string, password []byte) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("keysource: load private key %s: %w", path, err)
	}

	if len(raw) == primitives.X25519ScalarSize {
		return raw, nil
	}

	var envelope encryptedKeyFile
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("keysource: load private key %s: not a raw key or encrypted envelope: %w", path, err)
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("keysource: load private key %s: password required", path)
	}

	headerNonce, err := hex.DecodeString(envelope.HeaderNonce)
	if err != nil {
		return nil, fmt.Errorf("keysource: load private key %s: bad header nonce encoding: %w", path, err)
	}
	sealed, err := hex.DecodeString(envelope.Sealed)
	if err != nil {
		return nil, fmt.Errorf("keysource: load private key %s: bad sealed payload encoding: %w", path, err)
	}

	kek, err := kdf.Password(password, headerNonce, nil)
	if err != nil {
		return nil, fmt.Errorf("keysource: load private key %s: %w", path, err)
	}
	defer kek.Wipe()

	plain, err := primitives.Open(kek.Bytes(), headerNonce, sealed, nil)
	if err != nil {
		return nil, ErrInvalidPassphrase
	}
	return plain, nil
}

func (FileKeyStore) LoadPublic(pathOrInline string) ([]byte, error) {
	if decoded, err := hex.DecodeString(pathOrInline); err == nil && len(decoded) == primitives.X25519PointSize {
		return decoded, nil
	}

	raw, err := os.ReadFile(pathOrInline)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("keysource: load public key %s: %w", pathOrInline, err)
	}
	if len(raw) == primitives.X25519PointSize {
		return raw, nil
	}
	decoded, err := hex.DecodeString(string(raw))
	if err != nil || len(decoded) != primitives.X25519PointSize {
		return nil, fmt.Errorf("keysource: load public key %s: not %d raw or hex-encoded bytes", pathOrInline, primitives.X25519PointSize)
	}
	return decoded, nil
}

// StorePrivateEncrypted writes privateKey to path, sealed under a
// password-derived KEK, in the JSON envelope LoadPrivate understands.
func (FileKeyStore) StorePrivateEncrypted(path string, privateKey, password []byte) error {
	headerNonce, err := primitives.RandomBytes(primitives.NonceSize)
	if err != nil {
		return fmt.Errorf("keysource: store private key %s: %w", path, err)
	}

	kek, err := kdf.Password(password, headerNonce, nil)
	if err != nil {
		return fmt.Errorf("keysource: store private key %s: %w", path, err)
	}
	defer kek.Wipe()

	sealed, err := primitives.Seal(kek.Bytes(), headerNonce, privateKey, nil)
	if err != nil {
		return fmt.Errorf("keysource: store private key %s: %w", path, err)
	}

	envelope := encryptedKeyFile{
		HeaderNonce: hex.EncodeToString(headerNonce),
		Sealed:      hex.EncodeToString(sealed),
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("keysource: store private key %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o600)
}
