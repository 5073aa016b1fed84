package main

import (
	"encoding/hex"
	"fmt"

	"github.com/kryptorfile/kryptor/kdf"
	"github.com/kryptorfile/kryptor/keysource"
)

var fileKeyStore = keysource.FileKeyStore{}

// resolveKeySource turns the CLI's flat set of key-related flags into
// the KeySource the orchestrator needs, picking a mode by which flags
// were set: private key flags win over a symmetric key, which wins
// over a plain password. password doubles as the passphrase for a
// password-protected private keyfile when private is also set; a thin
// CLI has no room for a second, dedicated flag for that.
func resolveKeySource(password, key, private string, public []string, psk string, forEncrypt bool) (kdf.KeySource, error) {
	pskBytes, err := decodePSK(psk)
	if err != nil {
		return nil, err
	}

	switch {
	case private != "":
		privateBytes, err := fileKeyStore.LoadPrivate(private, []byte(password))
		if err != nil {
			return nil, fmt.Errorf("kryptor: load private key %s: %w", private, err)
		}

		if len(public) == 0 {
			return kdf.NewSelfKeySource(privateBytes, pskBytes), nil
		}

		peerBytes, err := fileKeyStore.LoadPublic(public[0])
		if err != nil {
			return nil, fmt.Errorf("kryptor: load public key %s: %w", public[0], err)
		}
		if forEncrypt {
			return kdf.NewSendKeySource(privateBytes, peerBytes, pskBytes), nil
		}
		return kdf.NewReceiveKeySource(privateBytes, peerBytes, pskBytes), nil

	case key != "":
		keyBytes, err := fileKeyStore.LoadPublic(key)
		if err != nil {
			return nil, fmt.Errorf("kryptor: load symmetric key %s: %w", key, err)
		}
		return kdf.NewSymmetricKeySource(keyBytes), nil

	case password != "":
		return kdf.NewPasswordKeySource([]byte(password), pskBytes), nil

	default:
		return nil, fmt.Errorf("kryptor: one of --password, --key, or --private is required")
	}
}

func decodePSK(psk string) ([]byte, error) {
	if psk == "" {
		return nil, nil
	}
	decoded, err := hex.DecodeString(psk)
	if err != nil {
		return nil, fmt.Errorf("kryptor: --psk must be hex-encoded: %w", err)
	}
	return decoded, nil
}
