package orchestrator

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kryptorfile/kryptor/primitives"
)

// resolveOutputPath picks the on-disk name for an encrypted output,
// then resolves it against any existing file with the smallest " (n)"
// suffix. When encryptFileNames is set the name on disk carries no
// trace of the original; the original is still recoverable from the
// sealed header. outputDir, if non-empty, places the output there
// instead of alongside inputPath, creating it if it does not exist.
func resolveOutputPath(inputPath string, encryptFileNames bool, outputDir string) (string, error) {
	dir := filepath.Dir(inputPath)
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o700); err != nil {
			return "", err
		}
		dir = outputDir
	}

	var name string
	if encryptFileNames {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("orchestrator: generate random output name: %w", err)
		}
		name = hex.EncodeToString(id[:]) + ".bin.kryptor"
	} else {
		name = filepath.Base(filepath.Clean(inputPath)) + ".kryptor"
	}

	return resolveCollision(dir, name)
}

// fallbackOutputName derives an output name for a decrypted file whose
// header did not record an original name (should not normally happen,
// since FileOrchestrator always records one on encrypt, but a
// hand-crafted or foreign-tool file might omit it): strip the
// .kryptor or .bin.kryptor suffix from the input's own name.
func fallbackOutputName(inputPath string) string {
	name := filepath.Base(inputPath)
	name = strings.TrimSuffix(name, ".kryptor")
	name = strings.TrimSuffix(name, ".bin")
	if name == "" {
		name = "decrypted"
	}
	return name
}

// resolveCollision returns dir joined with name if free, otherwise the
// same name with the smallest " (n)" suffix (before the extension)
// that does not collide with an existing entry.
func resolveCollision(dir, name string) (string, error) {
	candidate := name
	for n := 1; ; n++ {
		full := filepath.Join(dir, candidate)
		if _, err := os.Stat(full); os.IsNotExist(err) {
			return full, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}
		candidate = withSuffix(name, n)
		if n > 1<<20 {
			return "", fmt.Errorf("orchestrator: could not find a free name for %q", name)
		}
	}
}

func withSuffix(name string, n int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}

func randomHex(n int) (string, error) {
	b, err := primitives.RandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
