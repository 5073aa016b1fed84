package batch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kryptorfile/kryptor/batch"
	"github.com/kryptorfile/kryptor/kdf"
	"github.com/kryptorfile/kryptor/orchestrator"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestBatchEncryptIsolatesPerFileFailure(t *testing.T) {
	dir := t.TempDir()
	ok1 := writeFile(t, dir, "a.dat", 10)
	ok2 := writeFile(t, dir, "b.dat", 20)
	missing := filepath.Join(dir, "does-not-exist.dat")

	d := batch.New(nil, 2)
	keys := kdf.NewPasswordKeySource([]byte("pw"), nil)

	result := d.Run([]string{ok1, ok2, missing}, keys, batch.Encrypt, orchestrator.Options{})

	require.Len(t, result.Validation.Invalid, 1)
	require.Equal(t, missing, result.Validation.Invalid[0].Path)
	require.Equal(t, int64(2), result.Stats.Total())
	require.Equal(t, int64(2), result.Stats.Succeeded())
	require.Equal(t, int64(0), result.Stats.Failed())
	require.False(t, result.Succeeded()) // validation rejected one path
}

func TestBatchDecryptCountsFailuresWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	plainA := writeFile(t, dir, "a.dat", 10)
	plainB := writeFile(t, dir, "b.dat", 10)

	orch := orchestrator.New(nil)
	keysRight := kdf.NewPasswordKeySource([]byte("right"), nil)
	encA, err := orch.EncryptFile(plainA, keysRight, orchestrator.Options{OverwriteInput: true})
	require.NoError(t, err)
	encB, err := orch.EncryptFile(plainB, kdf.NewPasswordKeySource([]byte("different"), nil), orchestrator.Options{OverwriteInput: true})
	require.NoError(t, err)

	d := batch.New(orch, 1)
	result := d.Run([]string{encA, encB}, keysRight, batch.Decrypt, orchestrator.Options{})

	require.Equal(t, int64(2), result.Stats.Total())
	require.Equal(t, int64(1), result.Stats.Succeeded())
	require.Equal(t, int64(1), result.Stats.Failed())
	require.Len(t, result.Failures, 1)
	require.Equal(t, encB, result.Failures[0].Path)
	require.False(t, result.Succeeded())
}
