package orchestrator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kryptorfile/kryptor/kdf"
	"github.com/kryptorfile/kryptor/orchestrator"
)

const chunkSize = 16 * 1024

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestEncryptDecryptRoundTripSizes(t *testing.T) {
	sizes := []int{0, 1, chunkSize - 1, chunkSize, chunkSize + 1, 10 * chunkSize}

	for _, size := range sizes {
		dir := t.TempDir()
		original := writeFile(t, dir, "plain.dat", size)
		wantData, err := os.ReadFile(original)
		require.NoError(t, err)

		o := orchestrator.New(nil)
		keys := kdf.NewPasswordKeySource([]byte("correct horse battery staple"), nil)

		outPath, err := o.EncryptFile(original, keys, orchestrator.Options{})
		require.NoError(t, err)
		require.FileExists(t, outPath)

		// Remove the plaintext so decrypt can restore it at the same path.
		require.NoError(t, os.Remove(original))

		decKeys := kdf.NewPasswordKeySource([]byte("correct horse battery staple"), nil)
		restoredPath, err := o.DecryptFile(outPath, decKeys, orchestrator.Options{})
		require.NoError(t, err)

		gotData, err := os.ReadFile(restoredPath)
		require.NoError(t, err)
		require.Equal(t, wantData, gotData)
	}
}

func TestDecryptWrongPasswordFailsClosed(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "plain.dat", 128)

	o := orchestrator.New(nil)
	outPath, err := o.EncryptFile(original, kdf.NewPasswordKeySource([]byte("right"), nil), orchestrator.Options{OverwriteInput: true})
	require.NoError(t, err)

	_, err = o.DecryptFile(outPath, kdf.NewPasswordKeySource([]byte("wrong"), nil), orchestrator.Options{})
	require.Error(t, err)

	// A failed decrypt must not leave a partial output file behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1) // only the .kryptor file remains
}

func TestDecryptTamperedChunkFailsClosed(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "plain.dat", chunkSize+500)

	o := orchestrator.New(nil)
	outPath, err := o.EncryptFile(original, kdf.NewPasswordKeySource([]byte("s3cr3t"), nil), orchestrator.Options{})
	require.NoError(t, err)

	flipLastByte(t, outPath)

	_, err = o.DecryptFile(outPath, kdf.NewPasswordKeySource([]byte("s3cr3t"), nil), orchestrator.Options{})
	require.Error(t, err)
}

func TestEncryptFileNamesHidesOnDiskName(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "secret-plan.txt", 42)

	o := orchestrator.New(nil)
	// OverwriteInput removes the plaintext so decrypt can restore it
	// under its original name rather than a " (n)" variant.
	outPath, err := o.EncryptFile(original, kdf.NewPasswordKeySource([]byte("pw"), nil), orchestrator.Options{EncryptFileNames: true, OverwriteInput: true})
	require.NoError(t, err)
	require.NotContains(t, filepath.Base(outPath), "secret-plan")

	restoredPath, err := o.DecryptFile(outPath, kdf.NewPasswordKeySource([]byte("pw"), nil), orchestrator.Options{})
	require.NoError(t, err)
	require.Equal(t, "secret-plan.txt", filepath.Base(restoredPath))
}

func TestEncryptOverwriteInputRemovesOriginal(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "plain.dat", 10)

	o := orchestrator.New(nil)
	_, err := o.EncryptFile(original, kdf.NewPasswordKeySource([]byte("pw"), nil), orchestrator.Options{OverwriteInput: true})
	require.NoError(t, err)
	require.NoFileExists(t, original)
}

func TestEncryptDirectoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "payload")
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "nested"), 0o755))
	writeFile(t, srcDir, "a.txt", 10)
	writeFile(t, filepath.Join(srcDir, "nested"), "b.txt", 20)

	o := orchestrator.New(nil)
	outPath, err := o.EncryptFile(srcDir, kdf.NewSymmetricKeySource(make([]byte, 32)), orchestrator.Options{})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(srcDir))

	restoredPath, err := o.DecryptFile(outPath, kdf.NewSymmetricKeySource(make([]byte, 32)), orchestrator.Options{})
	require.NoError(t, err)

	info, err := os.Stat(restoredPath)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.FileExists(t, filepath.Join(restoredPath, "a.txt"))
	require.FileExists(t, filepath.Join(restoredPath, "nested", "b.txt"))
}

func TestEncryptCollisionResolutionAppendsSuffix(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "plain.dat", 5)

	o := orchestrator.New(nil)
	keys := kdf.NewPasswordKeySource([]byte("pw"), nil)

	first, err := o.EncryptFile(original, keys, orchestrator.Options{})
	require.NoError(t, err)

	second, err := o.EncryptFile(original, keys, orchestrator.Options{})
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.Contains(t, filepath.Base(second), "(1)")
}

func flipLastByte(t *testing.T, path string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	buf := make([]byte, 1)
	_, err = f.ReadAt(buf, info.Size()-1)
	require.NoError(t, err)
	buf[0] ^= 0xFF
	_, err = f.WriteAt(buf, info.Size()-1)
	require.NoError(t, err)
}
