package chunk

import (
	"io"

	"github.com/kryptorfile/kryptor/header"
	"github.com/kryptorfile/kryptor/kryptorerr"
	"github.com/kryptorfile/kryptor/primitives"
)

// Size is the plaintext size of every chunk but (possibly) the last.
const Size = header.ChunkSize

// SealedSize is the on-disk size of a single sealed chunk, letting a
// caller recover ChunkCount from a file's total length without
// re-deriving the tag size itself.
const SealedSize = Size + primitives.TagSize

const sealedChunkSize = SealedSize

// PaddingLength returns the number of zero bytes appended to the final
// chunk so that the on-disk chunk stream holds a whole number of
// Size-sized windows, with a 0-byte input still occupying exactly one
// fully-padded chunk.
func PaddingLength(plaintextSize int64) uint32 {
	return uint32(int64(ChunkCount(plaintextSize))*int64(Size) - plaintextSize)
}

// Encrypt streams plaintextSize bytes from r to w as a sequence of
// sealed chunks under dek, with the per-chunk nonce starting at
// headerNonce+1 and incrementing by one each chunk. cancel, if
// non-nil, is polled between chunks for cooperative cancellation. dek
// is zeroised once the pipeline completes, whether it succeeds or
// fails.
func Encrypt(w io.Writer, r io.Reader, dek *primitives.Secret, headerNonce []byte, plaintextSize int64, cancel <-chan struct{}) error {
	defer dek.Wipe()

	chunkNonce := append([]byte{}, headerNonce...)
	plainBuf := make([]byte, Size)

	remaining := plaintextSize
	for remaining > 0 || plaintextSize == 0 {
		if isCancelled(cancel) {
			return kryptorerr.New(kryptorerr.Cancelled, "chunk.Encrypt", "cancelled")
		}

		n := Size
		if remaining < int64(Size) {
			n = int(remaining)
		}
		if _, err := io.ReadFull(r, plainBuf[:n]); err != nil {
			return kryptorerr.Wrap(kryptorerr.IO, "chunk.Encrypt", err)
		}
		for i := n; i < Size; i++ {
			plainBuf[i] = 0
		}

		if err := incrementNonce(chunkNonce); err != nil {
			return kryptorerr.Wrap(kryptorerr.Internal, "chunk.Encrypt", err)
		}

		sealed, err := primitives.Seal(dek.Bytes(), chunkNonce, plainBuf, nil)
		if err != nil {
			return kryptorerr.Wrap(kryptorerr.Internal, "chunk.Encrypt", err)
		}
		if _, err := w.Write(sealed); err != nil {
			return kryptorerr.Wrap(kryptorerr.IO, "chunk.Encrypt", err)
		}

		remaining -= int64(n)
		if plaintextSize == 0 {
			break
		}
	}
	return nil
}

// Decrypt reads exactly chunkCount sealed chunks of sealedChunkSize
// bytes from r, authenticates and decrypts each under dek with the
// per-chunk nonce starting at headerNonce+1, and writes the recovered
// plaintext to w, stopping paddingLength bytes short of the final
// chunk's full size. A short final read is treated as corruption
// (TamperOrWrongKey). dek is zeroised once the pipeline completes,
// whether it succeeds or fails.
func Decrypt(w io.Writer, r io.Reader, dek *primitives.Secret, headerNonce []byte, chunkCount uint64, paddingLength uint32, cancel <-chan struct{}) error {
	defer dek.Wipe()

	if chunkCount == 0 {
		return nil
	}

	chunkNonce := append([]byte{}, headerNonce...)
	sealedBuf := make([]byte, sealedChunkSize)

	for i := uint64(0); i < chunkCount; i++ {
		if isCancelled(cancel) {
			return kryptorerr.New(kryptorerr.Cancelled, "chunk.Decrypt", "cancelled")
		}

		if _, err := io.ReadFull(r, sealedBuf); err != nil {
			return kryptorerr.New(kryptorerr.TamperOrWrongKey, "chunk.Decrypt", "short chunk read")
		}

		if err := incrementNonce(chunkNonce); err != nil {
			return kryptorerr.Wrap(kryptorerr.Internal, "chunk.Decrypt", err)
		}

		plain, err := primitives.Open(dek.Bytes(), chunkNonce, sealedBuf, nil)
		if err != nil {
			return kryptorerr.New(kryptorerr.TamperOrWrongKey, "chunk.Decrypt", "chunk authentication failed")
		}

		out := plain
		if i == chunkCount-1 && paddingLength > 0 {
			if int(paddingLength) > len(plain) {
				return kryptorerr.New(kryptorerr.TamperOrWrongKey, "chunk.Decrypt", "padding length exceeds chunk size")
			}
			out = plain[:len(plain)-int(paddingLength)]
		}
		if _, err := w.Write(out); err != nil {
			return kryptorerr.Wrap(kryptorerr.IO, "chunk.Decrypt", err)
		}
	}
	return nil
}

// ChunkCount returns the number of chunks a plaintext of
// plaintextSize bytes is split into (always at least 1, matching S1's
// single padded chunk for a zero-byte input).
func ChunkCount(plaintextSize int64) uint64 {
	if plaintextSize == 0 {
		return 1
	}
	return uint64((plaintextSize + int64(Size) - 1) / int64(Size))
}

// CiphertextBodyLength returns the total on-disk size of the chunk
// stream for a plaintext of plaintextSize bytes: ceil(s / CHUNK_SIZE)
// * (CHUNK_SIZE + TAG_SIZE).
func CiphertextBodyLength(plaintextSize int64) uint64 {
	return ChunkCount(plaintextSize) * uint64(sealedChunkSize)
}

func isCancelled(cancel <-chan struct{}) bool {
	if cancel == nil {
		return false
	}
	select {
	case <-cancel:
		return true
	default:
		return false
	}
}
