package header

import (
	"encoding/binary"
	"fmt"

	"github.com/kryptorfile/kryptor/kryptorerr"
	"github.com/kryptorfile/kryptor/primitives"
)

// SealedHeader is the fully encoded on-disk header: the fixed prefix
// plus the AEAD-sealed inner header, ready to be written verbatim to
// the start of the output file.
type SealedHeader struct {
	Bytes           []byte
	EphemeralPublic []byte
	HeaderNonce     []byte
}

// SealHeader builds the on-disk header for a file whose ciphertext
// body (all chunks, after padding and tagging) will be
// ciphertextBodyLength bytes long. ephemeralPublic must be 32
// zero bytes for non-asymmetric modes. The inner header's DEK field
// is copied into the sealed output; the caller remains responsible for
// wiping its own copy of inner.DEK.
func SealHeader(kek *primitives.Secret, ephemeralPublic, headerNonce []byte, inner InnerHeader, ciphertextBodyLength uint64) (*SealedHeader, error) {
	if len(ephemeralPublic) != ephemeralPubLen {
		return nil, fmt.Errorf("header: seal: ephemeral public key must be %d bytes, got %d", ephemeralPubLen, len(ephemeralPublic))
	}
	if len(headerNonce) != headerNonceLen {
		return nil, fmt.Errorf("header: seal: header nonce must be %d bytes, got %d", headerNonceLen, len(headerNonce))
	}

	ad := associatedData(ciphertextBodyLength, ephemeralPublic)

	plain := inner.encode()
	defer primitives.Zero(plain)

	sealed, err := primitives.Seal(kek.Bytes(), headerNonce, plain, ad)
	if err != nil {
		return nil, kryptorerr.Wrap(kryptorerr.Internal, "header.SealHeader", err)
	}

	out := make([]byte, 0, FixedHeaderLen)
	out = append(out, Magic[:]...)
	out = appendVersion(out)
	out = append(out, ephemeralPublic...)
	out = append(out, headerNonce...)
	out = append(out, sealed...)

	return &SealedHeader{Bytes: out, EphemeralPublic: ephemeralPublic, HeaderNonce: headerNonce}, nil
}

// Prefix is the unauthenticated fixed prefix of a header: the
// ephemeral public key and header nonce needed to derive a KEK, read
// before that KEK can authenticate anything.
type Prefix struct {
	EphemeralPublic []byte
	HeaderNonce     []byte
	Sealed          []byte
}

// ParsePrefix validates the magic and format version of headerBytes
// (exactly FixedHeaderLen bytes, normally the first bytes of a file)
// and extracts the fields a KeySource needs to derive a KEK. It proves
// nothing about the sealed inner header; that is OpenHeader's job.
func ParsePrefix(headerBytes []byte) (Prefix, error) {
	if len(headerBytes) != FixedHeaderLen {
		return Prefix{}, kryptorerr.New(kryptorerr.UnsupportedFormat, "header.ParsePrefix", "short header")
	}

	off := 0
	magic := headerBytes[off : off+magicLen]
	off += magicLen
	if magic[0] != Magic[0] || magic[1] != Magic[1] || magic[2] != Magic[2] || magic[3] != Magic[3] {
		return Prefix{}, kryptorerr.New(kryptorerr.UnsupportedFormat, "header.ParsePrefix", "bad magic")
	}

	version := binary.LittleEndian.Uint16(headerBytes[off:])
	off += versionLen
	if version != FormatVersion {
		return Prefix{}, kryptorerr.New(kryptorerr.UnsupportedFormat, "header.ParsePrefix", "unsupported format version")
	}

	ephemeralPublic := append([]byte{}, headerBytes[off:off+ephemeralPubLen]...)
	off += ephemeralPubLen

	headerNonce := append([]byte{}, headerBytes[off:off+headerNonceLen]...)
	off += headerNonceLen

	sealed := append([]byte{}, headerBytes[off:off+innerSealedLen]...)

	return Prefix{EphemeralPublic: ephemeralPublic, HeaderNonce: headerNonce, Sealed: sealed}, nil
}

// OpenHeader parses and authenticates the fixed header read from the
// start of a file of total length fileLength. On success it returns
// the recovered inner header (including the DEK) along with the
// ephemeral public key and header nonce read from the fixed prefix.
// It zeroes the decrypted plaintext buffer before returning, keeping
// only the copies inside the returned InnerHeader.
func OpenHeader(kek *primitives.Secret, headerBytes []byte, fileLength int64) (InnerHeader, []byte, []byte, error) {
	prefix, err := ParsePrefix(headerBytes)
	if err != nil {
		return InnerHeader{}, nil, nil, err
	}

	ciphertextBodyLength := uint64(fileLength - int64(FixedHeaderLen))
	ad := associatedData(ciphertextBodyLength, prefix.EphemeralPublic)

	plain, err := primitives.Open(kek.Bytes(), prefix.HeaderNonce, prefix.Sealed, ad)
	if err != nil {
		return InnerHeader{}, nil, nil, kryptorerr.New(kryptorerr.TamperOrWrongKey, "header.OpenHeader", "header authentication failed")
	}
	defer primitives.Zero(plain)

	inner := decodeInner(plain)
	return inner, prefix.EphemeralPublic, prefix.HeaderNonce, nil
}

// associatedData builds len(ciphertext) || magic || format_version ||
// ephemeral_public_key, binding the header seal to the exact body
// length and format version so neither can be swapped undetected.
func associatedData(ciphertextBodyLength uint64, ephemeralPublic []byte) []byte {
	ad := make([]byte, 8, 8+magicLen+versionLen+len(ephemeralPublic))
	binary.LittleEndian.PutUint64(ad, ciphertextBodyLength)
	ad = append(ad, Magic[:]...)
	ad = appendVersion(ad)
	ad = append(ad, ephemeralPublic...)
	return ad
}

func appendVersion(buf []byte) []byte {
	var v [versionLen]byte
	binary.LittleEndian.PutUint16(v[:], FormatVersion)
	return append(buf, v[:]...)
}
