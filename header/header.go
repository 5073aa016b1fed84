// Kryptor
// Copyright (C) 2025 Kryptor Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package header encodes and decodes the fixed on-disk file header and
// the AEAD-sealed inner header it carries. The byte layout here must
// stay bit-exact across versions of this module; do not reorder or
// resize any field.
package header

import (
	"encoding/binary"

	"github.com/kryptorfile/kryptor/primitives"
)

// FileNameMax is the maximum encoded filename length in the inner
// header, zero-padded when the real name is shorter.
const FileNameMax = 255

// Magic identifies a kryptor-go file. It is an opaque 4-byte constant;
// any other value is an UnsupportedFormat.
var Magic = [4]byte{'K', 'R', 'Y', '1'}

// FormatVersion is compared byte-exact on decode; a mismatch is
// UnsupportedFormat, never a best-effort upgrade.
const FormatVersion uint16 = 1

const (
	magicLen          = 4
	versionLen        = 2
	ephemeralPubLen   = primitives.X25519PointSize
	headerNonceLen    = primitives.NonceSize
	fixedPrefixLen    = magicLen + versionLen + ephemeralPubLen + headerNonceLen

	paddingLenFieldLen   = 4
	isDirectoryFieldLen  = 1
	fileNameLenFieldLen  = 4
	fileNameFieldLen     = FileNameMax
	dekFieldLen          = primitives.KeySize

	// innerPlainLen is the fixed length of the plaintext inner header
	// before sealing: padding_length || is_directory || file_name_length
	// || file_name_bytes || data_encryption_key.
	innerPlainLen = paddingLenFieldLen + isDirectoryFieldLen + fileNameLenFieldLen + fileNameFieldLen + dekFieldLen

	// innerSealedLen is innerPlainLen plus the AEAD tag.
	innerSealedLen = innerPlainLen + primitives.TagSize

	// FixedHeaderLen is the total number of bytes on disk before the
	// first ciphertext chunk begins.
	FixedHeaderLen = fixedPrefixLen + innerSealedLen

	// ChunkSize is the plaintext size of every chunk but (possibly)
	// the last, which is zero-padded up to this size before sealing.
	ChunkSize = 16 * 1024
)

// InnerHeader is the plaintext structure AEAD-sealed under the KEK. It
// binds the padding length, directory flag, original filename, and the
// per-file Data-Encryption-Key.
type InnerHeader struct {
	PaddingLength  uint32
	IsDirectory    bool
	FileNameLength uint32
	FileName       string
	DEK            []byte // 32 bytes
}

// encode serializes h into the fixed-length plaintext inner header
// layout. The caller owns the returned buffer and must zero it once
// it has been sealed.
func (h InnerHeader) encode() []byte {
	buf := make([]byte, innerPlainLen)
	off := 0

	binary.LittleEndian.PutUint32(buf[off:], h.PaddingLength)
	off += paddingLenFieldLen

	if h.IsDirectory {
		buf[off] = 1
	}
	off += isDirectoryFieldLen

	binary.LittleEndian.PutUint32(buf[off:], h.FileNameLength)
	off += fileNameLenFieldLen

	copy(buf[off:off+fileNameFieldLen], []byte(h.FileName))
	off += fileNameFieldLen

	copy(buf[off:off+dekFieldLen], h.DEK)

	return buf
}

// decodeInner parses the fixed-length plaintext inner header layout.
// The DEK field is copied into a fresh slice so it survives the caller
// zeroing plain afterward.
func decodeInner(plain []byte) InnerHeader {
	off := 0

	paddingLength := binary.LittleEndian.Uint32(plain[off:])
	off += paddingLenFieldLen

	isDirectory := plain[off] != 0
	off += isDirectoryFieldLen

	fileNameLength := binary.LittleEndian.Uint32(plain[off:])
	off += fileNameLenFieldLen

	nameBytes := plain[off : off+fileNameFieldLen]
	name := string(nameBytes[:clampNameLen(fileNameLength)])
	off += fileNameFieldLen

	dek := make([]byte, dekFieldLen)
	copy(dek, plain[off:off+dekFieldLen])

	return InnerHeader{
		PaddingLength:  paddingLength,
		IsDirectory:    isDirectory,
		FileNameLength: fileNameLength,
		FileName:       name,
		DEK:            dek,
	}
}

func clampNameLen(n uint32) uint32 {
	if n > FileNameMax {
		return FileNameMax
	}
	return n
}
