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

// Package chunk streams plaintext to ciphertext and back in fixed-size
// authenticated chunks, incrementing the nonce once per chunk.
package chunk

import "errors"

// ErrNonceOverflow is returned if incrementing a nonce would wrap a
// 192-bit counter back to zero. At CHUNK_SIZE granularity this would
// require a file of roughly 2^192 chunks, so this is unreachable in
// practice; the check exists so wraparound is a hard error rather than
// a silent nonce reuse.
var ErrNonceOverflow = errors.New("chunk: nonce counter overflow")

// incrementNonce adds 1 to nonce, treated as a little-endian unsigned
// 192-bit integer, in place. It returns ErrNonceOverflow rather than
// silently wrapping to zero.
func incrementNonce(nonce []byte) error {
	carry := byte(1)
	for i := 0; i < len(nonce); i++ {
		sum := uint16(nonce[i]) + uint16(carry)
		nonce[i] = byte(sum)
		carry = byte(sum >> 8)
		if carry == 0 {
			return nil
		}
	}
	if carry != 0 {
		return ErrNonceOverflow
	}
	return nil
}
