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

// Package primitives wraps the cryptographic building blocks the rest of
// the module is built from: an XChaCha20-BLAKE2b AEAD, BLAKE2b hashing,
// Argon2id, X25519 scalar multiplication, a CSPRNG, and best-effort
// secret wiping.
package primitives

// Secret is a fixed-size byte buffer that holds key material. It cannot
// be copied by value misuse because callers are expected to only ever
// hold a *Secret, and Wipe() is safe to call more than once.
type Secret struct {
	b []byte
}

// NewSecret takes ownership of b; the caller must not retain its own
// reference to the backing array.
func NewSecret(b []byte) *Secret {
	return &Secret{b: b}
}

// Bytes returns a read-only view of the secret. The returned slice
// aliases the internal buffer and becomes invalid after Wipe.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Len reports the number of bytes held.
func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Wipe overwrites the buffer with zero bytes and releases it. Safe to
// call on a nil *Secret or a Secret that was already wiped.
func (s *Secret) Wipe() {
	if s == nil || s.b == nil {
		return
	}
	Zero(s.b)
	s.b = nil
}

// Zero overwrites buf with zero bytes in place. It is written as a
// plain loop rather than relying on the compiler to not elide it;
// callers that need a stronger guarantee across Go versions should
// still treat this as best-effort, as the language makes no hard
// promise about dead-store elimination for a buffer that is never read
// again.
func Zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
