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

// Package kdf bridges passwords, symmetric keys, and X25519 key
// exchange into a 32-byte Key-Encryption-Key.
package kdf

import (
	"fmt"

	"github.com/kryptorfile/kryptor/primitives"
)

// PreSharedKeySize is the size of the optional asymmetric-mode pepper.
// Absent, it is treated as this many zero bytes so its presence or
// absence is still authenticated in the KEK transcript.
const PreSharedKeySize = 32

// ZeroPreSharedKey is the value used in place of a real pre-shared key
// when the caller supplies none.
var ZeroPreSharedKey = make([]byte, PreSharedKeySize)

// Password derives a KEK from a password and the file's header nonce,
// then mixes in an optional pepper (a pre-shared symmetric key). pepper
// may be nil, in which case ZeroPreSharedKey is used so its absence is
// still reflected in the derivation.
func Password(password, headerNonce, pepper []byte) (*primitives.Secret, error) {
	if len(headerNonce) < primitives.Argon2SaltSize {
		return nil, fmt.Errorf("kdf: password: header nonce too short for salt")
	}
	if pepper == nil {
		pepper = ZeroPreSharedKey
	}

	argonKey, err := primitives.Argon2id(password, headerNonce[:primitives.Argon2SaltSize], primitives.KeySize)
	if err != nil {
		return nil, fmt.Errorf("kdf: password: argon2id: %w", err)
	}
	defer primitives.Zero(argonKey)

	kek, err := primitives.Blake2b(argonKey, pepper, primitives.KeySize)
	if err != nil {
		return nil, fmt.Errorf("kdf: password: pepper mix: %w", err)
	}
	return primitives.NewSecret(kek), nil
}

// Symmetric derives a KEK from a pre-shared 32-byte symmetric key and
// the file's header nonce.
func Symmetric(symmetricKey, headerNonce []byte) (*primitives.Secret, error) {
	if len(symmetricKey) != primitives.KeySize {
		return nil, fmt.Errorf("kdf: symmetric: key must be %d bytes, got %d", primitives.KeySize, len(symmetricKey))
	}
	kek, err := primitives.Blake2b(symmetricKey, headerNonce, primitives.KeySize)
	if err != nil {
		return nil, fmt.Errorf("kdf: symmetric: %w", err)
	}
	return primitives.NewSecret(kek), nil
}

// transcript implements the shared KEK derivation transcript used by
// every asymmetric mode: blake2b(s1 || s2 || epk || recipientPublic || psk).
func transcript(s1, s2, epk, recipientPublic, psk []byte) (*primitives.Secret, error) {
	if psk == nil {
		psk = ZeroPreSharedKey
	}
	buf := make([]byte, 0, len(s1)+len(s2)+len(epk)+len(recipientPublic)+len(psk))
	buf = append(buf, s1...)
	buf = append(buf, s2...)
	buf = append(buf, epk...)
	buf = append(buf, recipientPublic...)
	buf = append(buf, psk...)
	defer primitives.Zero(buf)

	kek, err := primitives.Blake2b(nil, buf, primitives.KeySize)
	if err != nil {
		return nil, fmt.Errorf("kdf: transcript: %w", err)
	}
	return primitives.NewSecret(kek), nil
}

// SendResult carries the sender-side KEK and the ephemeral public key
// that must be embedded in the file header.
type SendResult struct {
	KEK               *primitives.Secret
	EphemeralPublic []byte
}

// Send derives the sender-side KEK for private-key -> public-key
// encryption. It generates a fresh ephemeral X25519 keypair, computes
// both ECDH legs, mixes the transcript, and zeroises the ephemeral
// private scalar before returning.
func Send(senderPrivate, recipientPublic, psk []byte) (*SendResult, error) {
	eskBytes, epk, err := primitives.GenerateX25519Keypair()
	if err != nil {
		return nil, fmt.Errorf("kdf: send: generate ephemeral keypair: %w", err)
	}
	esk := primitives.NewSecret(eskBytes)
	defer esk.Wipe()

	s1, err := primitives.X25519(esk.Bytes(), recipientPublic)
	if err != nil {
		return nil, fmt.Errorf("kdf: send: ephemeral ecdh: %w", err)
	}
	defer primitives.Zero(s1)

	s2, err := primitives.X25519(senderPrivate, recipientPublic)
	if err != nil {
		return nil, fmt.Errorf("kdf: send: static ecdh: %w", err)
	}
	defer primitives.Zero(s2)

	kek, err := transcript(s1, s2, epk, recipientPublic, psk)
	if err != nil {
		return nil, err
	}
	return &SendResult{KEK: kek, EphemeralPublic: epk}, nil
}

// Receive derives the recipient-side KEK for private-key -> public-key
// decryption, given the ephemeral public key read from the file
// header and the sender's static public key. The transcript binds the
// recipient's own public key in the same position Send binds it, so
// it must be re-derived from recipientPrivate here rather than reused
// from senderPublic.
func Receive(recipientPrivate, ephemeralPublic, senderPublic, psk []byte) (*primitives.Secret, error) {
	s1, err := primitives.X25519(recipientPrivate, ephemeralPublic)
	if err != nil {
		return nil, fmt.Errorf("kdf: receive: ephemeral ecdh: %w", err)
	}
	defer primitives.Zero(s1)

	s2, err := primitives.X25519(recipientPrivate, senderPublic)
	if err != nil {
		return nil, fmt.Errorf("kdf: receive: static ecdh: %w", err)
	}
	defer primitives.Zero(s2)

	recipientPublic, err := primitives.X25519PublicFromScalar(recipientPrivate)
	if err != nil {
		return nil, fmt.Errorf("kdf: receive: derive own public key: %w", err)
	}

	return transcript(s1, s2, ephemeralPublic, recipientPublic, psk)
}

// SelfSend derives the sender-side KEK for self-encryption: the
// recipient public key is the sender's own public key.
func SelfSend(selfPrivate, psk []byte) (*SendResult, error) {
	selfPublic, err := primitives.X25519PublicFromScalar(selfPrivate)
	if err != nil {
		return nil, fmt.Errorf("kdf: self send: derive public key: %w", err)
	}
	return Send(selfPrivate, selfPublic, psk)
}

// SelfReceive derives the recipient-side KEK for self-decryption: the
// sender public key equals the decrypting party's own public key.
func SelfReceive(selfPrivate, ephemeralPublic, psk []byte) (*primitives.Secret, error) {
	selfPublic, err := primitives.X25519PublicFromScalar(selfPrivate)
	if err != nil {
		return nil, fmt.Errorf("kdf: self receive: derive public key: %w", err)
	}
	return Receive(selfPrivate, ephemeralPublic, selfPublic, psk)
}
