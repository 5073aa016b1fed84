package kdf

import (
	"fmt"

	"github.com/kryptorfile/kryptor/primitives"
)

// KeySource bridges the caller's resolved key material (already loaded
// by a PasswordProvider / KeyStore collaborator) into the KEK that
// HeaderCodec needs. FileOrchestrator holds one KeySource per file
// operation and never inspects which mode backs it.
type KeySource interface {
	// DeriveEncryptKEK derives the KEK for a new file whose header
	// nonce is headerNonce, returning the ephemeral public key to
	// embed in the header (32 zero bytes for non-asymmetric modes).
	DeriveEncryptKEK(headerNonce []byte) (kek *primitives.Secret, ephemeralPublic []byte, err error)

	// DeriveDecryptKEK derives the KEK to open an existing file given
	// its header nonce and the ephemeral public key read from its
	// header.
	DeriveDecryptKEK(headerNonce, ephemeralPublicFromHeader []byte) (kek *primitives.Secret, err error)
}

type passwordKeySource struct {
	password []byte
	pepper   []byte
}

// NewPasswordKeySource builds a KeySource for password mode. pepper
// may be nil.
func NewPasswordKeySource(password, pepper []byte) KeySource {
	return &passwordKeySource{password: password, pepper: pepper}
}

func (k *passwordKeySource) DeriveEncryptKEK(headerNonce []byte) (*primitives.Secret, []byte, error) {
	kek, err := Password(k.password, headerNonce, k.pepper)
	if err != nil {
		return nil, nil, err
	}
	return kek, make([]byte, primitives.X25519PointSize), nil
}

func (k *passwordKeySource) DeriveDecryptKEK(headerNonce, _ []byte) (*primitives.Secret, error) {
	return Password(k.password, headerNonce, k.pepper)
}

type symmetricKeySource struct {
	key []byte
}

// NewSymmetricKeySource builds a KeySource for symmetric-key mode.
func NewSymmetricKeySource(key []byte) KeySource {
	return &symmetricKeySource{key: key}
}

func (k *symmetricKeySource) DeriveEncryptKEK(headerNonce []byte) (*primitives.Secret, []byte, error) {
	kek, err := Symmetric(k.key, headerNonce)
	if err != nil {
		return nil, nil, err
	}
	return kek, make([]byte, primitives.X25519PointSize), nil
}

func (k *symmetricKeySource) DeriveDecryptKEK(headerNonce, _ []byte) (*primitives.Secret, error) {
	return Symmetric(k.key, headerNonce)
}

type sendKeySource struct {
	senderPrivate   []byte
	recipientPublic []byte
	preSharedKey    []byte
}

// NewSendKeySource builds a sender-side KeySource for private-key ->
// public-key encryption. It only supports the encrypt direction.
func NewSendKeySource(senderPrivate, recipientPublic, preSharedKey []byte) KeySource {
	return &sendKeySource{senderPrivate: senderPrivate, recipientPublic: recipientPublic, preSharedKey: preSharedKey}
}

func (k *sendKeySource) DeriveEncryptKEK(_ []byte) (*primitives.Secret, []byte, error) {
	res, err := Send(k.senderPrivate, k.recipientPublic, k.preSharedKey)
	if err != nil {
		return nil, nil, err
	}
	return res.KEK, res.EphemeralPublic, nil
}

func (k *sendKeySource) DeriveDecryptKEK(_, _ []byte) (*primitives.Secret, error) {
	return nil, fmt.Errorf("kdf: sendKeySource does not support decryption")
}

type receiveKeySource struct {
	recipientPrivate []byte
	senderPublic     []byte
	preSharedKey     []byte
}

// NewReceiveKeySource builds a recipient-side KeySource for
// public-key decryption. It only supports the decrypt direction.
func NewReceiveKeySource(recipientPrivate, senderPublic, preSharedKey []byte) KeySource {
	return &receiveKeySource{recipientPrivate: recipientPrivate, senderPublic: senderPublic, preSharedKey: preSharedKey}
}

func (k *receiveKeySource) DeriveEncryptKEK(_ []byte) (*primitives.Secret, []byte, error) {
	return nil, nil, fmt.Errorf("kdf: receiveKeySource does not support encryption")
}

func (k *receiveKeySource) DeriveDecryptKEK(_, ephemeralPublicFromHeader []byte) (*primitives.Secret, error) {
	return Receive(k.recipientPrivate, ephemeralPublicFromHeader, k.senderPublic, k.preSharedKey)
}

type selfKeySource struct {
	selfPrivate  []byte
	preSharedKey []byte
}

// NewSelfKeySource builds a KeySource for self-encryption: a single
// private key used as both sender and recipient identity.
func NewSelfKeySource(selfPrivate, preSharedKey []byte) KeySource {
	return &selfKeySource{selfPrivate: selfPrivate, preSharedKey: preSharedKey}
}

func (k *selfKeySource) DeriveEncryptKEK(_ []byte) (*primitives.Secret, []byte, error) {
	res, err := SelfSend(k.selfPrivate, k.preSharedKey)
	if err != nil {
		return nil, nil, err
	}
	return res.KEK, res.EphemeralPublic, nil
}

func (k *selfKeySource) DeriveDecryptKEK(_, ephemeralPublicFromHeader []byte) (*primitives.Secret, error) {
	return SelfReceive(k.selfPrivate, ephemeralPublicFromHeader, k.preSharedKey)
}
