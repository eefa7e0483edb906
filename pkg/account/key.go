package account

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrNilKey              = errors.New("key is nil")
	ErrInvalidKeyLength    = errors.Errorf("key must be %d or %d bytes", ed25519.PublicKeySize, ed25519.PrivateKeySize)
	ErrKeyEncodingMismatch = errors.New("key bytes and base58 encoding differ")
)

// Key is an ed25519 public key, or a private key in the 64 byte seed and
// public key layout used by Solana keypairs. Its base58 form is kept alongside.
type Key struct {
	raw     []byte
	encoded string
}

func NewKeyFromBytes(raw []byte) (*Key, error) {
	return newKey(raw, base58.Encode(raw))
}

func NewKeyFromString(encoded string) (*Key, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding key as base58")
	}
	return newKey(raw, encoded)
}

// NewRandomKey generates a private key.
func NewRandomKey() (*Key, error) {
	_, private, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error generating private key")
	}
	return NewKeyFromBytes(private)
}

func newKey(raw []byte, encoded string) (*Key, error) {
	k := &Key{
		raw:     raw,
		encoded: encoded,
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *Key) ToBytes() []byte {
	return k.raw
}

func (k *Key) ToBase58() string {
	return k.encoded
}

func (k *Key) IsPublic() bool {
	return len(k.raw) == ed25519.PublicKeySize
}

// Public returns the public half of a private key. A public key is returned
// as is.
func (k *Key) Public() (*Key, error) {
	if k.IsPublic() {
		return k, nil
	}

	public, err := NewKeyFromBytes(ed25519.PrivateKey(k.raw).Public().(ed25519.PublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "error deriving public key")
	}
	return public, nil
}

func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.encoded == other.encoded
}

func (k *Key) Validate() error {
	switch {
	case k == nil:
		return ErrNilKey
	case len(k.raw) != ed25519.PublicKeySize && len(k.raw) != ed25519.PrivateKeySize:
		return ErrInvalidKeyLength
	case base58.Encode(k.raw) != k.encoded:
		return ErrKeyEncodingMismatch
	}
	return nil
}
