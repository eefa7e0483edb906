// Package account provides the identities that sign favorites transactions
// and own favorites records.
package account

import (
	"crypto/ed25519"
	"encoding/json"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"

	"github.com/code-payments/favorites-client/pkg/solana/favorites"
)

// Account is a Solana account, optionally holding the private key needed to
// sign for it.
type Account struct {
	publicKey  *Key
	privateKey *Key // Optional
}

func NewAccountFromPublicKey(publicKey *Key) (*Account, error) {
	account := &Account{
		publicKey: publicKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPublicKeyBytes(publicKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPublicKeyString(publicKey string) (*Account, error) {
	key, err := NewKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPrivateKey(privateKey *Key) (*Account, error) {
	if privateKey == nil || privateKey.IsPublic() {
		return nil, errors.New("private key isn't private")
	}

	publicKey, err := privateKey.Public()
	if err != nil {
		return nil, err
	}

	account := &Account{
		publicKey:  publicKey,
		privateKey: privateKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPrivateKeyBytes(privateKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

func NewAccountFromPrivateKeyString(privateKey string) (*Account, error) {
	key, err := NewKeyFromString(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

// NewAccountFromKeypairJSON parses the keypair format written by the Solana
// CLI: a JSON array of the 64 private key bytes.
func NewAccountFromKeypairJSON(data []byte) (*Account, error) {
	var raw []byte
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "error decoding keypair json")
	}

	for _, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("keypair value out of range: %d", v)
		}
		raw = append(raw, byte(v))
	}

	return NewAccountFromPrivateKeyBytes(raw)
}

// NewRandomAccount generates a fresh identity with no prior state.
func NewRandomAccount() (*Account, error) {
	key, err := NewRandomKey()
	if err != nil {
		return nil, err
	}

	account, err := NewAccountFromPrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid account")
	}

	return account, nil
}

func (a *Account) PublicKey() *Key {
	return a.publicKey
}

func (a *Account) PrivateKey() *Key {
	return a.privateKey
}

// ToKeypairJSON encodes the account in the Solana CLI keypair format.
func (a *Account) ToKeypairJSON() ([]byte, error) {
	if a.privateKey == nil {
		return nil, errors.New("private key not available")
	}

	values := make([]int, len(a.privateKey.ToBytes()))
	for i, b := range a.privateKey.ToBytes() {
		values[i] = int(b)
	}
	return json.Marshal(values)
}

func (a *Account) Sign(message []byte) ([]byte, error) {
	if a.privateKey == nil {
		return nil, errors.New("private key not available")
	}

	signature := ed25519.Sign(a.privateKey.ToBytes(), message)
	return signature, nil
}

// ToFavoritesAccount derives the account holding this user's favorites.
func (a *Account) ToFavoritesAccount() (*Account, uint8, error) {
	if err := a.Validate(); err != nil {
		return nil, 0, errors.Wrap(err, "error validating owner account")
	}

	address, bump, err := favorites.GetFavoritesAddress(&favorites.GetFavoritesAddressArgs{
		User: a.PublicKey().ToBytes(),
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error getting favorites address")
	}

	favoritesAccount, err := NewAccountFromPublicKeyBytes(address)
	if err != nil {
		return nil, 0, err
	}
	return favoritesAccount, bump, nil
}

func (a *Account) IsOnCurve() bool {
	return isOnCurve(a.PublicKey().ToBytes())
}

func (a *Account) Validate() error {
	if a == nil {
		return errors.New("account is nil")
	}

	if err := a.PublicKey().Validate(); err != nil {
		return errors.Wrap(err, "error validating public key")
	}

	if !a.PublicKey().IsPublic() {
		return errors.New("public key isn't public")
	}

	// Private keys are optional
	if a.privateKey == nil {
		return nil
	}

	if err := a.privateKey.Validate(); err != nil {
		return errors.Wrap(err, "error validating private key")
	}

	if a.privateKey.IsPublic() {
		return errors.New("private key isn't private")
	}

	expectedPublicKey, err := a.privateKey.Public()
	if err != nil {
		return err
	}
	if !expectedPublicKey.Equal(a.publicKey) {
		return errors.New("private key doesn't map to public key")
	}

	return nil
}

func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.PublicKey().Equal(other.PublicKey())
}

func (a *Account) String() string {
	return a.PublicKey().ToBase58()
}

func isOnCurve(pubKey ed25519.PublicKey) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}

	_, err := new(edwards25519.Point).SetBytes(pubKey)
	return err == nil
}
