package account

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/favorites-client/pkg/solana/favorites"
)

func TestAccountWithPublicKey(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var accounts []*Account

	account, err := NewAccountFromPublicKeyBytes(publicKey)
	require.NoError(t, err)
	accounts = append(accounts, account)

	account, err = NewAccountFromPublicKeyString(base58.Encode(publicKey))
	require.NoError(t, err)
	accounts = append(accounts, account)

	for _, account := range accounts {
		assert.EqualValues(t, publicKey, account.PublicKey().ToBytes())
		assert.Nil(t, account.PrivateKey())
		assert.True(t, account.IsOnCurve())

		_, err = account.Sign([]byte("message"))
		assert.Error(t, err)

		_, err = account.ToKeypairJSON()
		assert.Error(t, err)
	}
}

func TestAccountWithPrivateKey(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var accounts []*Account

	account, err := NewAccountFromPrivateKeyBytes(privateKey)
	require.NoError(t, err)
	accounts = append(accounts, account)

	account, err = NewAccountFromPrivateKeyString(base58.Encode(privateKey))
	require.NoError(t, err)
	accounts = append(accounts, account)

	for _, account := range accounts {
		assert.EqualValues(t, publicKey, account.PublicKey().ToBytes())
		assert.EqualValues(t, privateKey, account.PrivateKey().ToBytes())

		message := []byte("message")
		signature, err := account.Sign(message)
		require.NoError(t, err)
		assert.Equal(t, ed25519.Sign(privateKey, message), signature)
	}

	_, err = NewAccountFromPrivateKeyBytes(publicKey)
	assert.Error(t, err)
}

func TestAccountKeypairJSON(t *testing.T) {
	account, err := NewRandomAccount()
	require.NoError(t, err)

	encoded, err := account.ToKeypairJSON()
	require.NoError(t, err)

	decoded, err := NewAccountFromKeypairJSON(encoded)
	require.NoError(t, err)
	assert.True(t, account.Equal(decoded))
	assert.EqualValues(t, account.PrivateKey().ToBytes(), decoded.PrivateKey().ToBytes())

	for _, invalid := range []string{
		"not json",
		"[1,2,3]",
		"[256]",
		"[-1]",
	} {
		_, err := NewAccountFromKeypairJSON([]byte(invalid))
		assert.Error(t, err, invalid)
	}
}

func TestAccountToFavoritesAccount(t *testing.T) {
	owner, err := NewRandomAccount()
	require.NoError(t, err)

	favoritesAccount, bump, err := owner.ToFavoritesAccount()
	require.NoError(t, err)

	assert.False(t, favoritesAccount.IsOnCurve())
	assert.Nil(t, favoritesAccount.PrivateKey())
	assert.True(t, favorites.VerifyFavoritesAddress(owner.PublicKey().ToBytes(), favoritesAccount.PublicKey().ToBytes(), bump))

	again, againBump, err := owner.ToFavoritesAccount()
	require.NoError(t, err)
	assert.True(t, favoritesAccount.Equal(again))
	assert.Equal(t, bump, againBump)

	other, err := NewRandomAccount()
	require.NoError(t, err)
	otherFavorites, _, err := other.ToFavoritesAccount()
	require.NoError(t, err)
	assert.False(t, favoritesAccount.Equal(otherFavorites))
}

func TestAccountEqual(t *testing.T) {
	a, err := NewRandomAccount()
	require.NoError(t, err)
	b, err := NewAccountFromPublicKey(a.PublicKey())
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.String(), b.String())

	var nilAccount *Account
	assert.False(t, a.Equal(nilAccount))
	assert.True(t, nilAccount.Equal(nil))
}
