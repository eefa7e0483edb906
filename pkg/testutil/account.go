package testutil

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/favorites-client/pkg/account"
	"github.com/code-payments/favorites-client/pkg/airdrop"
	"github.com/code-payments/favorites-client/pkg/solana"
)

func NewRandomAccount(t *testing.T) *account.Account {
	account, err := account.NewRandomAccount()
	require.NoError(t, err)

	return account
}

// NewFundedAccount returns a fresh account holding lamports.
func NewFundedAccount(t *testing.T, sc solana.Client, lamports uint64) *account.Account {
	account := NewRandomAccount(t)

	_, err := airdrop.AirdropIfRequired(context.Background(), sc, account.PublicKey().ToBytes(), lamports, lamports)
	require.NoError(t, err)

	return account
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}
