package airdrop

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/favorites-client/pkg/favorites/memory"
	"github.com/code-payments/favorites-client/pkg/solana"
)

func TestSolToLamports(t *testing.T) {
	assert.EqualValues(t, 500_000_000, SolToLamports(0.5))
	assert.EqualValues(t, 1_000_000_000, SolToLamports(1))
	assert.EqualValues(t, 1, SolToLamports(0.000000001))
	assert.EqualValues(t, 0, SolToLamports(0))
	assert.EqualValues(t, 0, SolToLamports(-1))
}

func TestAirdropIfRequired_BelowMinimum(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	pub := generateKey(t)

	balance, err := AirdropIfRequired(ctx, ledger, pub, SolToLamports(0.5), SolToLamports(1))
	require.NoError(t, err)
	assert.Equal(t, SolToLamports(1), balance)

	actual, err := ledger.GetBalance(pub)
	require.NoError(t, err)
	assert.Equal(t, balance, actual)
}

func TestAirdropIfRequired_TopsUpToTarget(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	pub := generateKey(t)

	_, err := ledger.RequestAirdrop(pub, SolToLamports(0.2), solana.CommitmentConfirmed)
	require.NoError(t, err)

	balance, err := AirdropIfRequired(ctx, ledger, pub, SolToLamports(0.5), SolToLamports(1))
	require.NoError(t, err)
	assert.Equal(t, SolToLamports(1), balance)
}

func TestAirdropIfRequired_AboveMinimum(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	pub := generateKey(t)

	_, err := ledger.RequestAirdrop(pub, SolToLamports(0.75), solana.CommitmentConfirmed)
	require.NoError(t, err)
	slot, err := ledger.GetSlot(solana.CommitmentConfirmed)
	require.NoError(t, err)

	// Faucet failures don't matter when no request is made
	ledger.InduceAirdropErrors()

	balance, err := AirdropIfRequired(ctx, ledger, pub, SolToLamports(0.5), SolToLamports(1))
	require.NoError(t, err)
	assert.Equal(t, SolToLamports(0.75), balance)

	next, err := ledger.GetSlot(solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, slot, next)

	// Exactly the minimum is enough
	balance, err = AirdropIfRequired(ctx, ledger, pub, SolToLamports(0.75), SolToLamports(1))
	require.NoError(t, err)
	assert.Equal(t, SolToLamports(0.75), balance)
}

func TestAirdropIfRequired_FaucetFailure(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	ledger.InduceAirdropErrors()

	_, err := AirdropIfRequired(ctx, ledger, generateKey(t), SolToLamports(0.5), SolToLamports(1))
	assert.Error(t, err)
}

func TestAirdropIfRequired_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	pub := generateKey(t)

	_, err := AirdropIfRequired(ctx, ledger, pub, 0, 0)
	assert.Equal(t, ErrInvalidThresholds, err)

	_, err = AirdropIfRequired(ctx, ledger, pub, SolToLamports(1), SolToLamports(0.5))
	assert.Equal(t, ErrInvalidThresholds, err)

	_, err = AirdropIfRequired(ctx, ledger, pub[:16], SolToLamports(0.5), SolToLamports(1))
	assert.Error(t, err)
}

func TestAirdropper_FundIfRequired(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	airdropper := NewAirdropper(ledger, "memory", withManualTestOverrides(&testOverrides{
		minBalance:    0.25,
		targetBalance: 2,
		requestRate:   100,
	}))

	pub := generateKey(t)
	balance, err := airdropper.FundIfRequired(ctx, pub)
	require.NoError(t, err)
	assert.Equal(t, SolToLamports(2), balance)

	balance, err = airdropper.FundIfRequired(ctx, pub)
	require.NoError(t, err)
	assert.Equal(t, SolToLamports(2), balance)
}

func TestAirdropper_ConcurrentFunding(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	airdropper := NewAirdropper(ledger, "memory", withManualTestOverrides(&testOverrides{
		minBalance:    0.5,
		targetBalance: 1,
		requestRate:   1000,
	}))

	pub := generateKey(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := airdropper.FundIfRequired(ctx, pub)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := ledger.GetBalance(pub)
	require.NoError(t, err)
	assert.Equal(t, SolToLamports(1), balance)
}

func TestAirdropper_CancelledWhileThrottled(t *testing.T) {
	ledger := memory.NewLedger()

	airdropper := NewAirdropper(ledger, "memory", withManualTestOverrides(&testOverrides{
		minBalance:    0.5,
		targetBalance: 1,
		requestRate:   0.001,
	}))

	_, err := airdropper.AirdropIfRequired(context.Background(), generateKey(t), SolToLamports(0.5), SolToLamports(1))
	require.NoError(t, err)

	// The limiter's single token is spent, so the next request can't wait
	// out a cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = airdropper.AirdropIfRequired(ctx, generateKey(t), SolToLamports(0.5), SolToLamports(1))
	assert.Error(t, err)
}

func generateKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
