// Package airdrop tops up accounts from a cluster faucet.
package airdrop

import (
	"context"
	"crypto/ed25519"
	"math"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/favorites-client/pkg/metrics"
	"github.com/code-payments/favorites-client/pkg/rate"
	"github.com/code-payments/favorites-client/pkg/solana"
	"github.com/code-payments/favorites-client/pkg/sync"
)

const (
	metricsStructName = "airdrop.airdropper"

	airdropEventName         = "Airdrop"
	airdropDurationMetric    = "Airdrop.Duration"
	airdropRequestCountMetic = "Airdrop.Requests"

	accountLockStripes = 64
)

var (
	ErrInvalidThresholds = errors.New("target balance must be non-zero and at least the minimum balance")
	ErrAirdropFailed     = errors.New("airdrop transaction failed")
)

// SolToLamports converts a SOL amount to lamports, rounding to the nearest
// lamport.
func SolToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(math.Round(sol * solana.LamportsPerSol))
}

// Airdropper funds accounts through a single RPC endpoint, pacing faucet
// requests against that endpoint.
type Airdropper struct {
	log        *logrus.Entry
	conf       *conf
	client     solana.Client
	limiter    rate.Limiter
	locks      *sync.StripedLock
	endpoint   string
	commitment solana.Commitment
}

func NewAirdropper(client solana.Client, endpoint string, configProvider ConfigProvider) *Airdropper {
	conf := configProvider()

	return &Airdropper{
		log:        logrus.StandardLogger().WithField("type", "airdrop/airdropper"),
		conf:       conf,
		client:     client,
		limiter:    rate.NewLocalRateLimiter(xrate.Limit(conf.requestRate.Get(context.Background()))),
		locks:      sync.NewStripedLock(accountLockStripes),
		endpoint:   endpoint,
		commitment: solana.CommitmentConfirmed,
	}
}

// FundIfRequired applies AirdropIfRequired with the configured thresholds.
func (a *Airdropper) FundIfRequired(ctx context.Context, publicKey ed25519.PublicKey) (uint64, error) {
	minBalance := SolToLamports(a.conf.minBalance.Get(ctx))
	targetBalance := SolToLamports(a.conf.targetBalance.Get(ctx))
	return a.AirdropIfRequired(ctx, publicKey, minBalance, targetBalance)
}

// AirdropIfRequired requests targetBalance minus the current balance when the
// balance is below minBalance, and returns the resulting balance in lamports.
// Concurrent calls for the same account are serialized, so only the first
// one requests an airdrop.
func (a *Airdropper) AirdropIfRequired(ctx context.Context, publicKey ed25519.PublicKey, minBalance, targetBalance uint64) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "AirdropIfRequired")
	defer tracer.End()

	mu := a.locks.Get(publicKey)
	mu.Lock()
	defer mu.Unlock()

	balance, err := airdropIfRequired(ctx, a.log, a.client, a.limiter, a.endpoint, a.commitment, publicKey, minBalance, targetBalance)
	tracer.OnError(err)
	return balance, err
}

// AirdropIfRequired is the unthrottled form of Airdropper.AirdropIfRequired,
// waiting for the airdrop to reach confirmed commitment.
func AirdropIfRequired(ctx context.Context, client solana.Client, publicKey ed25519.PublicKey, minBalance, targetBalance uint64) (uint64, error) {
	log := logrus.StandardLogger().WithField("type", "airdrop")
	return airdropIfRequired(ctx, log, client, &rate.NoLimiter{}, "", solana.CommitmentConfirmed, publicKey, minBalance, targetBalance)
}

func airdropIfRequired(
	ctx context.Context,
	log *logrus.Entry,
	client solana.Client,
	limiter rate.Limiter,
	limiterKey string,
	commitment solana.Commitment,
	publicKey ed25519.PublicKey,
	minBalance, targetBalance uint64,
) (uint64, error) {
	if targetBalance == 0 || targetBalance < minBalance {
		return 0, ErrInvalidThresholds
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return 0, errors.New("invalid public key")
	}

	log = log.WithFields(logrus.Fields{
		"method":  "AirdropIfRequired",
		"account": base58.Encode(publicKey),
	})

	balance, err := getBalance(client, publicKey)
	if err != nil {
		return 0, err
	}

	if balance >= minBalance {
		log.WithField("balance", balance).Debug("balance above minimum, skipping airdrop")
		return balance, nil
	}

	if err := limiter.Wait(ctx, limiterKey); err != nil {
		return 0, err
	}

	amount := targetBalance - balance
	log = log.WithField("lamports", amount)

	start := time.Now()
	sig, err := client.RequestAirdrop(publicKey, amount, commitment)
	metrics.RecordCount(ctx, airdropRequestCountMetic, 1)
	if err != nil {
		log.WithError(err).Warn("failure requesting airdrop")
		return 0, errors.Wrap(err, "error requesting airdrop")
	}

	log = log.WithField("signature", sig.String())

	status, err := solana.WaitForSignature(client, sig, commitment)
	if err != nil {
		log.WithError(err).Warn("failure waiting for airdrop")
		if status != nil && status.ErrorResult != nil {
			return 0, errors.Wrap(ErrAirdropFailed, status.ErrorResult.Error())
		}
		return 0, errors.Wrap(err, "error waiting for airdrop confirmation")
	}
	metrics.RecordDuration(ctx, airdropDurationMetric, time.Since(start))

	balance, err = getBalance(client, publicKey)
	if err != nil {
		return 0, err
	}

	metrics.RecordEvent(ctx, airdropEventName, map[string]interface{}{
		"account":  base58.Encode(publicKey),
		"lamports": amount,
		"balance":  balance,
	})
	log.WithField("balance", balance).Debug("airdrop confirmed")

	return balance, nil
}

func getBalance(client solana.Client, publicKey ed25519.PublicKey) (uint64, error) {
	balance, err := client.GetBalance(publicKey)
	if err == solana.ErrNoBalance {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrap(err, "error getting balance")
	}
	return balance, nil
}
