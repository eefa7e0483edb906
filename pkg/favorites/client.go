// Package favorites is a client for the favorites program, which stores a
// favorite number and color for each user in an account derived from the
// user's key.
package favorites

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/favorites-client/pkg/account"
	"github.com/code-payments/favorites-client/pkg/cache"
	"github.com/code-payments/favorites-client/pkg/metrics"
	"github.com/code-payments/favorites-client/pkg/solana"
	favorites_program "github.com/code-payments/favorites-client/pkg/solana/favorites"
)

const (
	metricsStructName = "favorites.client"

	submissionCountMetric    = "Favorites.Submissions"
	submissionFailureMetric  = "Favorites.SubmissionFailures"
	submissionDurationMetric = "Favorites.SubmissionDuration"

	addressCacheBudget = 1024
)

// Client submits favorites program instructions and reads favorites accounts.
//
// Every submission failure is reported as a *SubmissionError whose message has
// been translated through ProgramErrors.
type Client struct {
	log  *logrus.Entry
	conf *conf
	sc   solana.Client

	// owner address to derived favorites address
	addresses cache.Cache[*account.Account]
}

func NewClient(sc solana.Client, configProvider ConfigProvider) *Client {
	return &Client{
		log:  logrus.StandardLogger().WithField("type", "favorites/client"),
		conf: configProvider(),
		sc:   sc,

		addresses: cache.NewCache[*account.Account](addressCacheBudget),
	}
}

// SetFavorites creates the favorites account of user holding number and
// color. It fails when the account already exists.
func (c *Client) SetFavorites(ctx context.Context, user *account.Account, number uint64, color string) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "SetFavorites")
	defer tracer.End()

	sig, err := c.setFavorites(ctx, user, number, color)
	tracer.OnError(err)
	return sig, err
}

func (c *Client) setFavorites(ctx context.Context, user *account.Account, number uint64, color string) (solana.Signature, error) {
	if err := c.validateColor(ctx, &color); err != nil {
		return solana.Signature{}, err
	}

	favoritesAccount, err := c.favoritesAddress(user)
	if err != nil {
		return solana.Signature{}, err
	}

	ix := favorites_program.NewSetFavoritesInstruction(
		&favorites_program.SetFavoritesInstructionAccounts{
			User:      user.PublicKey().ToBytes(),
			Favorites: favoritesAccount.PublicKey().ToBytes(),
		},
		&favorites_program.SetFavoritesInstructionArgs{
			Number: number,
			Color:  color,
		},
	)

	return c.submit(ctx, "SetFavorites", user, ix)
}

// UpdateFavorites changes the provided fields of the favorites account of
// user. Nil fields keep their stored value.
func (c *Client) UpdateFavorites(ctx context.Context, user *account.Account, number *uint64, color *string) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "UpdateFavorites")
	defer tracer.End()

	favoritesAccount, err := c.favoritesAddress(user)
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	sig, err := c.updateFavorites(ctx, user, favoritesAccount, number, color)
	tracer.OnError(err)
	return sig, err
}

// UpdateFavoritesAt is UpdateFavorites against an explicit favorites
// account. The program rejects any account other than the signer's own.
func (c *Client) UpdateFavoritesAt(ctx context.Context, user, favoritesAccount *account.Account, number *uint64, color *string) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "UpdateFavoritesAt")
	defer tracer.End()

	sig, err := c.updateFavorites(ctx, user, favoritesAccount, number, color)
	tracer.OnError(err)
	return sig, err
}

func (c *Client) updateFavorites(ctx context.Context, user, favoritesAccount *account.Account, number *uint64, color *string) (solana.Signature, error) {
	if err := c.validateColor(ctx, color); err != nil {
		return solana.Signature{}, err
	}

	ix := favorites_program.NewUpdateFavoritesInstruction(
		&favorites_program.UpdateFavoritesInstructionAccounts{
			User:      user.PublicKey().ToBytes(),
			Favorites: favoritesAccount.PublicKey().ToBytes(),
		},
		&favorites_program.UpdateFavoritesInstructionArgs{
			Number: number,
			Color:  color,
		},
	)

	return c.submit(ctx, "UpdateFavorites", user, ix)
}

// GetFavorites fetches and decodes the favorites account at address.
func (c *Client) GetFavorites(ctx context.Context, address *account.Account) (*favorites_program.FavoritesAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetFavorites")
	defer tracer.End()

	info, err := c.sc.GetAccountInfo(address.PublicKey().ToBytes(), c.commitment(ctx))
	if err == solana.ErrNoAccountInfo {
		return nil, ErrFavoritesNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error getting favorites account info")
	}

	if !bytes.Equal(info.Owner, favorites_program.PROGRAM_ID) {
		err := errors.Wrapf(favorites_program.ErrInvalidAccountData, "account %s is not owned by the favorites program", address.String())
		tracer.OnError(err)
		return nil, err
	}

	var record favorites_program.FavoritesAccount
	if err := record.Unmarshal(info.Data); err != nil {
		tracer.OnError(err)
		return nil, errors.Wrapf(err, "error decoding favorites account %s", address.String())
	}

	return &record, nil
}

// GetFavoritesForUser fetches the favorites account derived from user.
func (c *Client) GetFavoritesForUser(ctx context.Context, user *account.Account) (*favorites_program.FavoritesAccount, error) {
	favoritesAccount, err := c.favoritesAddress(user)
	if err != nil {
		return nil, err
	}
	return c.GetFavorites(ctx, favoritesAccount)
}

// favoritesAddress derives the favorites address of user. Derivation searches
// bump seeds with a curve check per attempt, so results are cached.
func (c *Client) favoritesAddress(user *account.Account) (*account.Account, error) {
	key := user.PublicKey().ToBase58()
	if cached, ok := c.addresses.Retrieve(key); ok {
		return cached, nil
	}

	favoritesAccount, _, err := user.ToFavoritesAccount()
	if err != nil {
		return nil, err
	}

	c.addresses.Insert(key, favoritesAccount, 1)
	return favoritesAccount, nil
}

func (c *Client) submit(ctx context.Context, method string, user *account.Account, ix solana.Instruction) (solana.Signature, error) {
	log := c.log.WithFields(logrus.Fields{
		"method": method,
		"user":   user.String(),
	})

	if user.PrivateKey() == nil {
		return solana.Signature{}, ErrMissingPrivateKey
	}
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}

	commitment := c.commitment(ctx)
	start := time.Now()
	metrics.RecordCount(ctx, submissionCountMetric, 1)

	bh, err := c.sc.GetLatestBlockhash()
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "error getting latest blockhash")
	}

	txn := solana.NewTransaction(user.PublicKey().ToBytes(), ix)
	txn.SetBlockhash(bh)
	if err := txn.Sign(ed25519.PrivateKey(user.PrivateKey().ToBytes())); err != nil {
		return solana.Signature{}, errors.Wrap(err, "error signing transaction")
	}

	sig, err := c.sc.SubmitTransaction(txn, commitment)
	log = log.WithField("signature", sig.String())
	if err != nil {
		return sig, c.onSubmissionFailure(ctx, log, sig, err)
	}

	status, err := solana.WaitForSignature(c.sc, sig, commitment)
	if err != nil {
		if status != nil && status.ErrorResult != nil {
			return sig, c.onSubmissionFailure(ctx, log, sig, status.ErrorResult)
		}

		log.WithError(err).Warn("failure waiting for transaction")
		return sig, errors.Wrap(err, "error waiting for transaction confirmation")
	}

	metrics.RecordDuration(ctx, submissionDurationMetric, time.Since(start))
	log.Debug("transaction confirmed")

	return sig, nil
}

func (c *Client) onSubmissionFailure(ctx context.Context, log *logrus.Entry, sig solana.Signature, cause error) error {
	metrics.RecordCount(ctx, submissionFailureMetric, 1)

	err := newSubmissionError(sig, cause)
	log.WithError(cause).WithField("translated", err.Message).Warn("transaction failed")
	return err
}

// ValidatesColorLength reports whether colors longer than MaxColorLength are
// rejected before submission. When it is false the program stores any color
// that fits its allocation.
func (c *Client) ValidatesColorLength(ctx context.Context) bool {
	return c.conf.validateColorLength.Get(ctx)
}

// validateColor checks an optional color.
func (c *Client) validateColor(ctx context.Context, color *string) error {
	if color != nil && c.ValidatesColorLength(ctx) && len(*color) > favorites_program.MaxColorLength {
		return ErrColorTooLong
	}
	return nil
}

func (c *Client) commitment(ctx context.Context) solana.Commitment {
	commitment, err := solana.CommitmentFromString(c.conf.commitment.Get(ctx))
	if err != nil {
		c.log.WithError(err).Warn("invalid commitment configured, using confirmed")
		return solana.CommitmentConfirmed
	}
	return commitment
}
