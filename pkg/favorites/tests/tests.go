package tests

import (
	"context"
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/favorites-client/pkg/account"
	"github.com/code-payments/favorites-client/pkg/airdrop"
	"github.com/code-payments/favorites-client/pkg/favorites"
	"github.com/code-payments/favorites-client/pkg/pointer"
	"github.com/code-payments/favorites-client/pkg/solana"
	favorites_program "github.com/code-payments/favorites-client/pkg/solana/favorites"
	"github.com/code-payments/favorites-client/pkg/testutil"
)

var (
	minimumBalance = airdrop.SolToLamports(0.5)
	targetBalance  = airdrop.SolToLamports(1)
)

// Env is the cluster a test run executes against.
type Env struct {
	Solana solana.Client
	Client *favorites.Client
}

func RunTests(t *testing.T, env *Env, teardown func()) {
	for _, tf := range []func(t *testing.T, env *Env){
		testCreateFavorites,
		testUpdateFavorites,
		testPartialUpdate,
		testFavoritesAddress,
		testSetTwice,
		testUpdateByOtherUser,
		testUpdateBeforeSet,
		testGetMissingFavorites,
		testColorTooLong,
		testUnsignedUser,
	} {
		tf(t, env)
		teardown()
	}
}

func testCreateFavorites(t *testing.T, env *Env) {
	ctx := context.Background()
	user, log := fundedAccount(t, env, "testCreateFavorites")

	sig, err := env.Client.SetFavorites(ctx, user, 23, "red")
	require.NoError(t, err, errorMessage(err))
	log.WithField("signature", sig.String()).Info("favorites set")

	favoritesAccount, bump, err := user.ToFavoritesAccount()
	require.NoError(t, err)
	assert.True(t, favorites_program.VerifyFavoritesAddress(user.PublicKey().ToBytes(), favoritesAccount.PublicKey().ToBytes(), bump))

	actual, err := env.Client.GetFavorites(ctx, favoritesAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 23, actual.Number)
	assert.Equal(t, "red", actual.Color)
}

func testUpdateFavorites(t *testing.T, env *Env) {
	ctx := context.Background()
	user, log := fundedAccount(t, env, "testUpdateFavorites")

	sig, err := env.Client.SetFavorites(ctx, user, 23, "red")
	require.NoError(t, err, errorMessage(err))
	log.WithField("signature", sig.String()).Info("favorites set")

	favoritesAccount, _, err := user.ToFavoritesAccount()
	require.NoError(t, err)

	actual, err := env.Client.GetFavorites(ctx, favoritesAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 23, actual.Number)
	assert.Equal(t, "red", actual.Color)

	sig, err = env.Client.UpdateFavorites(ctx, user, pointer.Uint64(42), pointer.String("blue"))
	require.NoError(t, err, errorMessage(err))
	log.WithField("signature", sig.String()).Info("favorites updated")

	actual, err = env.Client.GetFavorites(ctx, favoritesAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 42, actual.Number)
	assert.Equal(t, "blue", actual.Color)
}

func testPartialUpdate(t *testing.T, env *Env) {
	ctx := context.Background()
	user, _ := fundedAccount(t, env, "testPartialUpdate")

	_, err := env.Client.SetFavorites(ctx, user, 7, "green")
	require.NoError(t, err, errorMessage(err))

	_, err = env.Client.UpdateFavorites(ctx, user, nil, pointer.String("purple"))
	require.NoError(t, err, errorMessage(err))

	actual, err := env.Client.GetFavoritesForUser(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 7, actual.Number)
	assert.Equal(t, "purple", actual.Color)

	_, err = env.Client.UpdateFavorites(ctx, user, pointer.Uint64(99), nil)
	require.NoError(t, err, errorMessage(err))

	actual, err = env.Client.GetFavoritesForUser(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 99, actual.Number)
	assert.Equal(t, "purple", actual.Color)

	// An update with nothing set leaves the record untouched
	_, err = env.Client.UpdateFavorites(ctx, user, nil, nil)
	require.NoError(t, err, errorMessage(err))

	actual, err = env.Client.GetFavoritesForUser(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 99, actual.Number)
	assert.Equal(t, "purple", actual.Color)
}

func testFavoritesAddress(t *testing.T, env *Env) {
	user := testutil.NewRandomAccount(t)
	other := testutil.NewRandomAccount(t)

	first, firstBump, err := user.ToFavoritesAccount()
	require.NoError(t, err)
	second, secondBump, err := user.ToFavoritesAccount()
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.Equal(t, firstBump, secondBump)
	assert.False(t, first.IsOnCurve())

	otherFavorites, _, err := other.ToFavoritesAccount()
	require.NoError(t, err)
	assert.False(t, first.Equal(otherFavorites))
}

func testSetTwice(t *testing.T, env *Env) {
	ctx := context.Background()
	user, _ := fundedAccount(t, env, "testSetTwice")

	_, err := env.Client.SetFavorites(ctx, user, 1, "orange")
	require.NoError(t, err, errorMessage(err))

	_, err = env.Client.SetFavorites(ctx, user, 2, "yellow")
	assertSubmissionError(t, err, "Account already in use")

	actual, err := env.Client.GetFavoritesForUser(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, actual.Number)
	assert.Equal(t, "orange", actual.Color)
}

func testUpdateByOtherUser(t *testing.T, env *Env) {
	ctx := context.Background()
	owner, _ := fundedAccount(t, env, "testUpdateByOtherUser")
	intruder, _ := fundedAccount(t, env, "testUpdateByOtherUser")

	_, err := env.Client.SetFavorites(ctx, owner, 5, "teal")
	require.NoError(t, err, errorMessage(err))

	ownerFavorites, _, err := owner.ToFavoritesAccount()
	require.NoError(t, err)

	_, err = env.Client.UpdateFavoritesAt(ctx, intruder, ownerFavorites, pointer.Uint64(666), pointer.String("black"))
	assertSubmissionError(t, err, favorites_program.ErrConstraintSeeds.Error())

	actual, err := env.Client.GetFavorites(ctx, ownerFavorites)
	require.NoError(t, err)
	assert.EqualValues(t, 5, actual.Number)
	assert.Equal(t, "teal", actual.Color)
}

func testUpdateBeforeSet(t *testing.T, env *Env) {
	ctx := context.Background()
	user, _ := fundedAccount(t, env, "testUpdateBeforeSet")

	_, err := env.Client.UpdateFavorites(ctx, user, pointer.Uint64(42), pointer.String("blue"))
	assertSubmissionError(t, err, favorites_program.ErrAccountNotInitialized.Error())

	_, err = env.Client.GetFavoritesForUser(ctx, user)
	assert.Equal(t, favorites.ErrFavoritesNotFound, err)
}

func testGetMissingFavorites(t *testing.T, env *Env) {
	user := testutil.NewRandomAccount(t)

	actual, err := env.Client.GetFavoritesForUser(context.Background(), user)
	assert.Equal(t, favorites.ErrFavoritesNotFound, err)
	assert.Nil(t, actual)
}

func testColorTooLong(t *testing.T, env *Env) {
	ctx := context.Background()
	user, _ := fundedAccount(t, env, "testColorTooLong")

	tooLong := strings.Repeat("a", favorites_program.MaxColorLength+1)

	if env.Client.ValidatesColorLength(ctx) {
		_, err := env.Client.SetFavorites(ctx, user, 1, tooLong)
		assert.Equal(t, favorites.ErrColorTooLong, err)

		_, err = env.Client.SetFavorites(ctx, user, 1, tooLong[:favorites_program.MaxColorLength])
		require.NoError(t, err, errorMessage(err))

		_, err = env.Client.UpdateFavorites(ctx, user, nil, pointer.String(tooLong))
		assert.Equal(t, favorites.ErrColorTooLong, err)

		actual, err := env.Client.GetFavoritesForUser(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, tooLong[:favorites_program.MaxColorLength], actual.Color)
		return
	}

	// The program only rejects a color that doesn't fit its allocation
	_, err := env.Client.SetFavorites(ctx, user, 1, tooLong)
	require.NoError(t, err, errorMessage(err))

	actual, err := env.Client.GetFavoritesForUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, tooLong, actual.Color)

	unserializable := strings.Repeat("b", favorites_program.MaxStoredColorLength+1)
	_, err = env.Client.UpdateFavorites(ctx, user, pointer.Uint64(2), pointer.String(unserializable))
	assertSubmissionError(t, err, favorites_program.ErrAccountDidNotSerialize.Error())

	actual, err = env.Client.GetFavoritesForUser(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, actual.Number)
	assert.Equal(t, tooLong, actual.Color)
}

func testUnsignedUser(t *testing.T, env *Env) {
	ctx := context.Background()
	user := testutil.NewRandomAccount(t)
	payer, _ := fundedAccount(t, env, "testUnsignedUser")

	favoritesAccount, _, err := user.ToFavoritesAccount()
	require.NoError(t, err)

	// The user is named in the instruction but only the payer signs
	ix := favorites_program.NewSetFavoritesInstruction(
		&favorites_program.SetFavoritesInstructionAccounts{
			User:      user.PublicKey().ToBytes(),
			Favorites: favoritesAccount.PublicKey().ToBytes(),
		},
		&favorites_program.SetFavoritesInstructionArgs{
			Number: 13,
			Color:  "grey",
		},
	)
	ix.Accounts[0].IsSigner = false

	bh, err := env.Solana.GetLatestBlockhash()
	require.NoError(t, err)

	txn := solana.NewTransaction(payer.PublicKey().ToBytes(), ix)
	txn.SetBlockhash(bh)
	require.NoError(t, txn.Sign(ed25519.PrivateKey(payer.PrivateKey().ToBytes())))

	err = submitAndConfirm(env, txn)
	require.Error(t, err)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr), "unexpected error: %v", err)
	require.NotNil(t, txErr.InstructionError())
	require.NotNil(t, txErr.InstructionError().CustomError())
	assert.EqualValues(t, favorites_program.ErrAccountNotSigner, *txErr.InstructionError().CustomError())
	assert.Equal(t, favorites_program.ErrAccountNotSigner.Error(), solana.GetCustomErrorMessage(favorites.ProgramErrors, err.Error()))

	_, err = env.Client.GetFavorites(ctx, favoritesAccount)
	assert.Equal(t, favorites.ErrFavoritesNotFound, err)
}

// fundedAccount creates a fresh identity holding at least the minimum
// balance, so scenarios never share state.
func fundedAccount(t *testing.T, env *Env, scenario string) (*account.Account, *logrus.Entry) {
	user := testutil.NewRandomAccount(t)

	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"type":     "favorites/tests",
		"scenario": scenario,
		"run":      uuid.New().String(),
		"user":     user.String(),
	})

	balance, err := airdrop.AirdropIfRequired(context.Background(), env.Solana, user.PublicKey().ToBytes(), minimumBalance, targetBalance)
	require.NoError(t, err)
	require.GreaterOrEqual(t, balance, minimumBalance)

	log.WithField("balance", balance).Info("funded test user")
	return user, log
}

func assertSubmissionError(t *testing.T, err error, expected string) {
	require.Error(t, err)

	var submissionErr *favorites.SubmissionError
	require.True(t, errors.As(err, &submissionErr), "unexpected error: %v", err)
	assert.Equal(t, expected, submissionErr.Message)
	assert.Equal(t, expected, err.Error())
}

// submitAndConfirm returns the cluster's failure for txn, whether it was
// rejected on submission or failed once processed.
func submitAndConfirm(env *Env, txn solana.Transaction) error {
	sig, err := env.Solana.SubmitTransaction(txn, solana.CommitmentConfirmed)
	if err != nil {
		return err
	}

	status, err := solana.WaitForSignature(env.Solana, sig, solana.CommitmentConfirmed)
	if status != nil && status.ErrorResult != nil {
		return status.ErrorResult
	}
	return err
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
