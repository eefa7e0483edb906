package favorites

import (
	"context"
	"strings"
	"testing"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/favorites-client/pkg/account"
	config_memory "github.com/code-payments/favorites-client/pkg/config/memory"
	"github.com/code-payments/favorites-client/pkg/config/wrapper"
	"github.com/code-payments/favorites-client/pkg/favorites/memory"
	"github.com/code-payments/favorites-client/pkg/metrics"
	"github.com/code-payments/favorites-client/pkg/pointer"
	"github.com/code-payments/favorites-client/pkg/solana"
	favorites_program "github.com/code-payments/favorites-client/pkg/solana/favorites"
	"github.com/code-payments/favorites-client/pkg/solana/system"
	"github.com/code-payments/favorites-client/pkg/testutil"
)

func TestClient_SubmissionErrorTranslation(t *testing.T) {
	defer testutil.DisableLogging()()

	env := setup(t, true)

	_, err := env.client.SetFavorites(env.ctx, env.user, 23, "red")
	require.NoError(t, err)

	_, err = env.client.SetFavorites(env.ctx, env.user, 23, "red")
	require.Error(t, err)

	var submissionErr *SubmissionError
	require.True(t, errors.As(err, &submissionErr))
	assert.Equal(t, "Account already in use", submissionErr.Message)
	assert.NotEmpty(t, submissionErr.Logs)
	assert.NotEqual(t, solana.Signature{}, submissionErr.Signature)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	require.NotNil(t, txErr.InstructionError())
	assert.EqualValues(t, system.ErrorAccountAlreadyInUse, *txErr.InstructionError().CustomError())
	assert.Equal(t, "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x0", errors.Cause(err).Error())
}

func TestClient_UntranslatedFailure(t *testing.T) {
	env := setup(t, true)

	poor := testutil.NewRandomAccount(t)

	// The fee payer has never been funded, which isn't a program error
	_, err := env.client.SetFavorites(env.ctx, poor, 1, "red")
	require.Error(t, err)

	var submissionErr *SubmissionError
	require.True(t, errors.As(err, &submissionErr))
	assert.Equal(t, "Transaction simulation failed: Attempt to debit an account but found no record of a prior credit.", submissionErr.Message)
}

func TestClient_InsufficientFundsForRent(t *testing.T) {
	env := setup(t, true)

	poor := testutil.NewFundedAccount(t, env.ledger, 10_000)

	_, err := env.client.SetFavorites(env.ctx, poor, 1, "red")
	require.Error(t, err)
	assert.Equal(t, system.ProgramErrors[system.ErrorResultWithNegativeLamports], err.Error())
}

func TestClient_ColorValidation(t *testing.T) {
	color := make([]byte, favorites_program.MaxColorLength+1)
	for i := range color {
		color[i] = 'z'
	}

	env := setup(t, true)
	_, err := env.client.SetFavorites(env.ctx, env.user, 1, string(color))
	assert.Equal(t, ErrColorTooLong, err)

	// Without local validation the program accepts anything fitting its
	// allocation
	env = setup(t, false)
	assert.False(t, env.client.ValidatesColorLength(env.ctx))
	_, err = env.client.SetFavorites(env.ctx, env.user, 1, string(color))
	require.NoError(t, err)

	actual, err := env.client.GetFavoritesForUser(env.ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, string(color), actual.Color)

	tooLarge := make([]byte, favorites_program.FavoritesAccountSize)
	_, err = env.client.UpdateFavorites(env.ctx, env.user, nil, pointer.String(string(tooLarge)))
	assert.EqualError(t, err, favorites_program.ErrAccountDidNotSerialize.Error())
}

func TestClient_ColorValidatedOnEveryUpdatePath(t *testing.T) {
	env := setup(t, true)

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("favorites-client-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)

	ctx, end := metrics.StartTransaction(metrics.NewContext(env.ctx, app), "TestClient_ColorValidatedOnEveryUpdatePath")
	defer end()

	assert.True(t, env.client.ValidatesColorLength(ctx))

	_, err = env.client.SetFavorites(ctx, env.user, 3, "red")
	require.NoError(t, err)

	favoritesAccount, _, err := env.user.ToFavoritesAccount()
	require.NoError(t, err)

	color := strings.Repeat("z", favorites_program.MaxColorLength+1)

	_, err = env.client.UpdateFavorites(ctx, env.user, nil, &color)
	assert.Equal(t, ErrColorTooLong, err)

	_, err = env.client.UpdateFavoritesAt(ctx, env.user, favoritesAccount, pointer.Uint64(4), &color)
	assert.Equal(t, ErrColorTooLong, err)

	// Nothing was submitted
	actual, err := env.client.GetFavorites(ctx, favoritesAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 3, actual.Number)
	assert.Equal(t, "red", actual.Color)

	_, err = env.client.UpdateFavoritesAt(ctx, env.user, favoritesAccount, pointer.Uint64(4), pointer.String(color[:favorites_program.MaxColorLength]))
	require.NoError(t, err)

	actual, err = env.client.GetFavorites(ctx, favoritesAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 4, actual.Number)
	assert.Equal(t, color[:favorites_program.MaxColorLength], actual.Color)
}

func TestClient_MissingPrivateKey(t *testing.T) {
	env := setup(t, true)

	publicOnly, err := account.NewAccountFromPublicKey(env.user.PublicKey())
	require.NoError(t, err)

	_, err = env.client.SetFavorites(env.ctx, publicOnly, 1, "red")
	assert.Equal(t, ErrMissingPrivateKey, err)

	_, err = env.client.UpdateFavorites(env.ctx, publicOnly, pointer.Uint64(1), nil)
	assert.Equal(t, ErrMissingPrivateKey, err)
}

func TestClient_CancelledContext(t *testing.T) {
	env := setup(t, true)

	ctx, cancel := context.WithCancel(env.ctx)
	cancel()

	_, err := env.client.SetFavorites(ctx, env.user, 1, "red")
	assert.Equal(t, context.Canceled, err)
}

func TestClient_GetFavoritesWrongOwner(t *testing.T) {
	env := setup(t, true)

	// A system owned account isn't a favorites account
	_, err := env.client.GetFavorites(env.ctx, env.user)
	assert.True(t, errors.Is(err, favorites_program.ErrInvalidAccountData))
}

func TestClient_InvalidCommitment(t *testing.T) {
	ledger := memory.NewLedger()
	client := NewClient(ledger, WithOverrides("eventually", true))
	assert.Equal(t, solana.CommitmentConfirmed, client.commitment(context.Background()))

	client = NewClient(ledger, WithOverrides("finalized", true))
	assert.Equal(t, solana.CommitmentFinalized, client.commitment(context.Background()))
}

func TestClient_ConfigChangesApplyToNextCall(t *testing.T) {
	env := setup(t, true)

	commitment := config_memory.NewConfig("confirmed")
	validateColorLength := config_memory.NewConfig(true)
	client := NewClient(env.ledger, func() *conf {
		return &conf{
			commitment:          wrapper.NewStringConfig(commitment, defaultCommitment),
			validateColorLength: wrapper.NewBoolConfig(validateColorLength, defaultValidateColorLength),
		}
	})

	color := strings.Repeat("z", favorites_program.MaxColorLength+1)
	_, err := client.SetFavorites(env.ctx, env.user, 1, color)
	assert.Equal(t, ErrColorTooLong, err)

	validateColorLength.SetValue(false)
	_, err = client.SetFavorites(env.ctx, env.user, 1, color)
	require.NoError(t, err)

	commitment.SetValue("finalized")
	assert.Equal(t, solana.CommitmentFinalized, client.commitment(env.ctx))

	// Cleared values fall back to the defaults
	commitment.ClearValue()
	validateColorLength.ClearValue()
	assert.Equal(t, solana.CommitmentConfirmed, client.commitment(env.ctx))
	_, err = client.UpdateFavorites(env.ctx, env.user, nil, pointer.String(color))
	assert.Equal(t, ErrColorTooLong, err)
}

func TestClient_FavoritesAddressCached(t *testing.T) {
	env := setup(t, true)

	expected, _, err := env.user.ToFavoritesAccount()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		actual, err := env.client.favoritesAddress(env.user)
		require.NoError(t, err)
		assert.True(t, expected.Equal(actual))
	}
	assert.Equal(t, 1, env.client.addresses.GetWeight())

	other := testutil.NewRandomAccount(t)
	actual, err := env.client.favoritesAddress(other)
	require.NoError(t, err)
	assert.False(t, expected.Equal(actual))
	assert.Equal(t, 2, env.client.addresses.GetWeight())
}

func TestProgramErrors(t *testing.T) {
	assert.Equal(t, "Account already in use", ProgramErrors[system.ErrorAccountAlreadyInUse])
	assert.Equal(t, "A seeds constraint was violated", ProgramErrors[int(favorites_program.ErrConstraintSeeds)])
	assert.Len(t, ProgramErrors, len(system.ProgramErrors)+len(favorites_program.ProgramErrors))
}

type testEnv struct {
	ctx    context.Context
	ledger *memory.Ledger
	client *Client
	user   *account.Account
}

func setup(t *testing.T, validateColorLength bool) *testEnv {
	ctx := context.Background()
	ledger := memory.NewLedger()

	user := testutil.NewFundedAccount(t, ledger, solana.LamportsPerSol)

	return &testEnv{
		ctx:    ctx,
		ledger: ledger,
		client: NewClient(ledger, WithOverrides("confirmed", validateColorLength)),
		user:   user,
	}
}
