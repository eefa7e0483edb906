package memory

import (
	"testing"

	"github.com/code-payments/favorites-client/pkg/favorites"
	"github.com/code-payments/favorites-client/pkg/favorites/tests"
)

func TestFavorites_MemoryLedger(t *testing.T) {
	for _, validateColorLength := range []bool{true, false} {
		env := newTestEnv(validateColorLength)
		teardown := func() {
			*env = *newTestEnv(validateColorLength)
		}
		tests.RunTests(t, env, teardown)
	}
}

func newTestEnv(validateColorLength bool) *tests.Env {
	ledger := NewLedger()
	return &tests.Env{
		Solana: ledger,
		Client: favorites.NewClient(ledger, favorites.WithOverrides("confirmed", validateColorLength)),
	}
}
