// Package favorites contains bindings for the favorites Anchor program, which
// stores a user's favorite number and color in an account derived from the
// user's key.
package favorites

import (
	"crypto/ed25519"
	"errors"

	"github.com/mr-tron/base58/base58"

	"github.com/code-payments/favorites-client/pkg/solana/system"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("At4g5RmWPSE5w91VwMbZWWdUNC3uQ3RaXYA4yMrVsuk8")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(system.ProgramKey[:])
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
