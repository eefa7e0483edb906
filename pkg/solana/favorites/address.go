package favorites

import (
	"crypto/ed25519"

	"github.com/code-payments/favorites-client/pkg/solana"
)

var (
	favoritesPrefix = []byte("favorites")
)

type GetFavoritesAddressArgs struct {
	User ed25519.PublicKey
}

// GetFavoritesAddress derives the favorites account of a user along with its
// bump seed.
func GetFavoritesAddress(args *GetFavoritesAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		favoritesPrefix,
		args.User,
	)
}

// VerifyFavoritesAddress reports whether address is the favorites account of
// user under the given bump.
func VerifyFavoritesAddress(user, address ed25519.PublicKey, bump uint8) bool {
	expected, err := solana.CreateProgramAddress(PROGRAM_ID, favoritesPrefix, user, []byte{bump})
	if err != nil {
		return false
	}
	return expected.Equal(address)
}
