package favorites

import (
	"bytes"
	"fmt"

	"github.com/code-payments/favorites-client/pkg/solana/binary"
)

const (
	MaxColorLength = 50

	// Anchor's init space for the account: number + color prefix + color.
	FavoritesInitSpace = (8 + // number
		4 + // color length
		MaxColorLength) // color

	// FavoritesAccountSize is the space the program allocates, which is
	// the discriminator size multiplied by the init space.
	FavoritesAccountSize = discriminatorSize * FavoritesInitSpace

	minFavoritesAccountSize = discriminatorSize + 8 + 4

	// MaxStoredColorLength is the longest color the allocation can hold.
	// Anything longer fails to serialize on chain.
	MaxStoredColorLength = FavoritesAccountSize - minFavoritesAccountSize
)

var favoritesAccountDiscriminator = []byte{44, 205, 48, 25, 172, 96, 48, 27}

type FavoritesAccount struct {
	Number uint64
	Color  string
}

func (obj *FavoritesAccount) String() string {
	return fmt.Sprintf("Favorites{number=%d, color=%q}", obj.Number, obj.Color)
}

// Marshal serializes the account into an allocation of FavoritesAccountSize
// bytes. Unused space is zero.
func (obj *FavoritesAccount) Marshal() ([]byte, error) {
	size := discriminatorSize + 8 + binary.StringSize(obj.Color)
	if size > FavoritesAccountSize {
		return nil, ErrInvalidAccountData
	}

	data := make([]byte, FavoritesAccountSize)

	var offset int
	putDiscriminator(data[offset:], favoritesAccountDiscriminator, &offset)
	binary.PutUint64(data[offset:], obj.Number, &offset)
	binary.PutString(data[offset:], obj.Color, &offset)

	return data, nil
}

func (obj *FavoritesAccount) Unmarshal(data []byte) error {
	if len(data) < minFavoritesAccountSize {
		return ErrInvalidAccountData
	}

	var offset int
	var discriminator []byte

	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, favoritesAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	binary.GetUint64(data[offset:], &obj.Number, &offset)
	if err := binary.GetString(data[offset:], &obj.Color, &offset); err != nil {
		return ErrInvalidAccountData
	}

	return nil
}
