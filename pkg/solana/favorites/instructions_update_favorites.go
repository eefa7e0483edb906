package favorites

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/favorites-client/pkg/solana"
	"github.com/code-payments/favorites-client/pkg/solana/binary"
)

var updateFavoritesInstructionDiscriminator = []byte{
	138, 31, 158, 61, 111, 33, 209, 79,
}

// UpdateFavoritesInstructionArgs leaves a field untouched when it is nil.
type UpdateFavoritesInstructionArgs struct {
	Number *uint64
	Color  *string
}

type UpdateFavoritesInstructionAccounts struct {
	User      ed25519.PublicKey
	Favorites ed25519.PublicKey
}

func NewUpdateFavoritesInstruction(
	accounts *UpdateFavoritesInstructionAccounts,
	args *UpdateFavoritesInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte,
		discriminatorSize+
			binary.OptionalUint64Size(args.Number)+
			binary.OptionalStringSize(args.Color))

	putDiscriminator(data[offset:], updateFavoritesInstructionDiscriminator, &offset)
	binary.PutOptionalUint64(data[offset:], args.Number, &offset)
	binary.PutOptionalString(data[offset:], args.Color, &offset)

	return solana.NewInstruction(
		PROGRAM_ID,
		data,
		solana.NewAccountMeta(accounts.User, true),
		solana.NewAccountMeta(accounts.Favorites, false),
		solana.NewReadonlyAccountMeta(SYSTEM_PROGRAM_ID, false),
	)
}

// IsUpdateFavoritesInstruction reports whether data carries the
// update_favorites discriminator.
func IsUpdateFavoritesInstruction(data []byte) bool {
	return bytes.HasPrefix(data, updateFavoritesInstructionDiscriminator)
}

func UpdateFavoritesInstructionFromBinary(data []byte) (*UpdateFavoritesInstructionArgs, error) {
	var offset int
	var discriminator []byte

	if len(data) < discriminatorSize+1+1 {
		return nil, ErrInvalidInstructionData
	}

	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, updateFavoritesInstructionDiscriminator) {
		return nil, ErrInvalidInstructionData
	}

	var args UpdateFavoritesInstructionArgs
	if err := binary.GetOptionalUint64(data[offset:], &args.Number, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}
	if err := binary.GetOptionalString(data[offset:], &args.Color, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}

	return &args, nil
}

// UpdateFavoritesInstructionAccountsFromInstruction maps the accounts of a
// decompiled update_favorites instruction.
func UpdateFavoritesInstructionAccountsFromInstruction(i solana.Instruction) (*UpdateFavoritesInstructionAccounts, error) {
	if !i.Program.Equal(PROGRAM_ID) {
		return nil, ErrInvalidProgram
	}
	if len(i.Accounts) < 3 {
		return nil, ErrInvalidInstructionData
	}

	return &UpdateFavoritesInstructionAccounts{
		User:      i.Accounts[0].PublicKey,
		Favorites: i.Accounts[1].PublicKey,
	}, nil
}
