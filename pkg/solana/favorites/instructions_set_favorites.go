package favorites

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/favorites-client/pkg/solana"
	"github.com/code-payments/favorites-client/pkg/solana/binary"
)

var setFavoritesInstructionDiscriminator = []byte{
	211, 137, 87, 135, 161, 224, 187, 120,
}

type SetFavoritesInstructionArgs struct {
	Number uint64
	Color  string
}

type SetFavoritesInstructionAccounts struct {
	User      ed25519.PublicKey
	Favorites ed25519.PublicKey
}

func NewSetFavoritesInstruction(
	accounts *SetFavoritesInstructionAccounts,
	args *SetFavoritesInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte,
		discriminatorSize+
			8+
			binary.StringSize(args.Color))

	putDiscriminator(data[offset:], setFavoritesInstructionDiscriminator, &offset)
	binary.PutUint64(data[offset:], args.Number, &offset)
	binary.PutString(data[offset:], args.Color, &offset)

	return solana.NewInstruction(
		PROGRAM_ID,
		data,
		solana.NewAccountMeta(accounts.User, true),
		solana.NewAccountMeta(accounts.Favorites, false),
		solana.NewReadonlyAccountMeta(SYSTEM_PROGRAM_ID, false),
	)
}

// IsSetFavoritesInstruction reports whether data carries the set_favorites
// discriminator.
func IsSetFavoritesInstruction(data []byte) bool {
	return bytes.HasPrefix(data, setFavoritesInstructionDiscriminator)
}

func SetFavoritesInstructionFromBinary(data []byte) (*SetFavoritesInstructionArgs, error) {
	var offset int
	var discriminator []byte

	if len(data) < discriminatorSize+8+4 {
		return nil, ErrInvalidInstructionData
	}

	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, setFavoritesInstructionDiscriminator) {
		return nil, ErrInvalidInstructionData
	}

	var args SetFavoritesInstructionArgs
	binary.GetUint64(data[offset:], &args.Number, &offset)
	if err := binary.GetString(data[offset:], &args.Color, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}

	return &args, nil
}

// SetFavoritesInstructionAccountsFromInstruction maps the accounts of a
// decompiled set_favorites instruction.
func SetFavoritesInstructionAccountsFromInstruction(i solana.Instruction) (*SetFavoritesInstructionAccounts, error) {
	if !i.Program.Equal(PROGRAM_ID) {
		return nil, ErrInvalidProgram
	}
	if len(i.Accounts) < 3 {
		return nil, ErrInvalidInstructionData
	}

	return &SetFavoritesInstructionAccounts{
		User:      i.Accounts[0].PublicKey,
		Favorites: i.Accounts[1].PublicKey,
	}, nil
}
