package favorites

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/favorites-client/pkg/solana"
)

func TestDiscriminators(t *testing.T) {
	for name, expected := range map[string][]byte{
		"global:set_favorites":    setFavoritesInstructionDiscriminator,
		"global:update_favorites": updateFavoritesInstructionDiscriminator,
		"account:Favorites":       favoritesAccountDiscriminator,
	} {
		h := sha256.Sum256([]byte(name))
		assert.Equal(t, expected, h[:discriminatorSize], name)
	}
}

func TestProgramID(t *testing.T) {
	assert.Equal(t, "At4g5RmWPSE5w91VwMbZWWdUNC3uQ3RaXYA4yMrVsuk8", base58.Encode(PROGRAM_ID))
	assert.Equal(t, "11111111111111111111111111111111", base58.Encode(SYSTEM_PROGRAM_ID))
}

func TestSetFavoritesInstruction(t *testing.T) {
	user, favorites := generateKey(t), generateKey(t)

	ix := NewSetFavoritesInstruction(
		&SetFavoritesInstructionAccounts{User: user, Favorites: favorites},
		&SetFavoritesInstructionArgs{Number: 23, Color: "red"},
	)

	assert.Equal(t, PROGRAM_ID, ix.Program)
	assert.Equal(t, []byte{
		211, 137, 87, 135, 161, 224, 187, 120,
		23, 0, 0, 0, 0, 0, 0, 0,
		3, 0, 0, 0, 'r', 'e', 'd',
	}, ix.Data)

	require.Len(t, ix.Accounts, 3)
	assert.Equal(t, solana.NewAccountMeta(user, true), ix.Accounts[0])
	assert.Equal(t, solana.NewAccountMeta(favorites, false), ix.Accounts[1])
	assert.Equal(t, solana.NewReadonlyAccountMeta(SYSTEM_PROGRAM_ID, false), ix.Accounts[2])

	assert.True(t, IsSetFavoritesInstruction(ix.Data))
	assert.False(t, IsUpdateFavoritesInstruction(ix.Data))

	args, err := SetFavoritesInstructionFromBinary(ix.Data)
	require.NoError(t, err)
	assert.EqualValues(t, 23, args.Number)
	assert.Equal(t, "red", args.Color)

	accounts, err := SetFavoritesInstructionAccountsFromInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, user, accounts.User)
	assert.Equal(t, favorites, accounts.Favorites)

	_, err = SetFavoritesInstructionFromBinary(ix.Data[:10])
	assert.Equal(t, ErrInvalidInstructionData, err)

	// Truncated color.
	_, err = SetFavoritesInstructionFromBinary(ix.Data[:len(ix.Data)-1])
	assert.Equal(t, ErrInvalidInstructionData, err)

	ix.Program = generateKey(t)
	_, err = SetFavoritesInstructionAccountsFromInstruction(ix)
	assert.Equal(t, ErrInvalidProgram, err)
}

func TestUpdateFavoritesInstruction(t *testing.T) {
	user, favorites := generateKey(t), generateKey(t)

	number := uint64(42)
	color := "blue"

	for _, tc := range []struct {
		args     UpdateFavoritesInstructionArgs
		expected []byte
	}{
		{
			args: UpdateFavoritesInstructionArgs{Number: &number, Color: &color},
			expected: []byte{
				138, 31, 158, 61, 111, 33, 209, 79,
				1, 42, 0, 0, 0, 0, 0, 0, 0,
				1, 4, 0, 0, 0, 'b', 'l', 'u', 'e',
			},
		},
		{
			args: UpdateFavoritesInstructionArgs{Number: &number},
			expected: []byte{
				138, 31, 158, 61, 111, 33, 209, 79,
				1, 42, 0, 0, 0, 0, 0, 0, 0,
				0,
			},
		},
		{
			args: UpdateFavoritesInstructionArgs{Color: &color},
			expected: []byte{
				138, 31, 158, 61, 111, 33, 209, 79,
				0,
				1, 4, 0, 0, 0, 'b', 'l', 'u', 'e',
			},
		},
		{
			args: UpdateFavoritesInstructionArgs{},
			expected: []byte{
				138, 31, 158, 61, 111, 33, 209, 79,
				0,
				0,
			},
		},
	} {
		args := tc.args
		ix := NewUpdateFavoritesInstruction(
			&UpdateFavoritesInstructionAccounts{User: user, Favorites: favorites},
			&args,
		)
		assert.Equal(t, tc.expected, ix.Data)
		assert.True(t, IsUpdateFavoritesInstruction(ix.Data))

		decoded, err := UpdateFavoritesInstructionFromBinary(ix.Data)
		require.NoError(t, err)
		assert.Equal(t, tc.args, *decoded)

		accounts, err := UpdateFavoritesInstructionAccountsFromInstruction(ix)
		require.NoError(t, err)
		assert.Equal(t, user, accounts.User)
		assert.Equal(t, favorites, accounts.Favorites)
	}

	_, err := UpdateFavoritesInstructionFromBinary(setFavoritesInstructionDiscriminator)
	assert.Equal(t, ErrInvalidInstructionData, err)

	bad := append([]byte{}, updateFavoritesInstructionDiscriminator...)
	bad = append(bad, 3, 0)
	_, err = UpdateFavoritesInstructionFromBinary(bad)
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestFavoritesAccount(t *testing.T) {
	assert.Equal(t, 496, FavoritesAccountSize)

	expected := &FavoritesAccount{Number: 23, Color: "red"}
	data, err := expected.Marshal()
	require.NoError(t, err)
	require.Len(t, data, FavoritesAccountSize)
	assert.Equal(t, favoritesAccountDiscriminator, data[:8])

	var actual FavoritesAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, *expected, actual)
	assert.Equal(t, `Favorites{number=23, color="red"}`, actual.String())

	// Trailing space is ignored when decoding.
	require.NoError(t, actual.Unmarshal(data[:8+8+4+3]))
	assert.Equal(t, *expected, actual)

	data[0]++
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(data))
	assert.Equal(t, ErrInvalidAccountData, actual.Unmarshal(data[:10]))

	assert.Equal(t, 476, MaxStoredColorLength)

	longest := &FavoritesAccount{Color: string(make([]byte, MaxStoredColorLength))}
	_, err = longest.Marshal()
	require.NoError(t, err)

	tooLong := &FavoritesAccount{Color: string(make([]byte, MaxStoredColorLength+1))}
	_, err = tooLong.Marshal()
	assert.Equal(t, ErrInvalidAccountData, err)
}

func TestGetFavoritesAddress(t *testing.T) {
	user := generateKey(t)

	address, bump, err := GetFavoritesAddress(&GetFavoritesAddressArgs{User: user})
	require.NoError(t, err)

	expected, expectedBump, err := solana.FindProgramAddressAndBump(PROGRAM_ID, []byte("favorites"), user)
	require.NoError(t, err)
	assert.Equal(t, expected, address)
	assert.Equal(t, expectedBump, bump)

	assert.True(t, VerifyFavoritesAddress(user, address, bump))
	assert.False(t, VerifyFavoritesAddress(generateKey(t), address, bump))

	other, _, err := GetFavoritesAddress(&GetFavoritesAddressArgs{User: generateKey(t)})
	require.NoError(t, err)
	assert.NotEqual(t, address, other)
}

func TestAnchorErrors(t *testing.T) {
	assert.Equal(t, "A seeds constraint was violated", ErrConstraintSeeds.Error())
	assert.Equal(t, solana.CustomError(3012), ErrAccountNotInitialized.CustomError())
	assert.Equal(t, "AccountNotInitialized", ErrAccountNotInitialized.Name())
	assert.Equal(t, "Unknown", AnchorError(6000).Name())

	for code := range ProgramErrors {
		assert.NotEqual(t, "Unknown", AnchorError(code).Name())
	}

	msg := solana.InstructionError{Index: 0, Err: ErrAccountNotInitialized.CustomError()}.Error()
	assert.Equal(t, "The program expected this account to be already initialized", solana.GetCustomErrorMessage(ProgramErrors, msg))
}

func generateKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
