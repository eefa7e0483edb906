package memory

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/favorites-client/pkg/solana"
	"github.com/code-payments/favorites-client/pkg/solana/favorites"
	"github.com/code-payments/favorites-client/pkg/solana/system"
)

const maxPermittedDataLength = 10 * 1024 * 1024

var (
	errInvalidArgument          = errors.New(string(solana.InstructionErrorInvalidArgument))
	errInvalidInstructionData   = errors.New(string(solana.InstructionErrorInvalidInstructionData))
	errMissingRequiredSignature = errors.New(string(solana.InstructionErrorMissingRequiredSignature))
)

// execution applies a single transaction against working copies of the
// ledger accounts. Nothing reaches the ledger until commit.
type execution struct {
	ledger   *Ledger
	message  solana.Message
	accounts map[string]*solana.AccountInfo
	logs     []string
}

func newExecution(l *Ledger, m solana.Message) *execution {
	return &execution{
		ledger:   l,
		message:  m,
		accounts: make(map[string]*solana.AccountInfo),
	}
}

func (e *execution) load(account ed25519.PublicKey) (*solana.AccountInfo, bool) {
	key := accountKey(account)
	if info, ok := e.accounts[key]; ok {
		return info, true
	}

	info, ok := e.ledger.accounts[key]
	if !ok {
		return nil, false
	}

	cloned := cloneAccount(info)
	e.accounts[key] = cloned
	return cloned, true
}

func (e *execution) loadOrCreate(account ed25519.PublicKey) *solana.AccountInfo {
	if info, ok := e.load(account); ok {
		return info
	}

	info := &solana.AccountInfo{Owner: system.SystemAccount}
	e.accounts[accountKey(account)] = info
	return info
}

// commit writes the working copies back, dropping accounts left without
// lamports or data.
func (e *execution) commit() {
	for key, info := range e.accounts {
		if info.Lamports == 0 && len(info.Data) == 0 {
			delete(e.ledger.accounts, key)
			continue
		}
		e.ledger.accounts[key] = info
	}
}

func (e *execution) logf(format string, args ...interface{}) {
	e.logs = append(e.logs, fmt.Sprintf(format, args...))
}

func (e *execution) chargeFee(fee uint64) error {
	payer, ok := e.load(e.message.Accounts[0])
	if !ok || payer.Lamports == 0 {
		return rejected(solana.TransactionErrorAccountNotFound, "Transaction simulation failed: Attempt to debit an account but found no record of a prior credit.")
	}
	if payer.Lamports < fee {
		return rejected(solana.TransactionErrorInsufficientFundsForFee, "Transaction simulation failed: Insufficient funds for fee")
	}

	payer.Lamports -= fee
	return nil
}

func (e *execution) run(index int, ix solana.Instruction) error {
	var handler func(int, solana.Instruction) error
	switch {
	case bytes.Equal(ix.Program, system.SystemAccount):
		handler = e.runSystem
	case bytes.Equal(ix.Program, favorites.PROGRAM_ID):
		handler = e.runFavorites
	default:
		return rejected(solana.TransactionErrorProgramAccountNotFound, "Transaction simulation failed: Attempt to load a program that does not exist")
	}

	program := base58.Encode(ix.Program)
	e.logf("Program %s invoke [1]", program)

	if err := handler(index, ix); err != nil {
		e.logf("Program %s failed: %s", program, err)

		ixErr := &solana.InstructionError{Index: index, Err: err}
		txErr, convErr := solana.TransactionErrorFromInstructionError(ixErr)
		if convErr != nil {
			return convErr
		}
		return txErr.WithMessage("Transaction simulation failed: "+ixErr.Error(), e.logs)
	}

	e.logf("Program %s success", program)
	return nil
}

func (e *execution) runSystem(index int, ix solana.Instruction) error {
	if transfer, err := system.DecompileTransfer(e.message, index); err == nil {
		if !isSigner(ix, transfer.From) {
			return errMissingRequiredSignature
		}
		return e.transfer(transfer.From, transfer.To, transfer.Lamports)
	} else if err != solana.ErrIncorrectInstruction {
		return errInvalidInstructionData
	}

	create, err := system.DecompileCreateAccount(e.message, index)
	if err != nil {
		return errInvalidInstructionData
	}
	if !isSigner(ix, create.Funder) || !isSigner(ix, create.Address) {
		return errMissingRequiredSignature
	}
	return e.createAccount(create.Funder, create.Address, create.Lamports, create.Size, create.Owner)
}

func (e *execution) transfer(from, to ed25519.PublicKey, lamports uint64) error {
	source := e.loadOrCreate(from)
	if len(source.Data) > 0 {
		e.logf("Transfer: `from` must not carry data")
		return errInvalidArgument
	}
	if source.Lamports < lamports {
		e.logf("Transfer: insufficient lamports %d, need %d", source.Lamports, lamports)
		return solana.CustomError(system.ErrorResultWithNegativeLamports)
	}

	source.Lamports -= lamports
	e.loadOrCreate(to).Lamports += lamports
	return nil
}

func (e *execution) createAccount(funder, address ed25519.PublicKey, lamports, size uint64, owner ed25519.PublicKey) error {
	target := e.loadOrCreate(address)
	if target.Lamports > 0 || len(target.Data) > 0 || !bytes.Equal(target.Owner, system.SystemAccount) {
		e.logf("Create Account: account Address { address: %s, base: None } already in use", base58.Encode(address))
		return solana.CustomError(system.ErrorAccountAlreadyInUse)
	}
	if size > maxPermittedDataLength {
		return solana.CustomError(system.ErrorInvalidAccountDataLength)
	}

	source := e.loadOrCreate(funder)
	if source.Lamports < lamports {
		e.logf("Transfer: insufficient lamports %d, need %d", source.Lamports, lamports)
		return solana.CustomError(system.ErrorResultWithNegativeLamports)
	}

	source.Lamports -= lamports
	target.Lamports += lamports
	target.Data = make([]byte, size)
	target.Owner = append(ed25519.PublicKey(nil), owner...)
	return nil
}

func (e *execution) runFavorites(_ int, ix solana.Instruction) error {
	switch {
	case len(ix.Data) < 8:
		return e.anchorFailure(favorites.ErrInstructionMissing, "")
	case favorites.IsSetFavoritesInstruction(ix.Data):
		e.logf("Program log: Instruction: SetFavorites")
		return e.setFavorites(ix)
	case favorites.IsUpdateFavoritesInstruction(ix.Data):
		e.logf("Program log: Instruction: UpdateFavorites")
		return e.updateFavorites(ix)
	default:
		return e.anchorFailure(favorites.ErrInstructionFallbackNotFound, "")
	}
}

func (e *execution) setFavorites(ix solana.Instruction) error {
	args, err := favorites.SetFavoritesInstructionFromBinary(ix.Data)
	if err != nil {
		return e.anchorFailure(favorites.ErrInstructionDidNotDeserialize, "")
	}
	accounts, err := favorites.SetFavoritesInstructionAccountsFromInstruction(ix)
	if err != nil {
		return e.anchorFailure(favorites.ErrAccountNotEnoughKeys, "")
	}

	user, record, systemProgram := ix.Accounts[0], ix.Accounts[1], ix.Accounts[2]
	if !user.IsSigner {
		return e.anchorFailure(favorites.ErrAccountNotSigner, "user")
	}
	if !user.IsWritable {
		return e.anchorFailure(favorites.ErrConstraintMut, "user")
	}
	if !e.isFavoritesAddress(accounts.User, accounts.Favorites) {
		return e.anchorFailure(favorites.ErrConstraintSeeds, "favorites")
	}
	if !record.IsWritable {
		return e.anchorFailure(favorites.ErrAccountNotMutable, "favorites")
	}
	if !bytes.Equal(systemProgram.PublicKey, system.SystemAccount) {
		return e.anchorFailure(favorites.ErrInvalidProgramId, "system_program")
	}

	if err := e.initAccount(accounts.User, accounts.Favorites, favorites.FavoritesAccountSize); err != nil {
		return err
	}

	e.logf("Program log: Greetings from %s", base58.Encode(favorites.PROGRAM_ID))
	e.logf("Program log: User %s's favorite number is %d and favorite color is: %s", base58.Encode(accounts.User), args.Number, args.Color)

	return e.storeFavorites(accounts.Favorites, &favorites.FavoritesAccount{
		Number: args.Number,
		Color:  args.Color,
	})
}

func (e *execution) updateFavorites(ix solana.Instruction) error {
	args, err := favorites.UpdateFavoritesInstructionFromBinary(ix.Data)
	if err != nil {
		return e.anchorFailure(favorites.ErrInstructionDidNotDeserialize, "")
	}
	accounts, err := favorites.UpdateFavoritesInstructionAccountsFromInstruction(ix)
	if err != nil {
		return e.anchorFailure(favorites.ErrAccountNotEnoughKeys, "")
	}

	user, record, systemProgram := ix.Accounts[0], ix.Accounts[1], ix.Accounts[2]
	if !user.IsSigner {
		return e.anchorFailure(favorites.ErrAccountNotSigner, "user")
	}
	if !user.IsWritable {
		return e.anchorFailure(favorites.ErrConstraintMut, "user")
	}

	info, ok := e.load(accounts.Favorites)
	if !ok || (info.Lamports == 0 && bytes.Equal(info.Owner, system.SystemAccount)) {
		return e.anchorFailure(favorites.ErrAccountNotInitialized, "favorites")
	}
	if !bytes.Equal(info.Owner, favorites.PROGRAM_ID) {
		return e.anchorFailure(favorites.ErrAccountOwnedByWrongProgram, "favorites")
	}

	var current favorites.FavoritesAccount
	if err := current.Unmarshal(info.Data); err != nil {
		return e.anchorFailure(favorites.ErrAccountDiscriminatorMismatch, "favorites")
	}

	if !record.IsWritable {
		return e.anchorFailure(favorites.ErrConstraintMut, "favorites")
	}
	if !e.isFavoritesAddress(accounts.User, accounts.Favorites) {
		return e.anchorFailure(favorites.ErrConstraintSeeds, "favorites")
	}
	if !bytes.Equal(systemProgram.PublicKey, system.SystemAccount) {
		return e.anchorFailure(favorites.ErrInvalidProgramId, "system_program")
	}

	if args.Number != nil {
		current.Number = *args.Number
	}
	if args.Color != nil {
		current.Color = *args.Color
	}

	e.logf("Program log: Updated favorites for user %s. New favorite number: %d, New favorite color: %s", base58.Encode(accounts.User), current.Number, current.Color)

	return e.storeFavorites(accounts.Favorites, &current)
}

// initAccount creates a rent exempt account owned by the favorites program,
// the way Anchor's init constraint does through the system program.
func (e *execution) initAccount(payer, address ed25519.PublicKey, size uint64) error {
	systemProgram := base58.Encode(system.SystemAccount)
	e.logf("Program %s invoke [2]", systemProgram)

	target := e.loadOrCreate(address)
	if len(target.Data) > 0 || !bytes.Equal(target.Owner, system.SystemAccount) {
		e.logf("Allocate: account Address { address: %s, base: None } already in use", base58.Encode(address))
		e.logf("Program %s failed: %s", systemProgram, solana.CustomError(system.ErrorAccountAlreadyInUse))
		return solana.CustomError(system.ErrorAccountAlreadyInUse)
	}

	var required uint64
	if rent := system.MinimumBalanceForRentExemption(size); target.Lamports < rent {
		required = rent - target.Lamports
	}

	source := e.loadOrCreate(payer)
	if source.Lamports < required {
		e.logf("Transfer: insufficient lamports %d, need %d", source.Lamports, required)
		e.logf("Program %s failed: %s", systemProgram, solana.CustomError(system.ErrorResultWithNegativeLamports))
		return solana.CustomError(system.ErrorResultWithNegativeLamports)
	}

	source.Lamports -= required
	target.Lamports += required
	target.Data = make([]byte, size)
	target.Owner = append(ed25519.PublicKey(nil), favorites.PROGRAM_ID...)

	e.logf("Program %s success", systemProgram)
	return nil
}

func (e *execution) storeFavorites(address ed25519.PublicKey, record *favorites.FavoritesAccount) error {
	data, err := record.Marshal()
	if err != nil {
		return e.anchorFailure(favorites.ErrAccountDidNotSerialize, "")
	}

	e.loadOrCreate(address).Data = data
	return nil
}

func (e *execution) isFavoritesAddress(user, address ed25519.PublicKey) bool {
	expected, _, err := favorites.GetFavoritesAddress(&favorites.GetFavoritesAddressArgs{
		User: user,
	})
	return err == nil && bytes.Equal(expected, address)
}

func (e *execution) anchorFailure(code favorites.AnchorError, account string) error {
	if len(account) > 0 {
		e.logf("Program log: AnchorError caused by account: %s. Error Code: %s. Error Number: %d. Error Message: %s.", account, code.Name(), uint32(code), code.Error())
	} else {
		e.logf("Program log: AnchorError occurred. Error Code: %s. Error Number: %d. Error Message: %s.", code.Name(), uint32(code), code.Error())
	}
	return code.CustomError()
}

func isSigner(ix solana.Instruction, account ed25519.PublicKey) bool {
	for _, meta := range ix.Accounts {
		if meta.IsSigner && bytes.Equal(meta.PublicKey, account) {
			return true
		}
	}
	return false
}
