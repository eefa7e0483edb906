package favorites

import "github.com/code-payments/favorites-client/pkg/solana"

// AnchorError is a framework error code raised by the program before or
// after its handlers run.
//
// Source: https://github.com/coral-xyz/anchor/blob/master/lang/src/error.rs
type AnchorError uint32

const (
	ErrInstructionMissing           AnchorError = 100
	ErrInstructionFallbackNotFound  AnchorError = 101
	ErrInstructionDidNotDeserialize AnchorError = 102

	ErrConstraintMut   AnchorError = 2000
	ErrConstraintSeeds AnchorError = 2006

	ErrAccountDiscriminatorNotFound AnchorError = 3001
	ErrAccountDiscriminatorMismatch AnchorError = 3002
	ErrAccountDidNotSerialize       AnchorError = 3004
	ErrAccountNotEnoughKeys         AnchorError = 3005
	ErrAccountNotMutable            AnchorError = 3006
	ErrAccountOwnedByWrongProgram   AnchorError = 3007
	ErrInvalidProgramId             AnchorError = 3008
	ErrAccountNotSigner             AnchorError = 3010
	ErrAccountNotInitialized        AnchorError = 3012
)

// ProgramErrors describes the Anchor errors the program can raise.
var ProgramErrors = solana.ErrorTable{
	int(ErrInstructionMissing):           "8 byte instruction identifier not provided",
	int(ErrInstructionFallbackNotFound):  "Fallback functions are not supported",
	int(ErrInstructionDidNotDeserialize): "The program could not deserialize the given instruction",

	int(ErrConstraintMut):   "A mut constraint was violated",
	int(ErrConstraintSeeds): "A seeds constraint was violated",

	int(ErrAccountDiscriminatorNotFound): "No 8 byte discriminator was found on the account",
	int(ErrAccountDiscriminatorMismatch): "8 byte discriminator did not match what was expected",
	int(ErrAccountDidNotSerialize):       "Failed to serialize the account",
	int(ErrAccountNotEnoughKeys):         "Not enough account keys given to the instruction",
	int(ErrAccountNotMutable):            "The given account is not mutable",
	int(ErrAccountOwnedByWrongProgram):   "The given account is owned by a different program than expected",
	int(ErrInvalidProgramId):             "Program ID was not as expected",
	int(ErrAccountNotSigner):             "The given account did not sign",
	int(ErrAccountNotInitialized):        "The program expected this account to be already initialized",
}

var anchorErrorNames = map[AnchorError]string{
	ErrInstructionMissing:           "InstructionMissing",
	ErrInstructionFallbackNotFound:  "InstructionFallbackNotFound",
	ErrInstructionDidNotDeserialize: "InstructionDidNotDeserialize",

	ErrConstraintMut:   "ConstraintMut",
	ErrConstraintSeeds: "ConstraintSeeds",

	ErrAccountDiscriminatorNotFound: "AccountDiscriminatorNotFound",
	ErrAccountDiscriminatorMismatch: "AccountDiscriminatorMismatch",
	ErrAccountDidNotSerialize:       "AccountDidNotSerialize",
	ErrAccountNotEnoughKeys:         "AccountNotEnoughKeys",
	ErrAccountNotMutable:            "AccountNotMutable",
	ErrAccountOwnedByWrongProgram:   "AccountOwnedByWrongProgram",
	ErrInvalidProgramId:             "InvalidProgramId",
	ErrAccountNotSigner:             "AccountNotSigner",
	ErrAccountNotInitialized:        "AccountNotInitialized",
}

// Name returns the Anchor identifier of the error, as it appears in program
// logs.
func (e AnchorError) Name() string {
	if name, ok := anchorErrorNames[e]; ok {
		return name
	}
	return "Unknown"
}

// CustomError returns the on-chain representation of the error.
func (e AnchorError) CustomError() solana.CustomError {
	return solana.CustomError(e)
}

func (e AnchorError) Error() string {
	if msg, ok := ProgramErrors[int(e)]; ok {
		return msg
	}
	return solana.CustomError(e).Error()
}
