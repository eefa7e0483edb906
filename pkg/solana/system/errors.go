package system

import "github.com/code-payments/favorites-client/pkg/solana"

// Custom error codes returned by the system program.
//
// Source: https://github.com/solana-labs/solana/blob/master/sdk/program/src/system_instruction.rs
const (
	ErrorAccountAlreadyInUse = iota
	ErrorResultWithNegativeLamports
	ErrorInvalidProgramId
	ErrorInvalidAccountDataLength
	ErrorMaxSeedLengthExceeded
	ErrorAddressWithSeedMismatch
	ErrorNonceNoRecentBlockhashes
	ErrorNonceBlockhashNotExpired
	ErrorNonceUnexpectedBlockhashValue
)

// ProgramErrors describes the system program's custom errors.
var ProgramErrors = solana.ErrorTable{
	ErrorAccountAlreadyInUse:           "Account already in use",
	ErrorResultWithNegativeLamports:    "Account does not have enough SOL to perform the operation",
	ErrorInvalidProgramId:              "Cannot assign account to this program id",
	ErrorInvalidAccountDataLength:      "Cannot allocate account data of this length",
	ErrorMaxSeedLengthExceeded:         "Length of requested seed is too long",
	ErrorAddressWithSeedMismatch:       "Provided address does not match addressed derived from seed",
	ErrorNonceNoRecentBlockhashes:      "Advancing stored nonce requires a populated RecentBlockhashes sysvar",
	ErrorNonceBlockhashNotExpired:      "Stored nonce is still in recent_blockhashes",
	ErrorNonceUnexpectedBlockhashValue: "Specified nonce does not match stored nonce",
}
