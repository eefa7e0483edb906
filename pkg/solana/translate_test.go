package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorCode(t *testing.T) {
	for _, tc := range []struct {
		msg  string
		code int
		ok   bool
	}{
		{"Transaction simulation failed: Error processing Instruction 0: custom program error: 0x0", 0, true},
		{"Error processing Instruction 1: custom program error: 0x7d6", 2006, true},
		{"custom program error: 0xBC4", 3012, true},
		{"Transaction simulation failed: Blockhash not found", 0, false},
		{"", 0, false},
	} {
		code, ok := CustomErrorCode(tc.msg)
		assert.Equal(t, tc.ok, ok, tc.msg)
		assert.Equal(t, tc.code, code, tc.msg)
	}
}

func TestGetCustomErrorMessage(t *testing.T) {
	table := ErrorTable{
		0: "Account already in use",
		1: "Account does not have enough SOL to perform the operation",
	}

	assert.Equal(t, "Account already in use", GetCustomErrorMessage(table, "Error processing Instruction 0: custom program error: 0x0"))
	assert.Equal(t, "Account does not have enough SOL to perform the operation", GetCustomErrorMessage(table, "custom program error: 0x1"))

	// Unknown codes and messages without a code pass through.
	assert.Equal(t, "custom program error: 0x63", GetCustomErrorMessage(table, "custom program error: 0x63"))
	assert.Equal(t, "node is behind", GetCustomErrorMessage(table, "node is behind"))

	// CustomError renders the format the node uses.
	assert.Equal(t, "Account already in use", GetCustomErrorMessage(table, CustomError(0).Error()))
}

func TestErrorTable_Merge(t *testing.T) {
	a := ErrorTable{0: "a0", 1: "a1"}
	b := ErrorTable{1: "b1", 2: "b2"}

	merged := a.Merge(b)
	assert.Equal(t, ErrorTable{0: "a0", 1: "b1", 2: "b2"}, merged)

	// Inputs are untouched.
	assert.Equal(t, "a1", a[1])
	assert.Len(t, b, 2)
}
