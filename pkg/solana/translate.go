package solana

import (
	"regexp"
	"strconv"
)

// ErrorTable maps a program's custom error codes to descriptive messages.
type ErrorTable map[int]string

var customErrorPattern = regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`)

// Merge returns a table containing the entries of t and others. Later tables
// win on conflicting codes.
func (t ErrorTable) Merge(others ...ErrorTable) ErrorTable {
	merged := make(ErrorTable, len(t))
	for code, msg := range t {
		merged[code] = msg
	}
	for _, other := range others {
		for code, msg := range other {
			merged[code] = msg
		}
	}
	return merged
}

// CustomErrorCode extracts the first custom program error code found in msg.
func CustomErrorCode(msg string) (int, bool) {
	match := customErrorPattern.FindStringSubmatch(msg)
	if match == nil {
		return 0, false
	}

	code, err := strconv.ParseInt(match[1], 16, 64)
	if err != nil {
		return 0, false
	}

	return int(code), true
}

// GetCustomErrorMessage translates a raw error message reporting a custom
// program error into the table's description of that code. The raw message
// is returned unchanged when it carries no code, or the code is unknown.
func GetCustomErrorMessage(table ErrorTable, rawMessage string) string {
	code, ok := CustomErrorCode(rawMessage)
	if !ok {
		return rawMessage
	}

	msg, ok := table[code]
	if !ok {
		return rawMessage
	}

	return msg
}
