package favorites

import (
	"github.com/pkg/errors"

	"github.com/code-payments/favorites-client/pkg/solana"
	favorites_program "github.com/code-payments/favorites-client/pkg/solana/favorites"
	"github.com/code-payments/favorites-client/pkg/solana/system"
)

var (
	ErrFavoritesNotFound = errors.New("favorites not found")
	ErrColorTooLong      = errors.Errorf("color exceeds %d bytes", favorites_program.MaxColorLength)
	ErrMissingPrivateKey = errors.New("user private key is required to sign")
)

// ProgramErrors is the table every submission failure is translated through:
// the system program's errors, which surface when the favorites account is
// created, followed by the program's own.
var ProgramErrors = system.ProgramErrors.Merge(favorites_program.ProgramErrors)

// SubmissionError is returned when the cluster rejects or fails a favorites
// transaction. Its message is the human readable translation of the failure.
type SubmissionError struct {
	Message   string
	Signature solana.Signature
	Logs      []string

	cause error
}

func newSubmissionError(sig solana.Signature, cause error) *SubmissionError {
	e := &SubmissionError{
		Message:   solana.GetCustomErrorMessage(ProgramErrors, cause.Error()),
		Signature: sig,
		cause:     cause,
	}

	var txErr *solana.TransactionError
	if errors.As(cause, &txErr) {
		e.Logs = txErr.Logs()
	}

	return e
}

func (e *SubmissionError) Error() string {
	return e.Message
}

// Unwrap returns the raw failure reported by the cluster.
func (e *SubmissionError) Unwrap() error {
	return e.cause
}

// Cause implements the github.com/pkg/errors causer interface.
func (e *SubmissionError) Cause() error {
	return e.cause
}
