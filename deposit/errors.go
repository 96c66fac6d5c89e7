package deposit

import (
	"fmt"
	"github.com/pkg/errors"
)

// DepositError is what protocols return when a deposit cannot go
// on: missing configuration, an unexpected answer from the remote
// repository, a timeout. Its message is shown to the user as is,
// so it must not carry internals.
type DepositError struct {
	Message string
}

func (err *DepositError) Error() string {
	return err.Message
}

// NewDepositError returns a DepositError with the given message.
func NewDepositError(message string) error {
	return &DepositError{Message: message}
}

// NewDepositErrorf returns a DepositError with a formatted message.
func NewDepositErrorf(format string, a ...interface{}) error {
	return &DepositError{Message: fmt.Sprintf(format, a...)}
}

// AsDepositError returns the DepositError in err's chain, if any.
func AsDepositError(err error) (*DepositError, bool) {
	var depositErr *DepositError
	if errors.As(err, &depositErr) {
		return depositErr, true
	}
	return nil, false
}

// IsDepositError returns true if err is, or wraps, a DepositError.
func IsDepositError(err error) bool {
	_, ok := AsDepositError(err)
	return ok
}
