package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no record exists under a key.
	ErrNotFound = errors.New("store: item not found")

	// ErrConditionFailed is returned when a single-item write guard does not hold.
	ErrConditionFailed = errors.New("store: condition check failed")

	// ErrTransactionCanceled matches every *TransactionCanceledError.
	ErrTransactionCanceled = errors.New("store: transaction canceled")

	// ErrStoreUnavailable wraps transport failures, throttling and deadlines.
	ErrStoreUnavailable = errors.New("store: unavailable")
)

// TransactionCanceledError reports a transaction that committed nothing
// because at least one guard failed.
type TransactionCanceledError struct {
	// Failed lists the indexes of operations whose condition failed. It is
	// empty when the backend did not say which operation caused the cancellation.
	Failed []int
}

func (e *TransactionCanceledError) Error() string {
	if len(e.Failed) == 0 {
		return ErrTransactionCanceled.Error()
	}
	idx := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		idx[i] = fmt.Sprint(f)
	}
	return fmt.Sprintf("%s: condition failed for operation(s) %s", ErrTransactionCanceled, strings.Join(idx, ", "))
}

func (e *TransactionCanceledError) Is(target error) bool {
	return target == ErrTransactionCanceled
}

// FailedAt reports whether operation i is known to have failed its condition.
func (e *TransactionCanceledError) FailedAt(i int) bool {
	for _, f := range e.Failed {
		if f == i {
			return true
		}
	}
	return false
}

// Known reports whether the backend identified the failing operations.
func (e *TransactionCanceledError) Known() bool {
	return len(e.Failed) > 0
}

// unavailable wraps err so that errors.Is(err, ErrStoreUnavailable) holds.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
