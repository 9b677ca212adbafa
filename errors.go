package databoss

import (
	"errors"
	"fmt"

	"github.com/vaibhavpandeyvpz/databoss/dialect/sql"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned by Get when no row matches the filter.
	ErrNotFound = errors.New("databoss: row not found")

	// ErrUnsupported is returned by schema operations that have no
	// representation on the active dialect.
	ErrUnsupported = sql.ErrUnsupported

	// ErrTxStarted is returned by Tx when called on a client that is already
	// scoped to an open transaction.
	ErrTxStarted = errors.New("databoss: cannot start a transaction within a transaction")
)

// RollbackError wraps a rollback failure together with the error that
// triggered the rollback. The original error stays reachable via Unwrap, so
// errors.Is/As against the underlying database failure keep working.
type RollbackError struct {
	Err      error // error that triggered the rollback
	Rollback error // error returned by the rollback itself
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("databoss: rollback failed: %v (original error: %v)", e.Rollback, e.Err)
}

// Unwrap returns the error that triggered the rollback.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error reports a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnsupported returns true if the error reports an operation the active
// dialect cannot express.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
