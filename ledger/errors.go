/*
errors.go - Centralized error types for the ledger core

PURPOSE:

	All error types in one place for consistency and discoverability.
	The API layer maps these onto HTTP status codes.

ERROR CATEGORIES:
 1. Validation errors - Unbalanced or malformed transactions (400)
 2. Not-found errors  - Unknown entity, account, or transaction (404)
 3. Conflict errors   - Sequence collision under concurrency (retried
    once internally, 409 if it escapes)
 4. Store errors      - Anything the database surfaces that isn't one
    of the above; never retried here

USAGE:

	if ledger.IsValidation(err) { ... 400 ... }
	if errors.Is(err, ledger.ErrUnbalanced) { ... }
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnbalanced is returned when total debits != total credits
	// after rounding to 2 decimal places.
	ErrUnbalanced = errors.New("transaction does not balance")

	// ErrTooFewLines is returned when a transaction has fewer than two lines.
	ErrTooFewLines = errors.New("transaction requires at least two lines")

	// ErrNegativeAmount is returned when any line amount is negative.
	ErrNegativeAmount = errors.New("line amount cannot be negative")

	// ErrBothSides is returned when a line carries both a debit and a credit.
	ErrBothSides = errors.New("line cannot be both debit and credit")

	// ErrEntityNotFound is returned when a referenced entity doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a transaction doesn't exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateEntity is returned when (name, type) already exists.
	ErrDuplicateEntity = errors.New("entity already exists")

	// ErrDuplicateAccount is returned when (entity, name, type) already exists.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrSequenceConflict is returned when two concurrent creations race
	// for the same per-entity sequence number. The balancer retries once
	// with a freshly allocated number before surfacing this.
	ErrSequenceConflict = errors.New("transaction sequence conflict")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnbalancedError reports the two sides of a failed balance check.
type UnbalancedError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("transaction does not balance: debits %s != credits %s",
		e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

func (e *UnbalancedError) Unwrap() error { return ErrUnbalanced }

// LineError reports a per-line validation failure with its position.
type LineError struct {
	Index int
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Index, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is a balance/shape violation
// the caller can fix and resubmit.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnbalanced) ||
		errors.Is(err, ErrTooFewLines) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrBothSides) ||
		errors.Is(err, ErrDuplicateEntity) ||
		errors.Is(err, ErrDuplicateAccount)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}

// IsConflict returns true if the error is a concurrency conflict that
// might succeed on retry.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSequenceConflict)
}
