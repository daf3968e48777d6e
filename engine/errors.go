/*
errors.go - Centralized error types for the accrual engine

PURPOSE:
  All engine errors in one place. The computation is deterministic and
  pure, so none of these are retryable: the same input always fails the
  same way. No partial statement is ever returned alongside an error.

ERROR CATEGORIES:
  1. Configuration errors - malformed tier schedule, bad base rate/tenor
  2. Input errors - empty transaction list, malformed transactions
  3. Funds errors - withdrawal exceeding available principal

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, engine.ErrInsufficientFunds) { ... }

    var ife *engine.InsufficientFundsError
    if errors.As(err, &ife) {
        fmt.Println(ife.Date, ife.Available)
    }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfiguration is returned for a malformed tier schedule,
	// negative base rate, or non-positive tenor. Fatal before any row is
	// produced.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyInput is returned when no transactions are supplied.
	ErrEmptyInput = errors.New("no transactions supplied")

	// ErrInvalidTransaction is returned for a negative amount, a missing
	// date, an unknown kind, or a withdrawal preceding any deposit.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the
	// aggregate principal across active lots. Over-withdrawal is rejected,
	// never silently truncated.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError describes which configuration field failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// InvalidTransactionError identifies the offending transaction by its
// position in the sorted sequence and its date.
type InvalidTransactionError struct {
	Index  int
	Date   Date
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction #%d (%s): %s", e.Index, e.Date, e.Reason)
}

func (e *InvalidTransactionError) Unwrap() error { return ErrInvalidTransaction }

// InsufficientFundsError details a withdrawal shortage.
type InsufficientFundsError struct {
	Index     int
	Date      Date
	Requested Money
	Available Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for withdrawal #%d on %s: requested %s, available %s",
		e.Index, e.Date, e.Requested.StringFixed2(), e.Available.StringFixed2())
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrInvalidTransaction) ||
		errors.Is(err, ErrInsufficientFunds)
}
