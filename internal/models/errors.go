// server/internal/models/errors.go
package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for state-machine guard violations. Handlers map these to
// HTTP statuses with errors.Is.
var (
	// ErrNotAvailable is returned when a sale transition is attempted on a
	// car that is already sold.
	ErrNotAvailable = errors.New("car is not available for sale")

	// ErrNotSold is returned when an operation requires the car to be sold
	// (either cash or installment) and it is not.
	ErrNotSold = errors.New("car has not been sold")

	// ErrNotInstallment is returned when a payment operation is attempted on
	// a car without an active installment contract.
	ErrNotInstallment = errors.New("car was not sold on installment")

	// ErrNotFullyPaid is returned when ownership transfer is attempted while
	// the installment balance is still above zero.
	ErrNotFullyPaid = errors.New("installment is not fully paid")

	// ErrAlreadyTransferred is returned when the owner book has already been
	// transferred. The transfer is not idempotent on purpose.
	ErrAlreadyTransferred = errors.New("owner book already transferred")

	// ErrLedgerFrozen is returned when a payment edit is attempted after the
	// owner book transfer closed the contract.
	ErrLedgerFrozen = errors.New("payment ledger is frozen after ownership transfer")

	// ErrInvalidPeriod is returned for an unknown report period selector.
	ErrInvalidPeriod = errors.New("invalid report period")
)

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
