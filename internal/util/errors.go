// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletFrozen        = errors.New("wallet is frozen")
	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("operation not permitted")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrSignatureInvalid    = errors.New("webhook signature invalid")
	ErrUpstreamUnavailable = errors.New("payment provider unavailable")
	ErrCheckoutInFlight    = errors.New("checkout already in progress")
	ErrInvalidStatus       = errors.New("record is not in a valid status for this operation")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
