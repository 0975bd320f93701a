package payment

import (
	"errors"

	"nexapay/internal/services/ledger"
	"nexapay/internal/services/limits"
	"nexapay/internal/services/rates"
)

// Service errors
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidType            = errors.New("invalid transaction type")
	ErrInvalidCurrency        = errors.New("invalid currency")
	ErrRecipientRequired      = errors.New("recipient wallet required")
	ErrSelfTransfer           = errors.New("cannot transfer to self")
	ErrUnauthorized           = errors.New("caller does not own the sender wallet")
	ErrReferenceInUse         = errors.New("reference already used with different parameters")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrTransactionExpired     = errors.New("transaction expired")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// IsRetryable reports whether the caller may retry the operation that
// produced err. Rate lookups are transient; balance, limit and state errors
// are terminal.
func IsRetryable(err error) bool {
	return errors.Is(err, rates.ErrRateUnavailable)
}

// IsTerminal reports whether err names a condition retries cannot fix.
func IsTerminal(err error) bool {
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, limits.ErrLimitExceeded),
		errors.Is(err, ledger.ErrWalletFrozen),
		errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ErrInvalidStateTransition),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidAmount):
		return true
	}
	return false
}
