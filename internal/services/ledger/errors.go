package ledger

import "errors"

// Service errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWalletFrozen        = errors.New("wallet is not active")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	// ErrInvariantViolation means a ledger consistency check failed (for
	// example a release larger than the outstanding hold). It is never
	// silently corrected: the wallet is suspended pending manual
	// reconciliation.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)
