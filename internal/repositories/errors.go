package repositories

import "errors"

// Repository errors
var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("transaction already exists")
	ErrDuplicateReference   = errors.New("reference already used")
	ErrCacheMiss            = errors.New("cache miss")
)
