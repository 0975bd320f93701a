package payment

import "time"

// Default configuration values
const (
	DefaultPendingExpiry           = time.Hour
	DefaultSettlementRetryInterval = 15 * time.Minute
	DefaultMaxRetries              = 3
	DefaultSweepBatchSize          = 100
	DefaultQuoteValidity           = 5 * time.Minute
)

// Cache keys
const (
	transactionCachePrefix = "payment:tx:"
	transactionCacheTTL    = time.Hour
)

// Reasons recorded on sweep-driven terminations.
const (
	reasonExpired           = "transaction expired before confirmation"
	reasonSettlementTimeout = "settlement timed out after retries exhausted"
)
