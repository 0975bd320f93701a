package payment

import (
	"time"

	"nexapay/internal/models"

	"github.com/shopspring/decimal"
)

// InitiateRequest describes a new payment attempt.
type InitiateRequest struct {
	SenderWalletID    uint
	RecipientWalletID uint // zero for deposit/withdrawal
	Amount            decimal.Decimal
	CurrencyFrom      string
	CurrencyTo        string
	Type              string
	Description       string
	// Reference is the caller's idempotency key. A retried initiate with
	// the same reference returns the original transaction.
	Reference string
	Metadata  map[string]interface{}
}

// Settlement outcomes reported by the external rail.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// SettlementReport is the asynchronous callback payload from the settlement
// backend.
type SettlementReport struct {
	TransactionID string
	// ExternalRef is the rail's reference (blockchain hash, bank trace id).
	ExternalRef  string
	Outcome      string
	ErrorMessage string
	// RetryAt schedules the next settlement attempt after a failure, while
	// retries remain.
	RetryAt *time.Time
}

// QuoteRequest asks for a non-binding pricing preview.
type QuoteRequest struct {
	Amount       decimal.Decimal
	CurrencyFrom string
	CurrencyTo   string
	Type         string
}

// QuoteResult is a pricing preview: what a transaction of this shape would
// cost right now.
type QuoteResult struct {
	Amount         decimal.Decimal
	CurrencyFrom   string
	CurrencyTo     string
	ExchangeRate   decimal.Decimal
	ReceivedAmount decimal.Decimal
	Fees           models.Fees
	TotalCost      decimal.Decimal
	ValidUntil     time.Time
}

// WalletView is the balance/limits projection exposed to callers; raw
// wallet rows never leave the core.
type WalletView struct {
	WalletID         uint
	OwnerID          uint
	Currency         string
	TotalBalance     decimal.Decimal
	HoldAmount       decimal.Decimal
	AvailableBalance decimal.Decimal
	FreezeStatus     string
	Daily            models.LimitWindow
	Monthly          models.LimitWindow
	Yearly           models.LimitWindow
}

// Config holds orchestrator tuning.
type Config struct {
	// PendingExpiry is how long an unconfirmed transaction stays
	// confirmable.
	PendingExpiry time.Duration
	// SettlementRetryInterval spaces settlement retry checks for
	// externally settled transactions.
	SettlementRetryInterval time.Duration
	// MaxRetries bounds settlement attempts before a transaction fails.
	MaxRetries int
	// SweepBatchSize bounds how many transactions one sweep pass touches.
	SweepBatchSize int
	// QuoteValidity is the advertised validity of pricing previews.
	QuoteValidity time.Duration
}
