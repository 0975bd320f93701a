package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses. Terminal statuses never change again, with the
// single exception of completed -> reversed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
	StatusReversed   = "reversed"
)

// Transaction types
const (
	TypePeerToPeer  = "peer_to_peer"
	TypeCrossBorder = "cross_border"
	TypeDeposit     = "deposit"
	TypeWithdrawal  = "withdrawal"
	TypeConversion  = "conversion"
)

// IsTerminalStatus reports whether a status admits no further transitions
// other than the completed -> reversed reversal path.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusReversed:
		return true
	}
	return false
}

// Fees is the fee breakdown attached to a transaction. TotalFee is always
// the sum of the parts.
type Fees struct {
	PlatformFee   decimal.Decimal `gorm:"type:numeric;not null"`
	NetworkFee    decimal.Decimal `gorm:"type:numeric;not null"`
	ConversionFee decimal.Decimal `gorm:"type:numeric;not null"`
	TotalFee      decimal.Decimal `gorm:"type:numeric;not null"`
}

// Transaction is one payment attempt. Created on initiate, mutated only by
// the payment orchestrator, immutable once terminal.
type Transaction struct {
	ID            uint   `gorm:"primarykey"`
	TransactionID string `gorm:"uniqueIndex;not null"`
	// Reference is the caller-supplied idempotency key; a retried initiate
	// carrying an already-used reference returns the existing transaction.
	// The unique index is partial so transactions without a reference do
	// not collide.
	Reference string `gorm:"index:idx_transactions_reference,unique,where:reference <> ''"`

	SenderWalletID    uint  `gorm:"index;not null"`
	RecipientWalletID *uint `gorm:"index"`

	Type         string          `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:numeric;not null"`
	CurrencyFrom string          `gorm:"not null"`
	CurrencyTo   string          `gorm:"not null"`
	ExchangeRate decimal.Decimal `gorm:"type:numeric;not null"`
	// ReceivedAmount is amount * exchangeRate rounded at the target
	// currency's precision.
	ReceivedAmount decimal.Decimal `gorm:"type:numeric;not null"`

	Fees Fees `gorm:"embedded;embeddedPrefix:fee_"`

	RiskScore int        `gorm:"default:0"`
	RiskFlags StringList `gorm:"type:jsonb"`

	Status      string `gorm:"not null;default:'pending';index"`
	Description string

	ErrorMessage   string
	ReversalReason string
	SettlementRef  string `gorm:"index"`

	RetryCount  int `gorm:"default:0"`
	MaxRetries  int `gorm:"default:3"`
	NextRetryAt *time.Time

	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ApprovedAt  *time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time
	ReversedAt  *time.Time

	Metadata JSON `gorm:"type:jsonb"`
}

// HoldAmount is what the ledger reserves on the sender when the transaction
// is initiated: the source amount plus all fees. Deposits hold nothing; the
// funds arrive from outside the ledger.
func (t *Transaction) HoldAmount() decimal.Decimal {
	if t.Type == TypeDeposit {
		return decimal.Zero
	}
	return t.Amount.Add(t.Fees.TotalFee)
}

// SettlesExternally reports whether the transaction waits on a settlement
// rail callback after confirmation instead of completing in-ledger.
func (t *Transaction) SettlesExternally() bool {
	switch t.Type {
	case TypeWithdrawal, TypeCrossBorder, TypeDeposit:
		return true
	}
	return false
}

// Expired reports whether a pending transaction has outlived its
// confirmation window.
func (t *Transaction) Expired(now time.Time) bool {
	return t.Status == StatusPending && now.After(t.ExpiresAt)
}
