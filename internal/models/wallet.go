package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet freeze statuses
const (
	FreezeStatusActive    = "active"
	FreezeStatusFrozen    = "frozen"
	FreezeStatusSuspended = "suspended"
)

// LimitWindow tracks rolling spend against a cap for one period.
// WindowStart marks the beginning of the current period and never moves
// backward; Used is reset lazily when a check first observes a boundary
// crossing.
type LimitWindow struct {
	Cap         decimal.Decimal `gorm:"type:numeric;not null"`
	Used        decimal.Decimal `gorm:"type:numeric;not null"`
	WindowStart time.Time
}

// Remaining returns the headroom left in the window.
func (w LimitWindow) Remaining() decimal.Decimal {
	return w.Cap.Sub(w.Used)
}

// WalletStats aggregates transaction history counters for a wallet.
type WalletStats struct {
	TotalCount   int64           `gorm:"default:0"`
	SuccessCount int64           `gorm:"default:0"`
	FailedCount  int64           `gorm:"default:0"`
	TotalVolume  decimal.Decimal `gorm:"type:numeric;not null"`
}

// Wallet is the custodial balance record, one per user. TotalBalance and
// HoldAmount are only ever mutated through the ledger service; every other
// component sees wallets as read-only snapshots.
type Wallet struct {
	ID           uint            `gorm:"primarykey"`
	OwnerID      uint            `gorm:"uniqueIndex;not null"`
	Currency     string          `gorm:"default:'USD'"`
	TotalBalance decimal.Decimal `gorm:"type:numeric;not null"`
	HoldAmount   decimal.Decimal `gorm:"type:numeric;not null"`

	FreezeStatus string `gorm:"default:'active';index"`
	FreezeReason string

	Daily   LimitWindow `gorm:"embedded;embeddedPrefix:daily_"`
	Monthly LimitWindow `gorm:"embedded;embeddedPrefix:monthly_"`
	Yearly  LimitWindow `gorm:"embedded;embeddedPrefix:yearly_"`

	Stats WalletStats `gorm:"embedded;embeddedPrefix:stats_"`

	LastActivityAt *time.Time
	Active         bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailableBalance is the spendable amount: total minus holds. It is always
// derived, never stored authoritatively.
func (w *Wallet) AvailableBalance() decimal.Decimal {
	return w.TotalBalance.Sub(w.HoldAmount)
}

// Mutable reports whether the ledger may mutate this wallet at all.
func (w *Wallet) Mutable() bool {
	return w.Active && w.FreezeStatus == FreezeStatusActive
}
