package ledger

import (
	"context"

	"nexapay/internal/models"

	"github.com/shopspring/decimal"
)

// MoveRequest describes one atomic balance movement. A zero FromWalletID
// means funds enter the ledger from outside (a deposit rail); a zero
// ToWalletID means they leave it (a withdrawal rail). From and To may be the
// same wallet for in-place conversions.
type MoveRequest struct {
	FromWalletID uint
	ToWalletID   uint
	// Debit is removed from the sender's total balance.
	Debit decimal.Decimal
	// Held is the matching hold released on the sender; it must not exceed
	// the outstanding hold.
	Held decimal.Decimal
	// Credit is added to the recipient's total balance.
	Credit decimal.Decimal
	// ChargeAmount is charged against the sender's limit windows. Zero
	// skips the charge (reversals never un-charge or re-charge).
	ChargeAmount decimal.Decimal
	// Reason is the transaction status driving the mutation; it selects
	// which history counters move. The ledger reads nothing else about
	// the transaction.
	Reason string
}

// Service is the wallet ledger: the only path that mutates balances, holds
// and usage counters. All operations are atomic per wallet; Move is atomic
// across both wallets it touches.
type Service interface {
	CreateWallet(ctx context.Context, ownerID uint, currency string) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)

	// Reserve earmarks amount against the wallet's available balance.
	Reserve(ctx context.Context, walletID uint, amount decimal.Decimal) error
	// Release returns previously reserved funds to the available balance.
	// Reason is the transaction status that caused the release.
	Release(ctx context.Context, walletID uint, amount decimal.Decimal, reason string) error
	// Move performs the debit/hold-release/credit sequence as one
	// indivisible step: any other operation sees both wallets in either
	// the pre- or the post-state, never in between.
	Move(ctx context.Context, req MoveRequest) error

	Freeze(ctx context.Context, walletID uint, reason string) error
	Unfreeze(ctx context.Context, walletID uint) error
	// Deactivate soft-deactivates a wallet; wallets are never physically
	// deleted.
	Deactivate(ctx context.Context, walletID uint) error
}
