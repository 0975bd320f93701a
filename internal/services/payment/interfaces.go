package payment

import (
	"context"

	"nexapay/internal/models"
)

// Service drives the transaction state machine. It is the sole writer of
// transaction status; all balance movement goes through the ledger.
type Service interface {
	// Initiate reserves funds and creates a pending transaction with a
	// confirmation window.
	Initiate(ctx context.Context, req InitiateRequest) (*models.Transaction, error)
	// Confirm moves a pending transaction forward: internally settled
	// types complete immediately, externally settled ones stay processing
	// until the rail reports.
	Confirm(ctx context.Context, transactionID string, callerWalletID uint) (*models.Transaction, error)
	// Cancel aborts a pending transaction and releases its hold.
	Cancel(ctx context.Context, transactionID string, callerWalletID uint) (*models.Transaction, error)
	// Reverse undoes a completed transaction (chargeback/compliance).
	Reverse(ctx context.Context, transactionID, reason string) (*models.Transaction, error)
	// ReportSettlement is the settlement backend's asynchronous callback.
	ReportSettlement(ctx context.Context, report SettlementReport) (*models.Transaction, error)
	// Expire sweeps overrun pending transactions and overdue settlement
	// retries. It returns how many transactions it advanced.
	Expire(ctx context.Context) (int, error)

	Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error)
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)
	GetWallet(ctx context.Context, walletID uint) (*WalletView, error)
	ListHistory(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, error)
}
