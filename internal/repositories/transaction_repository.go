package repositories

import (
	"context"
	"time"

	"nexapay/internal/models"
)

// TransactionRepository is the persistence contract for transactions. The
// payment orchestrator is its only writer.
type TransactionRepository interface {
	// Create persists a new transaction. A duplicate TransactionID yields
	// ErrDuplicateTransaction, a duplicate Reference ErrDuplicateReference.
	Create(ctx context.Context, tx *models.Transaction) error

	GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)

	Update(ctx context.Context, tx *models.Transaction) error

	// UpdateStatusIf atomically moves the transaction from one status to
	// another, applying stamp to the row while it is exclusively held. It
	// returns ok=false without error when the transaction is no longer in
	// the from status, which makes it the compare-and-set primitive all
	// state transitions are built on.
	UpdateStatusIf(ctx context.Context, transactionID, from, to string, stamp func(tx *models.Transaction)) (*models.Transaction, bool, error)

	ListPendingExpired(ctx context.Context, before time.Time, limit int) ([]models.Transaction, error)
	ListProcessingDue(ctx context.Context, before time.Time, limit int) ([]models.Transaction, error)
	ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, error)
}
