package repositories

import (
	"context"

	"nexapay/internal/models"
)

// WalletRepository is the persistence contract for wallets. AtomicUpdate and
// AtomicUpdatePair are the only write paths: the mutation closure runs with
// the wallet row(s) exclusively held, so concurrent ledger operations on the
// same wallet never interleave partially.
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetByOwnerID(ctx context.Context, ownerID uint) (*models.Wallet, error)

	// AtomicUpdate loads the wallet under an exclusive lock, applies fn and
	// persists the result. An error from fn rolls everything back.
	AtomicUpdate(ctx context.Context, id uint, fn func(w *models.Wallet) error) (*models.Wallet, error)

	// AtomicUpdatePair does the same for two wallets in a single unit.
	// Implementations must acquire the locks in canonical (ascending ID)
	// order so opposite-direction transfers cannot deadlock.
	AtomicUpdatePair(ctx context.Context, aID, bID uint, fn func(a, b *models.Wallet) error) error
}
