package repositories

import (
	"context"
	"errors"
	"fmt"

	"nexapay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByOwnerID(ctx context.Context, ownerID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) AtomicUpdate(ctx context.Context, id uint, fn func(w *models.Wallet) error) (*models.Wallet, error) {
	var updated *models.Wallet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, id)
		if err != nil {
			return err
		}
		if err := fn(wallet); err != nil {
			return err
		}
		if err := tx.Save(wallet).Error; err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
		}
		updated = wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *walletRepository) AtomicUpdatePair(ctx context.Context, aID, bID uint, fn func(a, b *models.Wallet) error) error {
	if aID == bID {
		_, err := r.AtomicUpdate(ctx, aID, func(w *models.Wallet) error {
			return fn(w, w)
		})
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock in ascending ID order regardless of transfer direction.
		firstID, secondID := aID, bID
		if bID < aID {
			firstID, secondID = bID, aID
		}

		first, err := lockWallet(tx, firstID)
		if err != nil {
			return err
		}
		second, err := lockWallet(tx, secondID)
		if err != nil {
			return err
		}

		a, b := first, second
		if first.ID != aID {
			a, b = second, first
		}
		if err := fn(a, b); err != nil {
			return err
		}

		if err := tx.Save(a).Error; err != nil {
			return fmt.Errorf("failed to save wallet %d: %w", a.ID, err)
		}
		if err := tx.Save(b).Error; err != nil {
			return fmt.Errorf("failed to save wallet %d: %w", b.ID, err)
		}
		return nil
	})
}

func lockWallet(tx *gorm.DB, id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wallet, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet %d: %w", id, err)
	}
	return &wallet, nil
}
