package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nexapay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			if tx.Reference != "" {
				if _, refErr := r.GetByReference(ctx, tx.Reference); refErr == nil {
					return ErrDuplicateReference
				}
			}
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Save(tx).Error; err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) UpdateStatusIf(ctx context.Context, transactionID, from, to string, stamp func(tx *models.Transaction)) (*models.Transaction, bool, error) {
	var result *models.Transaction
	var ok bool
	err := r.db.WithContext(ctx).Transaction(func(dtx *gorm.DB) error {
		var row models.Transaction
		err := dtx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("transaction_id = ?", transactionID).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("failed to lock transaction: %w", err)
		}

		if row.Status != from {
			result = &row
			return nil
		}

		row.Status = to
		if stamp != nil {
			stamp(&row)
		}
		if err := dtx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		result = &row
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, ok, nil
}

func (r *transactionRepository) ListPendingExpired(ctx context.Context, before time.Time, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", models.StatusPending, before).
		Order("expires_at ASC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) ListProcessingDue(ctx context.Context, before time.Time, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at < ?", models.StatusProcessing, before).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("sender_wallet_id = ? OR recipient_wallet_id = ?", walletID, walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func isUniqueViolation(err error) bool {
	// Postgres unique_violation; gorm does not always translate it.
	return err != nil && strings.Contains(err.Error(), "23505")
}
