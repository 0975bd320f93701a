package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexapay/internal/models"
	"nexapay/internal/repositories"
	"nexapay/internal/services/limits"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type service struct {
	wallets repositories.WalletRepository
	policy  *limits.Policy
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new ledger service.
func NewService(wallets repositories.WalletRepository, policy *limits.Policy, logger *zap.Logger) Service {
	if wallets == nil {
		panic("wallet repository is required")
	}
	if policy == nil {
		policy = limits.NewPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		wallets: wallets,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *service) CreateWallet(ctx context.Context, ownerID uint, currency string) (*models.Wallet, error) {
	if currency == "" {
		currency = "USD"
	}
	daily, monthly, yearly := limits.DefaultWindows(s.now().UTC())
	wallet := &models.Wallet{
		OwnerID:      ownerID,
		Currency:     currency,
		TotalBalance: decimal.Zero,
		HoldAmount:   decimal.Zero,
		FreezeStatus: models.FreezeStatusActive,
		Daily:        daily,
		Monthly:      monthly,
		Yearly:       yearly,
		Stats:        models.WalletStats{TotalVolume: decimal.Zero},
		Active:       true,
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}

func (s *service) Reserve(ctx context.Context, walletID uint, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	_, err := s.wallets.AtomicUpdate(ctx, walletID, func(w *models.Wallet) error {
		if !w.Mutable() {
			return ErrWalletFrozen
		}
		if w.AvailableBalance().LessThan(amount) {
			return fmt.Errorf("%w: available %s, requested %s",
				ErrInsufficientBalance, w.AvailableBalance(), amount)
		}
		w.HoldAmount = w.HoldAmount.Add(amount)
		s.touch(w)
		return nil
	})
	return s.mapErr(ctx, walletID, err)
}

func (s *service) Release(ctx context.Context, walletID uint, amount decimal.Decimal, reason string) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	_, err := s.wallets.AtomicUpdate(ctx, walletID, func(w *models.Wallet) error {
		if !w.Mutable() {
			return ErrWalletFrozen
		}
		if amount.GreaterThan(w.HoldAmount) {
			return fmt.Errorf("%w: release of %s exceeds hold %s on wallet %d",
				ErrInvariantViolation, amount, w.HoldAmount, w.ID)
		}
		w.HoldAmount = w.HoldAmount.Sub(amount)
		if reason == models.StatusFailed {
			w.Stats.TotalCount++
			w.Stats.FailedCount++
		}
		s.touch(w)
		return nil
	})
	return s.mapErr(ctx, walletID, err)
}

func (s *service) Move(ctx context.Context, req MoveRequest) error {
	if req.FromWalletID == 0 && req.ToWalletID == 0 {
		return ErrWalletNotFound
	}

	var err error
	switch {
	case req.FromWalletID == 0:
		// External inflow: credit only.
		_, err = s.wallets.AtomicUpdate(ctx, req.ToWalletID, func(to *models.Wallet) error {
			return s.applyCredit(to, req)
		})
		err = s.mapErr(ctx, req.ToWalletID, err)
	case req.ToWalletID == 0:
		// External outflow: debit only.
		_, err = s.wallets.AtomicUpdate(ctx, req.FromWalletID, func(from *models.Wallet) error {
			return s.applyDebit(from, req)
		})
		err = s.mapErr(ctx, req.FromWalletID, err)
	default:
		err = s.wallets.AtomicUpdatePair(ctx, req.FromWalletID, req.ToWalletID, func(from, to *models.Wallet) error {
			if err := s.applyDebit(from, req); err != nil {
				return err
			}
			return s.applyCredit(to, req)
		})
		err = s.mapErr(ctx, req.FromWalletID, err)
	}
	return err
}

func (s *service) applyDebit(from *models.Wallet, req MoveRequest) error {
	if !from.Mutable() {
		return ErrWalletFrozen
	}
	if req.Held.GreaterThan(from.HoldAmount) {
		return fmt.Errorf("%w: hold release %s exceeds hold %s on wallet %d",
			ErrInvariantViolation, req.Held, from.HoldAmount, from.ID)
	}
	if req.Debit.GreaterThan(from.TotalBalance) {
		return fmt.Errorf("%w: debit %s exceeds balance %s on wallet %d",
			ErrInvariantViolation, req.Debit, from.TotalBalance, from.ID)
	}

	if req.ChargeAmount.Sign() > 0 {
		// Re-check under the lock so a race between the advisory check at
		// initiate and this charge can never push used past cap.
		if err := s.policy.Check(from, req.ChargeAmount); err != nil {
			return err
		}
		s.policy.Charge(from, req.ChargeAmount)
	}

	from.TotalBalance = from.TotalBalance.Sub(req.Debit)
	from.HoldAmount = from.HoldAmount.Sub(req.Held)

	from.Stats.TotalCount++
	switch req.Reason {
	case models.StatusCompleted:
		from.Stats.SuccessCount++
		from.Stats.TotalVolume = from.Stats.TotalVolume.Add(req.Debit)
	case models.StatusFailed:
		from.Stats.FailedCount++
	}
	s.touch(from)
	return nil
}

func (s *service) applyCredit(to *models.Wallet, req MoveRequest) error {
	if !to.Mutable() {
		return ErrWalletFrozen
	}
	// Same-wallet conversion: the debit path already counted the event.
	if to.ID != req.FromWalletID {
		to.Stats.TotalCount++
		if req.Reason == models.StatusCompleted {
			to.Stats.SuccessCount++
			to.Stats.TotalVolume = to.Stats.TotalVolume.Add(req.Credit)
		}
	}
	to.TotalBalance = to.TotalBalance.Add(req.Credit)
	s.touch(to)
	return nil
}

func (s *service) Freeze(ctx context.Context, walletID uint, reason string) error {
	_, err := s.wallets.AtomicUpdate(ctx, walletID, func(w *models.Wallet) error {
		w.FreezeStatus = models.FreezeStatusFrozen
		w.FreezeReason = reason
		return nil
	})
	return s.mapNotFound(err)
}

func (s *service) Unfreeze(ctx context.Context, walletID uint) error {
	_, err := s.wallets.AtomicUpdate(ctx, walletID, func(w *models.Wallet) error {
		w.FreezeStatus = models.FreezeStatusActive
		w.FreezeReason = ""
		return nil
	})
	return s.mapNotFound(err)
}

func (s *service) Deactivate(ctx context.Context, walletID uint) error {
	_, err := s.wallets.AtomicUpdate(ctx, walletID, func(w *models.Wallet) error {
		w.Active = false
		return nil
	})
	return s.mapNotFound(err)
}

func (s *service) touch(w *models.Wallet) {
	now := s.now().UTC()
	w.LastActivityAt = &now
}

// mapErr translates repository errors and handles invariant violations: the
// offending wallet is suspended pending manual reconciliation and the
// violation is logged distinctly from user-facing errors.
func (s *service) mapErr(ctx context.Context, walletID uint, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return ErrWalletNotFound
	}
	if errors.Is(err, ErrInvariantViolation) {
		s.logger.Error("invariant_violation",
			zap.Uint("wallet_id", walletID),
			zap.Error(err))
		s.suspend(ctx, walletID, err.Error())
	}
	return err
}

func (s *service) mapNotFound(err error) error {
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return ErrWalletNotFound
	}
	return err
}

func (s *service) suspend(ctx context.Context, walletID uint, reason string) {
	_, err := s.wallets.AtomicUpdate(ctx, walletID, func(w *models.Wallet) error {
		w.FreezeStatus = models.FreezeStatusSuspended
		w.FreezeReason = reason
		return nil
	})
	if err != nil {
		s.logger.Error("failed to suspend wallet after invariant violation",
			zap.Uint("wallet_id", walletID),
			zap.Error(err))
	}
}
