package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexapay/internal/models"
	"nexapay/internal/repositories"
	"nexapay/internal/services/fees"
	"nexapay/internal/services/ledger"
	"nexapay/internal/services/limits"
	"nexapay/internal/services/rates"
	"nexapay/internal/services/risk"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type service struct {
	txs     repositories.TransactionRepository
	wallets repositories.WalletRepository
	ledger  ledger.Service
	policy  *limits.Policy
	rates   rates.Service
	fees    *fees.Calculator
	risk    *risk.Scorer
	cache   repositories.CacheRepository
	config  Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new payment orchestrator.
func NewService(
	txs repositories.TransactionRepository,
	wallets repositories.WalletRepository,
	ledgerSvc ledger.Service,
	rateSvc rates.Service,
	feeCalc *fees.Calculator,
	riskScorer *risk.Scorer,
	cache repositories.CacheRepository,
	config Config,
	logger *zap.Logger,
) Service {
	if txs == nil {
		panic("transaction repository is required")
	}
	if wallets == nil {
		panic("wallet repository is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if rateSvc == nil {
		panic("rate service is required")
	}
	if feeCalc == nil {
		panic("fee calculator is required")
	}
	if riskScorer == nil {
		panic("risk scorer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.PendingExpiry == 0 {
		config.PendingExpiry = DefaultPendingExpiry
	}
	if config.SettlementRetryInterval == 0 {
		config.SettlementRetryInterval = DefaultSettlementRetryInterval
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.SweepBatchSize == 0 {
		config.SweepBatchSize = DefaultSweepBatchSize
	}
	if config.QuoteValidity == 0 {
		config.QuoteValidity = DefaultQuoteValidity
	}

	return &service{
		txs:     txs,
		wallets: wallets,
		ledger:  ledgerSvc,
		policy:  limits.NewPolicy(),
		rates:   rateSvc,
		fees:    feeCalc,
		risk:    riskScorer,
		cache:   cache,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *service) Initiate(ctx context.Context, req InitiateRequest) (*models.Transaction, error) {
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := validateType(req.Type); err != nil {
		return nil, err
	}
	if !models.KnownCurrency(req.CurrencyFrom) || !models.KnownCurrency(req.CurrencyTo) {
		return nil, fmt.Errorf("%w: %s:%s", ErrInvalidCurrency, req.CurrencyFrom, req.CurrencyTo)
	}

	// Idempotency: a reused reference returns the original transaction,
	// provided the replay carries the same payload.
	if req.Reference != "" {
		if existing, err := s.txs.GetByReference(ctx, req.Reference); err == nil {
			if !replayMatches(existing, req) {
				return nil, fmt.Errorf("%w: %s", ErrReferenceInUse, req.Reference)
			}
			return existing, nil
		}
	}

	sender, err := s.ledger.GetWallet(ctx, req.SenderWalletID)
	if err != nil {
		return nil, err
	}
	if !sender.Mutable() {
		return nil, fmt.Errorf("%w: wallet %d is %s", ledger.ErrWalletFrozen, sender.ID, sender.FreezeStatus)
	}

	recipientID, err := s.resolveRecipient(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Type != models.TypeDeposit {
		// Advisory check on a snapshot; the binding re-check happens under
		// the wallet lock when the debit is charged.
		if err := s.policy.Check(sender, req.Amount); err != nil {
			return nil, err
		}
	}

	quote, err := s.rates.Resolve(ctx, req.CurrencyFrom, req.CurrencyTo)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.fees.Compute(req.Amount, req.Type, req.CurrencyFrom, req.CurrencyTo)
	if err != nil {
		return nil, err
	}

	score, flags, err := s.risk.Score(ctx, req.SenderWalletID, req.Amount, req.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to score transaction: %w", err)
	}

	now := s.now().UTC()
	received := req.Amount.Mul(quote.Rate).RoundBank(models.CurrencyPrecision(req.CurrencyTo))

	tx := &models.Transaction{
		TransactionID:  uuid.NewString(),
		Reference:      req.Reference,
		SenderWalletID: req.SenderWalletID,
		Type:           req.Type,
		Amount:         req.Amount,
		CurrencyFrom:   req.CurrencyFrom,
		CurrencyTo:     req.CurrencyTo,
		ExchangeRate:   quote.Rate,
		ReceivedAmount: received,
		Fees:           breakdown,
		RiskScore:      score,
		RiskFlags:      flags,
		Status:         models.StatusPending,
		Description:    req.Description,
		MaxRetries:     s.config.MaxRetries,
		ExpiresAt:      now.Add(s.config.PendingExpiry),
		Metadata:       req.Metadata,
	}
	if recipientID != 0 {
		tx.RecipientWalletID = &recipientID
	}

	hold := tx.HoldAmount()
	if hold.Sign() > 0 {
		if err := s.ledger.Reserve(ctx, tx.SenderWalletID, hold); err != nil {
			return nil, err
		}
	}

	if err := s.txs.Create(ctx, tx); err != nil {
		if hold.Sign() > 0 {
			if relErr := s.ledger.Release(ctx, tx.SenderWalletID, hold, models.StatusCancelled); relErr != nil {
				s.logger.Error("failed to release hold after create failure",
					zap.String("transaction_id", tx.TransactionID), zap.Error(relErr))
			}
		}
		if errors.Is(err, repositories.ErrDuplicateReference) {
			existing, getErr := s.txs.GetByReference(ctx, req.Reference)
			if getErr != nil {
				return nil, getErr
			}
			if !replayMatches(existing, req) {
				return nil, fmt.Errorf("%w: %s", ErrReferenceInUse, req.Reference)
			}
			return existing, nil
		}
		return nil, err
	}

	s.cacheTx(ctx, tx)
	s.logger.Info("payment initiated",
		zap.String("transaction_id", tx.TransactionID),
		zap.String("type", tx.Type),
		zap.String("amount", tx.Amount.String()),
		zap.Int("risk_score", tx.RiskScore))
	return tx, nil
}

func (s *service) Confirm(ctx context.Context, transactionID string, callerWalletID uint) (*models.Transaction, error) {
	tx, err := s.txs.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if tx.SenderWalletID != callerWalletID {
		return nil, ErrUnauthorized
	}
	if tx.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: cannot confirm from %s", ErrInvalidStateTransition, tx.Status)
	}

	now := s.now().UTC()
	if tx.Expired(now) {
		s.expireOne(ctx, tx)
		return nil, ErrTransactionExpired
	}

	external := tx.SettlesExternally()
	claimed, ok, err := s.txs.UpdateStatusIf(ctx, transactionID, models.StatusPending, models.StatusProcessing, func(row *models.Transaction) {
		row.ApprovedAt = &now
		// Every processing claim carries a deadline so the sweep can pick
		// the transaction back up if settlement is interrupted.
		next := now.Add(s.config.SettlementRetryInterval)
		row.NextRetryAt = &next
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot confirm from %s", ErrInvalidStateTransition, claimed.Status)
	}

	if external {
		s.cacheTx(ctx, claimed)
		s.logger.Info("payment awaiting settlement", zap.String("transaction_id", transactionID))
		return claimed, nil
	}

	return s.settle(ctx, claimed, "")
}

// settle completes a transaction the caller observed in processing. The
// compare-and-set into completed is the settlement claim: exactly one of
// any number of concurrent callers wins it and runs the ledger move, so a
// retried settlement callback can never move funds twice. A won claim whose
// move then fails rolls back to failed and returns the hold.
func (s *service) settle(ctx context.Context, tx *models.Transaction, externalRef string) (*models.Transaction, error) {
	now := s.now().UTC()

	claimed, ok, err := s.txs.UpdateStatusIf(ctx, tx.TransactionID, models.StatusProcessing, models.StatusCompleted, func(row *models.Transaction) {
		row.CompletedAt = &now
		if externalRef != "" {
			row.SettlementRef = externalRef
		}
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		if claimed.Status == models.StatusCompleted {
			// A concurrent settlement won the claim; nothing left to do.
			return claimed, nil
		}
		return nil, fmt.Errorf("%w: cannot settle from %s", ErrInvalidStateTransition, claimed.Status)
	}

	if err := s.ledger.Move(ctx, s.moveFor(claimed)); err != nil {
		failed, _, casErr := s.txs.UpdateStatusIf(ctx, tx.TransactionID, models.StatusCompleted, models.StatusFailed, func(row *models.Transaction) {
			row.CompletedAt = nil
			row.FailedAt = &now
			row.ErrorMessage = err.Error()
		})
		if casErr != nil {
			return nil, casErr
		}
		s.releaseHold(ctx, failed, models.StatusFailed)
		s.cacheTx(ctx, failed)
		s.logger.Warn("ledger move failed",
			zap.String("transaction_id", tx.TransactionID), zap.Error(err))
		return failed, err
	}

	s.cacheTx(ctx, claimed)
	s.logger.Info("payment completed", zap.String("transaction_id", tx.TransactionID))
	return claimed, nil
}

func (s *service) Cancel(ctx context.Context, transactionID string, callerWalletID uint) (*models.Transaction, error) {
	tx, err := s.txs.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if tx.SenderWalletID != callerWalletID {
		return nil, ErrUnauthorized
	}

	cancelled, ok, err := s.txs.UpdateStatusIf(ctx, transactionID, models.StatusPending, models.StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidStateTransition, cancelled.Status)
	}

	s.releaseHold(ctx, cancelled, models.StatusCancelled)
	s.cacheTx(ctx, cancelled)
	s.logger.Info("payment cancelled", zap.String("transaction_id", transactionID))
	return cancelled, nil
}

func (s *service) Reverse(ctx context.Context, transactionID, reason string) (*models.Transaction, error) {
	now := s.now().UTC()
	reversed, ok, err := s.txs.UpdateStatusIf(ctx, transactionID, models.StatusCompleted, models.StatusReversed, func(row *models.Transaction) {
		row.ReversedAt = &now
		row.ReversalReason = reason
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot reverse from %s", ErrInvalidStateTransition, reversed.Status)
	}

	// Limits stay charged: the spend still counts against the period it
	// happened in.
	if err := s.ledger.Move(ctx, s.reverseMoveFor(reversed)); err != nil {
		reversed.ErrorMessage = err.Error()
		if updErr := s.txs.Update(ctx, reversed); updErr != nil {
			s.logger.Error("failed to record reversal error",
				zap.String("transaction_id", transactionID), zap.Error(updErr))
		}
		return reversed, err
	}

	s.cacheTx(ctx, reversed)
	s.logger.Info("payment reversed",
		zap.String("transaction_id", transactionID), zap.String("reason", reason))
	return reversed, nil
}

func (s *service) ReportSettlement(ctx context.Context, report SettlementReport) (*models.Transaction, error) {
	if report.Outcome != OutcomeSuccess && report.Outcome != OutcomeFailure {
		return nil, fmt.Errorf("unknown settlement outcome %q", report.Outcome)
	}

	tx, err := s.txs.GetByTransactionID(ctx, report.TransactionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if report.Outcome == OutcomeSuccess {
		return s.settleSuccess(ctx, tx, report)
	}
	return s.settleFailure(ctx, tx, report)
}

func (s *service) settleSuccess(ctx context.Context, tx *models.Transaction, report SettlementReport) (*models.Transaction, error) {
	// A retried success report is a no-op.
	if tx.Status == models.StatusCompleted {
		if tx.SettlementRef != report.ExternalRef {
			s.logger.Warn("duplicate settlement report with different reference",
				zap.String("transaction_id", tx.TransactionID),
				zap.String("have", tx.SettlementRef),
				zap.String("got", report.ExternalRef))
		}
		return tx, nil
	}
	if tx.Status != models.StatusProcessing {
		return nil, fmt.Errorf("%w: cannot settle from %s", ErrInvalidStateTransition, tx.Status)
	}

	return s.settle(ctx, tx, report.ExternalRef)
}

func (s *service) settleFailure(ctx context.Context, tx *models.Transaction, report SettlementReport) (*models.Transaction, error) {
	if tx.Status == models.StatusFailed {
		return tx, nil
	}
	if tx.Status != models.StatusProcessing {
		return nil, fmt.Errorf("%w: cannot fail settlement from %s", ErrInvalidStateTransition, tx.Status)
	}

	now := s.now().UTC()

	// Retry while attempts remain and the rail scheduled another try.
	if report.RetryAt != nil && tx.RetryCount < tx.MaxRetries {
		retried, ok, err := s.txs.UpdateStatusIf(ctx, tx.TransactionID, models.StatusProcessing, models.StatusProcessing, func(row *models.Transaction) {
			row.RetryCount++
			row.NextRetryAt = report.RetryAt
			row.ErrorMessage = report.ErrorMessage
			if report.ExternalRef != "" {
				row.SettlementRef = report.ExternalRef
			}
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: cannot fail settlement from %s", ErrInvalidStateTransition, retried.Status)
		}
		s.cacheTx(ctx, retried)
		s.logger.Warn("settlement failed, retry scheduled",
			zap.String("transaction_id", tx.TransactionID),
			zap.Int("retry_count", retried.RetryCount),
			zap.Timep("next_retry_at", retried.NextRetryAt))
		return retried, nil
	}

	failed, ok, err := s.txs.UpdateStatusIf(ctx, tx.TransactionID, models.StatusProcessing, models.StatusFailed, func(row *models.Transaction) {
		row.FailedAt = &now
		row.ErrorMessage = report.ErrorMessage
		if report.ExternalRef != "" {
			row.SettlementRef = report.ExternalRef
		}
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot fail settlement from %s", ErrInvalidStateTransition, failed.Status)
	}

	s.releaseHold(ctx, failed, models.StatusFailed)
	s.cacheTx(ctx, failed)
	s.logger.Warn("settlement failed permanently",
		zap.String("transaction_id", tx.TransactionID),
		zap.String("error", report.ErrorMessage))
	return failed, nil
}

func (s *service) Expire(ctx context.Context) (int, error) {
	now := s.now().UTC()
	advanced := 0

	expired, err := s.txs.ListPendingExpired(ctx, now, s.config.SweepBatchSize)
	if err != nil {
		return 0, err
	}
	for i := range expired {
		if s.expireOne(ctx, &expired[i]) {
			advanced++
		}
	}

	due, err := s.txs.ListProcessingDue(ctx, now, s.config.SweepBatchSize)
	if err != nil {
		return advanced, err
	}
	for i := range due {
		if s.retryOrFail(ctx, &due[i], now) {
			advanced++
		}
	}

	return advanced, nil
}

// expireOne cancels one overrun pending transaction. The compare-and-set
// guarantees the hold is released exactly once even when the sweep races a
// concurrent confirm or cancel.
func (s *service) expireOne(ctx context.Context, tx *models.Transaction) bool {
	cancelled, ok, err := s.txs.UpdateStatusIf(ctx, tx.TransactionID, models.StatusPending, models.StatusCancelled, func(row *models.Transaction) {
		row.ErrorMessage = reasonExpired
	})
	if err != nil {
		s.logger.Error("failed to expire transaction",
			zap.String("transaction_id", tx.TransactionID), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	s.releaseHold(ctx, cancelled, models.StatusCancelled)
	s.cacheTx(ctx, cancelled)
	s.logger.Info("payment expired", zap.String("transaction_id", tx.TransactionID))
	return true
}

func (s *service) retryOrFail(ctx context.Context, tx *models.Transaction, now time.Time) bool {
	if !tx.SettlesExternally() {
		// An in-ledger transfer stuck in processing means settlement was
		// interrupted after the confirm claim; re-drive the move. The
		// settlement claim inside settle keeps this safe against a racing
		// confirm still in flight.
		_, err := s.settle(ctx, tx, "")
		if errors.Is(err, ErrInvalidStateTransition) {
			return false
		}
		if err != nil {
			s.logger.Warn("interrupted settlement re-drive failed",
				zap.String("transaction_id", tx.TransactionID), zap.Error(err))
		}
		return true
	}

	if tx.RetryCount >= tx.MaxRetries {
		failed, ok, err := s.txs.UpdateStatusIf(ctx, tx.TransactionID, models.StatusProcessing, models.StatusFailed, func(row *models.Transaction) {
			row.FailedAt = &now
			row.ErrorMessage = reasonSettlementTimeout
		})
		if err != nil || !ok {
			return false
		}
		s.releaseHold(ctx, failed, models.StatusFailed)
		s.cacheTx(ctx, failed)
		s.logger.Warn("settlement timed out",
			zap.String("transaction_id", tx.TransactionID),
			zap.Int("retry_count", tx.RetryCount))
		return true
	}

	next := now.Add(s.config.SettlementRetryInterval)
	retried, ok, err := s.txs.UpdateStatusIf(ctx, tx.TransactionID, models.StatusProcessing, models.StatusProcessing, func(row *models.Transaction) {
		row.RetryCount++
		row.NextRetryAt = &next
	})
	if err != nil || !ok {
		return false
	}
	s.cacheTx(ctx, retried)
	return true
}

func (s *service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := validateType(req.Type); err != nil {
		return nil, err
	}

	quote, err := s.rates.Resolve(ctx, req.CurrencyFrom, req.CurrencyTo)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.fees.Compute(req.Amount, req.Type, req.CurrencyFrom, req.CurrencyTo)
	if err != nil {
		return nil, err
	}

	received := req.Amount.Mul(quote.Rate).RoundBank(models.CurrencyPrecision(req.CurrencyTo))
	return &QuoteResult{
		Amount:         req.Amount,
		CurrencyFrom:   req.CurrencyFrom,
		CurrencyTo:     req.CurrencyTo,
		ExchangeRate:   quote.Rate,
		ReceivedAmount: received,
		Fees:           breakdown,
		TotalCost:      req.Amount.Add(breakdown.TotalFee),
		ValidUntil:     s.now().UTC().Add(s.config.QuoteValidity),
	}, nil
}

func (s *service) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	if s.cache != nil {
		var cached models.Transaction
		if err := s.cache.Get(ctx, transactionCachePrefix+transactionID, &cached); err == nil {
			return &cached, nil
		}
	}

	tx, err := s.txs.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.cacheTx(ctx, tx)
	return tx, nil
}

func (s *service) GetWallet(ctx context.Context, walletID uint) (*WalletView, error) {
	wallet, err := s.ledger.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	return &WalletView{
		WalletID:         wallet.ID,
		OwnerID:          wallet.OwnerID,
		Currency:         wallet.Currency,
		TotalBalance:     wallet.TotalBalance,
		HoldAmount:       wallet.HoldAmount,
		AvailableBalance: wallet.AvailableBalance(),
		FreezeStatus:     wallet.FreezeStatus,
		Daily:            wallet.Daily,
		Monthly:          wallet.Monthly,
		Yearly:           wallet.Yearly,
	}, nil
}

func (s *service) ListHistory(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.txs.ListByWallet(ctx, walletID, limit, offset)
}

// moveFor builds the completing ledger move for a transaction.
func (s *service) moveFor(tx *models.Transaction) ledger.MoveRequest {
	switch tx.Type {
	case models.TypeDeposit:
		// Fees come off the top before conversion; the rail already
		// collected the gross amount outside the ledger.
		net := tx.Amount.Sub(tx.Fees.TotalFee)
		credit := net.Mul(tx.ExchangeRate).RoundBank(models.CurrencyPrecision(tx.CurrencyTo))
		return ledger.MoveRequest{
			ToWalletID: tx.SenderWalletID,
			Credit:     credit,
			Reason:     models.StatusCompleted,
		}
	case models.TypeWithdrawal:
		return ledger.MoveRequest{
			FromWalletID: tx.SenderWalletID,
			Debit:        tx.Amount.Add(tx.Fees.TotalFee),
			Held:         tx.HoldAmount(),
			ChargeAmount: tx.Amount,
			Reason:       models.StatusCompleted,
		}
	default:
		to := tx.SenderWalletID
		if tx.RecipientWalletID != nil {
			to = *tx.RecipientWalletID
		}
		return ledger.MoveRequest{
			FromWalletID: tx.SenderWalletID,
			ToWalletID:   to,
			Debit:        tx.Amount.Add(tx.Fees.TotalFee),
			Held:         tx.HoldAmount(),
			Credit:       tx.ReceivedAmount,
			ChargeAmount: tx.Amount,
			Reason:       models.StatusCompleted,
		}
	}
}

// reverseMoveFor builds the chargeback move: the recipient gives back what
// it received, the sender recovers the source amount. Fees are not
// refunded.
func (s *service) reverseMoveFor(tx *models.Transaction) ledger.MoveRequest {
	switch tx.Type {
	case models.TypeDeposit:
		net := tx.Amount.Sub(tx.Fees.TotalFee)
		credit := net.Mul(tx.ExchangeRate).RoundBank(models.CurrencyPrecision(tx.CurrencyTo))
		return ledger.MoveRequest{
			FromWalletID: tx.SenderWalletID,
			Debit:        credit,
			Reason:       models.StatusReversed,
		}
	case models.TypeWithdrawal:
		return ledger.MoveRequest{
			ToWalletID: tx.SenderWalletID,
			Credit:     tx.Amount,
			Reason:     models.StatusReversed,
		}
	default:
		from := tx.SenderWalletID
		if tx.RecipientWalletID != nil {
			from = *tx.RecipientWalletID
		}
		return ledger.MoveRequest{
			FromWalletID: from,
			ToWalletID:   tx.SenderWalletID,
			Debit:        tx.ReceivedAmount,
			Credit:       tx.Amount,
			Reason:       models.StatusReversed,
		}
	}
}

func (s *service) resolveRecipient(ctx context.Context, req InitiateRequest) (uint, error) {
	switch req.Type {
	case models.TypeDeposit, models.TypeWithdrawal:
		// Settled against an external rail; no recipient wallet.
		return 0, nil
	case models.TypeConversion:
		if req.RecipientWalletID == 0 || req.RecipientWalletID == req.SenderWalletID {
			return req.SenderWalletID, nil
		}
	default:
		if req.RecipientWalletID == 0 {
			return 0, ErrRecipientRequired
		}
		if req.RecipientWalletID == req.SenderWalletID {
			return 0, ErrSelfTransfer
		}
	}

	recipient, err := s.ledger.GetWallet(ctx, req.RecipientWalletID)
	if err != nil {
		return 0, err
	}
	if !recipient.Mutable() {
		return 0, fmt.Errorf("%w: wallet %d is %s", ledger.ErrWalletFrozen, recipient.ID, recipient.FreezeStatus)
	}
	return recipient.ID, nil
}

// releaseHold returns a transaction's reserved funds, if any. Failures are
// logged, not propagated: the status transition has already committed and
// the sweep will surface stuck holds through invariant checks.
func (s *service) releaseHold(ctx context.Context, tx *models.Transaction, reason string) {
	hold := tx.HoldAmount()
	if hold.Sign() <= 0 {
		return
	}
	if err := s.ledger.Release(ctx, tx.SenderWalletID, hold, reason); err != nil {
		s.logger.Error("failed to release hold",
			zap.String("transaction_id", tx.TransactionID),
			zap.String("amount", hold.String()),
			zap.Error(err))
	}
}

func (s *service) cacheTx(ctx context.Context, tx *models.Transaction) {
	if s.cache == nil || tx == nil {
		return
	}
	if err := s.cache.Set(ctx, transactionCachePrefix+tx.TransactionID, tx, transactionCacheTTL); err != nil {
		s.logger.Warn("failed to cache transaction",
			zap.String("transaction_id", tx.TransactionID), zap.Error(err))
	}
}

// replayMatches reports whether a reference replay carries the same payload
// as the stored transaction. A reused reference with different parameters is
// a caller bug, not an idempotent retry.
func replayMatches(tx *models.Transaction, req InitiateRequest) bool {
	if tx.SenderWalletID != req.SenderWalletID || tx.Type != req.Type {
		return false
	}
	if !tx.Amount.Equal(req.Amount) {
		return false
	}
	if tx.CurrencyFrom != req.CurrencyFrom || tx.CurrencyTo != req.CurrencyTo {
		return false
	}
	if tx.RecipientWalletID != nil && req.RecipientWalletID != 0 &&
		*tx.RecipientWalletID != req.RecipientWalletID {
		return false
	}
	return true
}

func validateType(txType string) error {
	switch txType {
	case models.TypePeerToPeer, models.TypeCrossBorder, models.TypeDeposit,
		models.TypeWithdrawal, models.TypeConversion:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidType, txType)
}

func mapRepoErr(err error) error {
	if errors.Is(err, repositories.ErrTransactionNotFound) {
		return ErrTransactionNotFound
	}
	return err
}
