package ledger

import (
	"context"
	"sync"
	"testing"

	"nexapay/internal/models"
	"nexapay/internal/repositories/memory"
	"nexapay/internal/services/limits"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (Service, *memory.WalletStore) {
	t.Helper()
	store := memory.NewWalletStore()
	return NewService(store, limits.NewPolicy(), nil), store
}

func fundedWallet(t *testing.T, svc Service, ownerID uint, balance int64) *models.Wallet {
	t.Helper()
	w, err := svc.CreateWallet(context.Background(), ownerID, "USD")
	require.NoError(t, err)
	if balance > 0 {
		require.NoError(t, svc.Move(context.Background(), MoveRequest{
			ToWalletID: w.ID,
			Credit:     decimal.NewFromInt(balance),
			Reason:     models.StatusCompleted,
		}))
	}
	w, err = svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, err)
	return w
}

func TestCreateWallet(t *testing.T) {
	svc, _ := newTestLedger(t)

	w, err := svc.CreateWallet(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, "USD", w.Currency)
	assert.True(t, w.TotalBalance.IsZero())
	assert.True(t, w.HoldAmount.IsZero())
	assert.Equal(t, models.FreezeStatusActive, w.FreezeStatus)
	assert.True(t, w.Daily.Cap.Equal(limits.DefaultDailyCap))
	assert.True(t, w.Active)
}

func TestReserveRelease_RoundTrip(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 1000)

	require.NoError(t, svc.Reserve(context.Background(), w.ID, decimal.NewFromInt(300)))

	got, err := svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(1000)), "reserve must not change total")
	assert.True(t, got.HoldAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, got.AvailableBalance().Equal(decimal.NewFromInt(700)))

	require.NoError(t, svc.Release(context.Background(), w.ID, decimal.NewFromInt(300), models.StatusCancelled))

	got, err = svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.HoldAmount.IsZero())
	assert.True(t, got.AvailableBalance().Equal(decimal.NewFromInt(1000)))
}

func TestReserve_InsufficientAvailable(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 100)

	require.NoError(t, svc.Reserve(context.Background(), w.ID, decimal.NewFromInt(80)))

	// 20 available; reserving against total instead of available would pass.
	err := svc.Reserve(context.Background(), w.ID, decimal.NewFromInt(50))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	got, err := svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.HoldAmount.Equal(decimal.NewFromInt(80)), "failed reserve must not change state")
}

func TestReserve_InvalidAmount(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 100)

	assert.ErrorIs(t, svc.Reserve(context.Background(), w.ID, decimal.Zero), ErrInvalidAmount)
	assert.ErrorIs(t, svc.Reserve(context.Background(), w.ID, decimal.NewFromInt(-5)), ErrInvalidAmount)
}

func TestReserve_FrozenWallet(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 100)

	require.NoError(t, svc.Freeze(context.Background(), w.ID, "compliance review"))
	assert.ErrorIs(t, svc.Reserve(context.Background(), w.ID, decimal.NewFromInt(10)), ErrWalletFrozen)

	require.NoError(t, svc.Unfreeze(context.Background(), w.ID))
	assert.NoError(t, svc.Reserve(context.Background(), w.ID, decimal.NewFromInt(10)))
}

func TestRelease_OverReleaseSuspendsWallet(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 100)

	require.NoError(t, svc.Reserve(context.Background(), w.ID, decimal.NewFromInt(30)))

	err := svc.Release(context.Background(), w.ID, decimal.NewFromInt(50), models.StatusCancelled)
	require.ErrorIs(t, err, ErrInvariantViolation)

	got, getErr := svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.FreezeStatusSuspended, got.FreezeStatus)
	assert.NotEmpty(t, got.FreezeReason)
	assert.True(t, got.HoldAmount.Equal(decimal.NewFromInt(30)), "hold untouched by the refused release")
}

func TestMove_PairConservesFunds(t *testing.T) {
	svc, _ := newTestLedger(t)
	sender := fundedWallet(t, svc, 1, 1000)
	recipient := fundedWallet(t, svc, 2, 0)

	amount := decimal.NewFromInt(100)
	fee := decimal.NewFromInt(1)
	held := amount.Add(fee)

	require.NoError(t, svc.Reserve(context.Background(), sender.ID, held))
	require.NoError(t, svc.Move(context.Background(), MoveRequest{
		FromWalletID: sender.ID,
		ToWalletID:   recipient.ID,
		Debit:        held,
		Held:         held,
		Credit:       amount,
		ChargeAmount: amount,
		Reason:       models.StatusCompleted,
	}))

	s, err := svc.GetWallet(context.Background(), sender.ID)
	require.NoError(t, err)
	r, err := svc.GetWallet(context.Background(), recipient.ID)
	require.NoError(t, err)

	assert.True(t, s.TotalBalance.Equal(decimal.NewFromInt(899)))
	assert.True(t, s.HoldAmount.IsZero())
	assert.True(t, r.TotalBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.Daily.Used.Equal(amount), "limits charged on the move")
	assert.Equal(t, int64(1), s.Stats.SuccessCount)
	assert.Equal(t, int64(1), r.Stats.SuccessCount)
}

func TestMove_ExternalOutflow(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 500)

	held := decimal.NewFromInt(101)
	require.NoError(t, svc.Reserve(context.Background(), w.ID, held))
	require.NoError(t, svc.Move(context.Background(), MoveRequest{
		FromWalletID: w.ID,
		Debit:        held,
		Held:         held,
		ChargeAmount: decimal.NewFromInt(100),
		Reason:       models.StatusCompleted,
	}))

	got, err := svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(399)))
	assert.True(t, got.HoldAmount.IsZero())
}

func TestMove_ExternalInflow(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 0)

	require.NoError(t, svc.Move(context.Background(), MoveRequest{
		ToWalletID: w.ID,
		Credit:     decimal.NewFromInt(250),
		Reason:     models.StatusCompleted,
	}))

	got, err := svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(250)))
	assert.True(t, got.Daily.Used.IsZero(), "inflows never charge limits")
}

func TestMove_SameWalletConversion(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 1000)

	debit := decimal.NewFromInt(101)
	require.NoError(t, svc.Reserve(context.Background(), w.ID, debit))
	require.NoError(t, svc.Move(context.Background(), MoveRequest{
		FromWalletID: w.ID,
		ToWalletID:   w.ID,
		Debit:        debit,
		Held:         debit,
		Credit:       decimal.NewFromInt(92),
		ChargeAmount: decimal.NewFromInt(100),
		Reason:       models.StatusCompleted,
	}))

	got, err := svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(991)))
	// The funding inflow counted one event; the conversion adds exactly one
	// more, not one per leg.
	assert.Equal(t, int64(2), got.Stats.TotalCount)
}

func TestMove_LimitRecheckUnderLock(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 1000)

	require.NoError(t, svc.Move(context.Background(), MoveRequest{
		FromWalletID: w.ID,
		Debit:        decimal.NewFromInt(1),
		ChargeAmount: decimal.NewFromInt(1),
		Reason:       models.StatusCompleted,
	}))

	err := svc.Move(context.Background(), MoveRequest{
		FromWalletID: w.ID,
		Debit:        decimal.NewFromInt(500),
		ChargeAmount: limits.DefaultDailyCap,
		Reason:       models.StatusCompleted,
	})
	require.ErrorIs(t, err, limits.ErrLimitExceeded)

	got, getErr := svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, getErr)
	assert.True(t, got.TotalBalance.Equal(decimal.NewFromInt(999)), "refused move must not debit")
}

func TestMove_DebitExceedingBalanceIsInvariantViolation(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 100)

	err := svc.Move(context.Background(), MoveRequest{
		FromWalletID: w.ID,
		Debit:        decimal.NewFromInt(200),
		Reason:       models.StatusCompleted,
	})
	require.ErrorIs(t, err, ErrInvariantViolation)

	got, getErr := svc.GetWallet(context.Background(), w.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.FreezeStatusSuspended, got.FreezeStatus)
}

func TestMove_BothWalletsZeroRejected(t *testing.T) {
	svc, _ := newTestLedger(t)
	err := svc.Move(context.Background(), MoveRequest{
		Credit: decimal.NewFromInt(10),
		Reason: models.StatusCompleted,
	})
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestMove_ConcurrentOppositeTransfers(t *testing.T) {
	svc, _ := newTestLedger(t)
	a := fundedWallet(t, svc, 1, 1000)
	b := fundedWallet(t, svc, 2, 1000)

	const rounds = 50
	amount := decimal.NewFromInt(1)

	var wg sync.WaitGroup
	wg.Add(2)
	transfer := func(from, to uint) {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			err := svc.Move(context.Background(), MoveRequest{
				FromWalletID: from,
				ToWalletID:   to,
				Debit:        amount,
				Credit:       amount,
				Reason:       models.StatusCompleted,
			})
			require.NoError(t, err)
		}
	}
	go transfer(a.ID, b.ID)
	go transfer(b.ID, a.ID)
	wg.Wait()

	wa, err := svc.GetWallet(context.Background(), a.ID)
	require.NoError(t, err)
	wb, err := svc.GetWallet(context.Background(), b.ID)
	require.NoError(t, err)

	// Equal traffic both ways: balances end where they started and the
	// system total is conserved.
	assert.True(t, wa.TotalBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, wb.TotalBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, wa.TotalBalance.Add(wb.TotalBalance).Equal(decimal.NewFromInt(2000)))
}

func TestDeactivate_BlocksMutation(t *testing.T) {
	svc, _ := newTestLedger(t)
	w := fundedWallet(t, svc, 1, 100)

	require.NoError(t, svc.Deactivate(context.Background(), w.ID))
	assert.ErrorIs(t, svc.Reserve(context.Background(), w.ID, decimal.NewFromInt(10)), ErrWalletFrozen)
}

func TestLedger_WalletNotFound(t *testing.T) {
	svc, _ := newTestLedger(t)

	assert.ErrorIs(t, svc.Reserve(context.Background(), 999, decimal.NewFromInt(1)), ErrWalletNotFound)
	assert.ErrorIs(t, svc.Freeze(context.Background(), 999, "x"), ErrWalletNotFound)
	_, err := svc.GetWallet(context.Background(), 999)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}
