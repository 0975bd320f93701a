// Package limits enforces rolling daily/monthly/yearly usage caps on
// wallets. Windows reset lazily: the first check after a boundary crossing
// zeroes the usage and advances the window start, there is no background
// reset job.
package limits

import (
	"errors"
	"fmt"
	"time"

	"nexapay/internal/models"

	"github.com/shopspring/decimal"
)

var ErrLimitExceeded = errors.New("limit exceeded")

// Default caps, applied to newly provisioned wallets.
var (
	DefaultDailyCap   = decimal.NewFromInt(10_000)
	DefaultMonthlyCap = decimal.NewFromInt(100_000)
	DefaultYearlyCap  = decimal.NewFromInt(1_000_000)
)

type Policy struct {
	now func() time.Time
}

func NewPolicy() *Policy {
	return &Policy{now: time.Now}
}

// NewPolicyAt builds a policy with an injected clock.
func NewPolicyAt(now func() time.Time) *Policy {
	return &Policy{now: now}
}

// DefaultWindows returns the limit windows a fresh wallet starts with.
func DefaultWindows(now time.Time) (daily, monthly, yearly models.LimitWindow) {
	daily = models.LimitWindow{Cap: DefaultDailyCap, Used: decimal.Zero, WindowStart: startOfDay(now)}
	monthly = models.LimitWindow{Cap: DefaultMonthlyCap, Used: decimal.Zero, WindowStart: startOfMonth(now)}
	yearly = models.LimitWindow{Cap: DefaultYearlyCap, Used: decimal.Zero, WindowStart: startOfYear(now)}
	return daily, monthly, yearly
}

// Check rolls each window forward if a period boundary has been crossed,
// then requires headroom for the amount in all three windows at once. The
// lazy resets mutate the wallet; callers running inside an atomic wallet
// update persist them for free, read-only callers may discard them.
func (p *Policy) Check(w *models.Wallet, amount decimal.Decimal) error {
	now := p.now().UTC()
	p.rollover(w, now)

	for _, win := range []struct {
		name   string
		window models.LimitWindow
	}{
		{"daily", w.Daily},
		{"monthly", w.Monthly},
		{"yearly", w.Yearly},
	} {
		if win.window.Used.Add(amount).GreaterThan(win.window.Cap) {
			return fmt.Errorf("%w: %s cap %s, used %s, requested %s",
				ErrLimitExceeded, win.name, win.window.Cap, win.window.Used, amount)
		}
	}
	return nil
}

// Charge records usage against all three windows. It must only be called
// after a successful debit, inside the same atomic wallet update, and after
// a passing Check. Reversals never un-charge: a chargeback still counts
// against the period it occurred in.
func (p *Policy) Charge(w *models.Wallet, amount decimal.Decimal) {
	now := p.now().UTC()
	p.rollover(w, now)

	w.Daily.Used = w.Daily.Used.Add(amount)
	w.Monthly.Used = w.Monthly.Used.Add(amount)
	w.Yearly.Used = w.Yearly.Used.Add(amount)
}

// rollover lazily resets any window whose period has ended. Window starts
// only ever move forward.
func (p *Policy) rollover(w *models.Wallet, now time.Time) {
	if day := startOfDay(now); day.After(w.Daily.WindowStart) {
		w.Daily.Used = decimal.Zero
		w.Daily.WindowStart = day
	}
	if month := startOfMonth(now); month.After(w.Monthly.WindowStart) {
		w.Monthly.Used = decimal.Zero
		w.Monthly.WindowStart = month
	}
	if year := startOfYear(now); year.After(w.Yearly.WindowStart) {
		w.Yearly.Used = decimal.Zero
		w.Yearly.WindowStart = year
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func startOfYear(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
}
