package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a resolved exchange rate for a currency pair.
type Quote struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
	AsOf time.Time       `json:"as_of"`
}

// Oracle is the external rate source. It may be slow and it may fail; the
// resolver bounds its latency and falls back to the static table.
type Oracle interface {
	Quote(ctx context.Context, from, to string) (Quote, error)
}

// Config holds resolver tuning.
type Config struct {
	// StalenessWindow bounds how long a resolved rate stays usable. Past
	// it a fresh resolution is attempted even when the cache still holds
	// the pair.
	StalenessWindow time.Duration
	// OracleTimeout bounds a single oracle query.
	OracleTimeout time.Duration
	// HistoryDepth caps the per-pair quote history kept for audit.
	HistoryDepth int
}

// Service resolves exchange rates, cache first.
type Service interface {
	Resolve(ctx context.Context, from, to string) (Quote, error)
}
