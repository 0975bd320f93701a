package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexapay/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cache keys and defaults
const (
	quoteCachePrefix   = "rates:quote:"
	historyCachePrefix = "rates:history:"

	DefaultStalenessWindow = time.Minute
	DefaultOracleTimeout   = 5 * time.Second
	DefaultHistoryDepth    = 100
)

type service struct {
	oracle Oracle
	cache  repositories.CacheRepository
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new exchange rate resolver.
func NewService(oracle Oracle, cache repositories.CacheRepository, config Config, logger *zap.Logger) Service {
	if cache == nil {
		panic("cache is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.StalenessWindow == 0 {
		config.StalenessWindow = DefaultStalenessWindow
	}
	if config.OracleTimeout == 0 {
		config.OracleTimeout = DefaultOracleTimeout
	}
	if config.HistoryDepth == 0 {
		config.HistoryDepth = DefaultHistoryDepth
	}

	return &service{
		oracle: oracle,
		cache:  cache,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

func (s *service) Resolve(ctx context.Context, from, to string) (Quote, error) {
	if from == to {
		return Quote{From: from, To: to, Rate: decimal.NewFromInt(1), AsOf: s.now()}, nil
	}

	cacheKey := quoteCachePrefix + from + ":" + to

	var cached Quote
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		if s.now().Sub(cached.AsOf) <= s.config.StalenessWindow {
			return cached, nil
		}
	}

	if quote, err := s.queryOracle(ctx, from, to); err == nil {
		if err := s.cache.Set(ctx, cacheKey, quote, s.config.StalenessWindow); err != nil {
			s.logger.Warn("failed to cache quote", zap.String("pair", from+":"+to), zap.Error(err))
		}
		s.recordQuote(ctx, quote)
		return quote, nil
	} else {
		s.logger.Warn("oracle query failed, using fallback table",
			zap.String("pair", from+":"+to), zap.Error(err))
	}

	if rate, ok := fallbackRate(from, to); ok {
		return Quote{From: from, To: to, Rate: rate, AsOf: s.now()}, nil
	}

	return Quote{}, fmt.Errorf("%w: %s:%s", ErrRateUnavailable, from, to)
}

func (s *service) queryOracle(ctx context.Context, from, to string) (Quote, error) {
	if s.oracle == nil {
		return Quote{}, fmt.Errorf("no oracle configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OracleTimeout)
	defer cancel()

	quote, err := s.oracle.Quote(ctx, from, to)
	if err != nil {
		return Quote{}, err
	}
	if quote.Rate.Sign() <= 0 {
		return Quote{}, fmt.Errorf("oracle returned non-positive rate for %s:%s", from, to)
	}
	quote.From, quote.To = from, to
	if quote.AsOf.IsZero() {
		quote.AsOf = s.now()
	}
	return quote, nil
}

// recordQuote appends the quote to a capped per-pair history list for audit.
// History is best-effort; failures are logged and ignored.
func (s *service) recordQuote(ctx context.Context, quote Quote) {
	key := historyCachePrefix + quote.From + ":" + quote.To

	var history []Quote
	if err := s.cache.Get(ctx, key, &history); err != nil && !errors.Is(err, repositories.ErrCacheMiss) {
		return
	}
	history = append(history, quote)
	if len(history) > s.config.HistoryDepth {
		history = history[len(history)-s.config.HistoryDepth:]
	}
	if err := s.cache.Set(ctx, key, history, 30*24*time.Hour); err != nil {
		s.logger.Warn("failed to record quote history", zap.Error(err))
	}
}
