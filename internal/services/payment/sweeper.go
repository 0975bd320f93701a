package payment

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const DefaultSweepInterval = time.Minute

// Sweeper periodically runs the expiry/retry sweep. It is the only path
// that cancels transactions on timeout; nothing blocks waiting for
// settlement.
type Sweeper struct {
	svc      Service
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(svc Service, interval time.Duration, logger *zap.Logger) *Sweeper {
	if svc == nil {
		panic("payment service is required")
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.svc.Expire(ctx)
			if err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("sweep advanced transactions", zap.Int("count", n))
			}
		}
	}
}
