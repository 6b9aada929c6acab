package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper is implemented by stores that expire lazily.
type Sweeper interface {
	Sweep() int
}

// RunJanitor sweeps s at the given interval until ctx is done. Sessions that are never
// read again after their page load would otherwise stay in memory.
func RunJanitor(ctx context.Context, s Sweeper, interval time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && logger != nil {
				logger.Debug("expired sessions swept", zap.Int("count", n))
			}
		}
	}
}
