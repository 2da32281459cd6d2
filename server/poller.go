package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunPoller syncs once immediately, then every interval until ctx is done.
func (s *Service) RunPoller(ctx context.Context, interval time.Duration) {
	if s.source == nil || interval <= 0 {
		return
	}
	logger := s.logger.With(zap.String("source", s.source.Name()))
	logger.Info("poller starting", zap.Duration("interval", interval))

	if _, err := s.Sync(ctx); err != nil && ctx.Err() == nil {
		logger.Warn("initial sync failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("poller stopping")
			return
		case <-ticker.C:
			if _, err := s.Sync(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("periodic sync failed", zap.Error(err))
			}
		}
	}
}
