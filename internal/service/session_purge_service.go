package service

import (
	"context"
	"time"

	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/pkg/recommend/events"
)

// SessionPurger deletes sessions already past expiry.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type ISessionPurgeService interface {
	// Run purges every interval until ctx is done.
	Run(ctx context.Context)
	PurgeOnce(ctx context.Context) (int64, error)
}

type sessionPurgeService struct {
	purger    SessionPurger
	publisher events.Publisher
	interval  time.Duration
	logger    logger.ILogger
}

func NewSessionPurgeService(purger SessionPurger, publisher events.Publisher, interval time.Duration, log logger.ILogger) ISessionPurgeService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &sessionPurgeService{
		purger:    purger,
		publisher: publisher,
		interval:  interval,
		logger:    log,
	}
}

func (s *sessionPurgeService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("PURGE", "Session purge worker started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("PURGE", "Session purge worker stopped", nil)
			return
		case <-ticker.C:
			if _, err := s.PurgeOnce(ctx); err != nil {
				s.logger.Error("PURGE", "Session purge failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

func (s *sessionPurgeService) PurgeOnce(ctx context.Context) (int64, error) {
	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("PURGE", "Expired sessions purged", map[string]interface{}{"count": n})
		s.publisher.PublishSessionsPurged(ctx, n)
	}
	return n, nil
}
