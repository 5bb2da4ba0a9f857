package handlers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpiredLinkSweeper is the part of the signing service the cleanup job uses.
type ExpiredLinkSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// SignLinkCleanupService deletes expired sign links on a fixed interval.
type SignLinkCleanupService struct {
	sweeper  ExpiredLinkSweeper
	interval time.Duration
	logger   *zap.Logger
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewSignLinkCleanupService(sweeper ExpiredLinkSweeper, interval time.Duration, logger *zap.Logger) *SignLinkCleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SignLinkCleanupService{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs one sweep immediately, then one per interval.
func (s *SignLinkCleanupService) Start() {
	s.ticker = time.NewTicker(s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cleanupExpiredLinks()
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.cleanupExpiredLinks()
			}
		}
	}()
	s.logger.Info("Sign link cleanup service started", zap.Duration("interval", s.interval))
}

func (s *SignLinkCleanupService) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
	s.wg.Wait()
	s.logger.Info("Sign link cleanup service stopped")
}

func (s *SignLinkCleanupService) cleanupExpiredLinks() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Error during sign link cleanup", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("Cleaned up expired sign links", zap.Int64("count", deleted))
	}
}
