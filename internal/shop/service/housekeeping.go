package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/stallfront/stallfront/internal/shop/store"
)

// HousekeepingService periodically clears expired sessions out of the
// store. Expired rows are already invisible to reads; this keeps the
// table from growing without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with a default
// cleanup interval of 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger) *HousekeepingService {
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: time.Hour,
	}
}

// Start launches the background cleanup loop. It runs one pass
// immediately, then on every tick until Stop is called.
func (s *HousekeepingService) Start() {
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run()
}

// Stop signals the loop to exit and waits for it to finish.
func (s *HousekeepingService) Stop() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Store.Sessions().DeleteExpiredSessions(ctx); err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
		return
	}

	s.Logger.Debug("expired sessions cleared")
}
