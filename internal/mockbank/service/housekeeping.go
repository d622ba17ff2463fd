package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
)

// HousekeepingService periodically deletes sessions that can no longer be
// used so the sessions table does not grow without bound. Revoked sessions
// are kept for Retention first so they still show up in audits.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. A non-positive interval means
// hourly; a negative retention means none.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention < 0 {
		retention = 0
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup does one pass and reports how many sessions it removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := time.Now().UTC().Add(-s.Retention)

	n, err := s.Store.Sessions().DeleteStaleSessions(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete stale sessions", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "sessions_deleted", n)
	return n
}
