package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/campusgate/internal/gateway/store"
)

const DefaultAuditRetention = 30 * 24 * time.Hour

// HousekeepingService periodically prunes login attempts older than the
// retention period.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	now    func() time.Time
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService applies defaults of one hour for interval and
// DefaultAuditRetention for retention when they are not positive.
func NewHousekeepingService(
	st store.Store,
	logger *slog.Logger,
	interval, retention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultAuditRetention
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the cleanup loop in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
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
	ctx := context.Background()
	cutoff := s.now().Add(-s.Retention)

	deleted, err := s.Store.LoginAttempts().DeleteLoginAttemptsBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to prune login attempts", "error", err)
		return
	}
	s.Logger.Info("housekeeping cleanup completed", "login_attempts_deleted", deleted, "cutoff", cutoff)
}
