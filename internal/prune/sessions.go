// Package prune removes stale conversation state on a schedule.
package prune

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionDeleter deletes unconfirmed sessions idle since the cutoff and
// reports how many rows went away.
type SessionDeleter interface {
	DeleteIdleUnconfirmed(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service runs the session pruner on a cron schedule. Confirmed sessions
// are never touched; only abandoned collections are dropped.
type Service struct {
	logger  *slog.Logger
	store   SessionDeleter
	cron    *cron.Cron
	idleFor time.Duration
}

// NewService creates a pruner that deletes unconfirmed sessions idle longer
// than idleFor.
func NewService(log *slog.Logger, store SessionDeleter, idleFor time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	if idleFor <= 0 {
		idleFor = 30 * 24 * time.Hour
	}
	return &Service{
		logger:  log.With(slog.String("service", "prune")),
		store:   store,
		cron:    cron.New(),
		idleFor: idleFor,
	}
}

// Start schedules the pruner with the given cron expression and begins
// running it.
func (s *Service) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return fmt.Errorf("schedule pruner: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce prunes immediately, outside the schedule.
func (s *Service) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.idleFor)
	return s.store.DeleteIdleUnconfirmed(ctx, cutoff)
}

func (s *Service) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("session prune failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.logger.Info("pruned idle sessions", slog.Int64("removed", removed))
	}
}
