package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RepairScheduler runs the schema verifier on a cron schedule
type RepairScheduler struct {
	verifier *SchemaVerifier
	repair   bool
	timeout  time.Duration
	log      *zap.SugaredLogger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewRepairScheduler creates a scheduler; repair selects whether passes fix
// stale pending tables or only report them
func NewRepairScheduler(verifier *SchemaVerifier, repair bool, log *zap.SugaredLogger) *RepairScheduler {
	return &RepairScheduler{verifier: verifier, repair: repair, timeout: 5 * time.Minute, log: log}
}

// Start schedules verification passes. Overlapping passes are skipped.
func (s *RepairScheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid repair schedule %q: %w", spec, err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(schedule, cron.FuncJob(s.RunOnce))
	c.Start()
	s.cron = c

	s.log.Infow("⏰ Schema repair job scheduled", "schedule", spec, "repair", s.repair)
	return nil
}

// RunOnce performs one verification pass
func (s *RepairScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.verifier.Verify(ctx, s.repair); err != nil {
		s.log.Errorw("❌ Schema verification failed", "error", err)
	}
}

// Stop halts the schedule and waits for a running pass to finish
func (s *RepairScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		s.log.Info("⏰ Schema repair job stopped")
	}
}
