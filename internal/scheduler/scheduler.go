// Package scheduler runs the periodic ad sync on an interval with at most
// one execution in flight; a sync that outlives its interval causes the next
// tick to be skipped rather than stacked.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SyncFunc is the job body; it receives a background context and returns the
// sync error, which is logged but never fatal to the schedule.
type SyncFunc func(ctx context.Context) error

// Scheduler owns the cron runner for the ad sync job.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	sync     SyncFunc
}

// New builds a Scheduler that invokes sync every interval.
func New(interval time.Duration, sync SyncFunc) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
			cron.Recover(cron.DiscardLogger),
		)),
		interval: interval,
		sync:     sync,
	}
}

// Start registers the job and starts the runner. The first execution happens
// one interval after start; a cold start with an empty mirror is served by
// the manual sync endpoint.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.sync(context.Background()); err != nil {
			log.Error().Err(err).Msg("ad sync job failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Dur("interval", s.interval).Msg("ad sync job scheduled")
	return nil
}

// Stop halts the runner and returns a context that is done once any
// in-flight sync has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
