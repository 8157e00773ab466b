// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ResetPurger clears password reset tokens that expired before now.
type ResetPurger interface {
	PurgeExpiredResets(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

func NewScheduler(log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		log:  log,
	}
}

// AddResetPurge registers the reset token cleanup under spec, a standard
// cron expression or a descriptor such as "@every 10m".
func (s *Scheduler) AddResetPurge(spec string, users ResetPurger, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	_, err := s.cron.AddFunc(spec, func() {
		PurgeResets(context.Background(), users, now().UTC(), s.log)
	})
	if err != nil {
		return fmt.Errorf("schedule reset purge %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("scheduler started")
}

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// PurgeResets runs one cleanup pass. Failures are logged only.
func PurgeResets(ctx context.Context, users ResetPurger, now time.Time, log logrus.FieldLogger) int64 {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := users.PurgeExpiredResets(ctx, now)
	if err != nil {
		log.WithFields(logrus.Fields{"module": "jobs", "action": "purge_resets"}).WithError(err).Warn("reset purge failed")
		return 0
	}
	if n > 0 {
		log.WithFields(logrus.Fields{"module": "jobs", "action": "purge_resets", "cleared": n}).Info("expired reset tokens cleared")
	}
	return n
}
