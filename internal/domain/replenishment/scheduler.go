// internal/domain/replenishment/scheduler.go
package replenishment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule runs the review daily at 04:00
const DefaultSchedule = "0 4 * * *"

// Scheduler triggers the job on a cron expression
type Scheduler struct {
	cron   *cron.Cron
	job    *Job
	logger logrus.FieldLogger
	spec   string
	now    func() time.Time
}

// NewScheduler registers job under the standard five-field cron spec
func NewScheduler(job *Job, spec string, location *time.Location, logger logrus.FieldLogger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if location == nil {
		location = time.Local
	}

	cronLogger := cron.PrintfLogger(logger)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		job:    job,
		logger: logger,
		spec:   spec,
		now:    time.Now,
	}

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid replenishment schedule %q: %w", spec, err)
	}

	return s, nil
}

func (s *Scheduler) tick() {
	report, err := s.job.Run(context.Background(), s.now())
	if errors.Is(err, ErrRunInProgress) {
		s.logger.Warn("Previous replenishment run still active, skipping tick")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("Replenishment run failed")
		return
	}
	s.logger.WithField("ordered", report.Ordered).Debug("Replenishment tick finished")
}

// Start begins scheduling in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.logger.WithFields(logrus.Fields{
			"schedule": s.spec,
			"next_run": entry.Next,
		}).Info("⏰ Replenishment scheduler started")
	}
}

// Stop prevents new runs and waits for an active one, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
