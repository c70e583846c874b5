// Package cron provides scheduled pipeline runs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/craig-dws/Email-Reports/internal/domain/workflow"
)

// Scheduler runs the report sweep on a cron expression, for deployments
// where reports arrive on a monthly cadence.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *workflow.Pipeline
	logger   *slog.Logger
}

// NewScheduler creates a scheduler over a configured pipeline.
func NewScheduler(pipeline *workflow.Pipeline, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Start registers the sweep at the given cron spec (standard 5-field format)
// and begins the schedule.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runSweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("spec", spec))
	return nil
}

// Stop gracefully stops the schedule; the returned context is done once any
// in-flight sweep finishes.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers a sweep outside the schedule.
func (s *Scheduler) RunNow() {
	go s.runSweep()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info("scheduled report sweep starting")
	summary, err := s.pipeline.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled report sweep failed", slog.Any("error", err))
		return
	}

	s.logger.Info("scheduled report sweep completed",
		slog.Int("processed", summary.Processed),
		slog.Int("drafted", summary.Drafted),
		slog.Int("unmatched", len(summary.Unmatched)),
		slog.Int("failures", len(summary.Failures)),
	)
}
