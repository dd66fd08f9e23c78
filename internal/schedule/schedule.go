// Package schedule runs the job monitor repeatedly, either at fixed daily times or
// at a fixed interval.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"
)

// Plan is a set of cron schedules; the earliest next activation wins.
type Plan struct {
	schedules   []cron.Schedule
	Description string
}

// Daily returns a plan firing every day at each HH:MM in runTimes, local time.
func Daily(runTimes []string) (*Plan, error) {
	if len(runTimes) == 0 {
		return nil, fmt.Errorf("no run times given")
	}
	p := &Plan{Description: "daily at " + strings.Join(runTimes, ", ")}
	for _, rt := range runTimes {
		at, err := time.Parse("15:04", strings.TrimSpace(rt))
		if err != nil {
			return nil, fmt.Errorf("invalid run time %q: %w", rt, err)
		}
		s, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", at.Minute(), at.Hour()))
		if err != nil {
			return nil, fmt.Errorf("invalid run time %q: %w", rt, err)
		}
		p.schedules = append(p.schedules, s)
	}
	return p, nil
}

// Every returns a plan firing every interval after the previous run finished.
// Intervals are rounded down to whole seconds, with a one second minimum.
func Every(interval time.Duration) *Plan {
	return &Plan{
		schedules:   []cron.Schedule{cron.Every(interval)},
		Description: "every " + interval.String(),
	}
}

// FromConfig picks daily run times when any are set, otherwise the interval.
func FromConfig(runTimes []string, interval time.Duration) (*Plan, error) {
	if len(runTimes) > 0 {
		return Daily(runTimes)
	}
	return Every(interval), nil
}

// Next returns the first activation strictly after t.
func (p *Plan) Next(t time.Time) time.Time {
	var next time.Time
	for _, s := range p.schedules {
		n := s.Next(t)
		if next.IsZero() || (!n.IsZero() && n.Before(next)) {
			next = n
		}
	}
	return next
}

// Job is one monitor run.
type Job func(ctx context.Context) error

// Scheduler runs a Job immediately and then at every activation of its plan.
type Scheduler struct {
	plan   *Plan
	logger *zap.Logger
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
}

// New creates a scheduler.
func New(plan *Plan, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{plan: plan, logger: logger, now: time.Now, after: time.After}
}

// Run blocks until ctx is cancelled. A failing run is logged and the schedule
// continues; runs never overlap because the next activation is computed after the
// previous run returns.
func (s *Scheduler) Run(ctx context.Context, job Job) error {
	s.logger.Info("scheduler started", zap.String("plan", s.plan.Description))

	s.logger.Info("running initial job search")
	s.runOnce(ctx, job)

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("scheduler stopped")
			return err
		}

		now := s.now()
		next := s.plan.Next(now)
		if next.IsZero() {
			return fmt.Errorf("schedule %q has no future activation", s.plan.Description)
		}
		s.logger.Info("next run scheduled", zap.Time("at", next))

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-s.after(next.Sub(now)):
		}
		s.runOnce(ctx, job)
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	started := s.now()
	s.logger.Info("starting scheduled job monitor run")
	if err := job(ctx); err != nil {
		s.logger.Error("error in scheduled run", zap.Error(err))
		return
	}
	s.logger.Info("job monitor run completed", zap.Duration("took", s.now().Sub(started)))
}
