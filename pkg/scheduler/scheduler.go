// Package scheduler runs a stored flow on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/persistence"
	"github.com/flowfn/flowfn/pkg/runner"
)

// ResultCallback receives the results of each scheduled run.
type ResultCallback func(ctx context.Context, flowID string, results map[string]*models.ExecutionResult)

// Scheduler repeatedly executes one stored flow.
type Scheduler struct {
	flowID   string
	cronExpr string
	flows    persistence.FlowRepository
	runner   *runner.Runner
	callback ResultCallback
	logger   *slog.Logger
	cron     *cron.Cron
}

// New validates the cron expression and builds the scheduler.
func New(
	logger *slog.Logger,
	flows persistence.FlowRepository,
	run *runner.Runner,
	flowID, cronExpr string,
	callback ResultCallback,
) (*Scheduler, error) {
	if flowID == "" {
		return nil, errors.New("flow ID is required")
	}

	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	return &Scheduler{
		flowID:   flowID,
		cronExpr: cronExpr,
		flows:    flows,
		runner:   run,
		callback: callback,
		logger:   logger.With("module", "scheduler", "flow_id", flowID, "cron", cronExpr),
	}, nil
}

// Start registers the cron job. Overlapping runs are skipped rather than
// stacked.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting scheduler")

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := s.cron.AddFunc(s.cronExpr, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to add cron job for flow %s: %w", s.flowID, err)
	}

	s.cron.Start()

	return nil
}

// RunOnce executes the flow immediately, outside the schedule.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	flow, err := s.flows.GetByID(ctx, s.flowID)
	if err != nil {
		return err
	}

	results := s.runner.Run(ctx, flow.Graph)
	if s.callback != nil {
		s.callback(ctx, s.flowID, results)
	}

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	s.logger.Info("Cron job triggered")

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("Scheduled run failed", "error", err)
	}
}

// Stop halts the cron loop; in-flight runs finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")

	if s.cron != nil {
		s.cron.Stop()
	}
}
