package main

import (
	"context"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/flowfn/flowfn/pkg/cmd"
	"github.com/flowfn/flowfn/pkg/log"
	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/runner"
	"github.com/flowfn/flowfn/pkg/scheduler"
)

func ScheduleCommand() *cli.Command {
	return &cli.Command{
		Name:    "schedule",
		Aliases: []string{"s"},
		Usage:   "Run a stored flow repeatedly on a cron schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "flow-id",
				Usage:    "ID of the stored flow to run",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "cron",
				Usage:    "Cron expression (e.g. '*/5 * * * *')",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Flow storage URL (file://, postgres:// or redis://)",
				Value:   "file://./flows",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "Worker pool size for graph execution (1 = sequential)",
				Value:   1,
				Sources: cli.EnvVars("WORKERS"),
			},
			logLevelFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("scheduler")

			registry := cmd.NewRegistry(logger)

			flows := cmd.NewFlowRepository(ctx, logger, command.String("database-url"))
			defer func() {
				if err := flows.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close flow repository", "error", err)
				}
			}()

			bus := cmd.NewEventBus(command.String("event-bus"), "flowfn-scheduler", logger)
			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			run := runner.New(registry,
				runner.WithLogger(logger),
				runner.WithEventBus(bus),
				runner.WithWorkers(command.Int("workers")),
			)

			sched, err := scheduler.New(logger, flows, run,
				command.String("flow-id"), command.String("cron"),
				func(ctx context.Context, flowID string, results map[string]*models.ExecutionResult) {
					failed := 0
					for _, res := range results {
						if res.Failed() {
							failed++
						}
					}

					logger.InfoContext(ctx, "Scheduled run finished",
						"flow_id", flowID, "nodes", len(results), "failed", failed)
				})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := sched.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			sched.Stop()

			return nil
		},
	}
}
