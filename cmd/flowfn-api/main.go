package main

import (
	"context"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flowfn/flowfn/pkg/cmd"
	"github.com/flowfn/flowfn/pkg/eventbus"
	"github.com/flowfn/flowfn/pkg/events"
	"github.com/flowfn/flowfn/pkg/log"
	"github.com/flowfn/flowfn/pkg/otelhelper"
	"github.com/flowfn/flowfn/pkg/runner"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "flowfn-api",
		Usage:                 "Serve the node catalog, graph execution and flow storage API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
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
			&cli.DurationFlag{
				Name:    "node-timeout",
				Usage:   "Per-node execution timeout (0 disables it)",
				Value:   0,
				Sources: cli.EnvVars("NODE_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export a span per executed node over OTLP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing flowfn API")

			registry := cmd.NewRegistry(logger)

			flows := cmd.NewFlowRepository(ctx, logger, command.String("database-url"))
			defer func() {
				if err := flows.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close flow repository", "error", err)
				}
			}()

			bus := cmd.NewEventBus(command.String("event-bus"), "flowfn-api", logger)
			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			subscribeNodeFailures(ctx, logger, bus)

			tracer, err := graphTracer(ctx, command.Bool("tracing"))
			if err != nil {
				return err
			}

			run := runner.New(registry,
				runner.WithLogger(logger),
				runner.WithEventBus(bus),
				runner.WithWorkers(command.Int("workers")),
				runner.WithNodeTimeout(command.Duration("node-timeout")),
				runner.WithTracer(tracer),
			)

			api := NewAPI(logger, registry, run, flows)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

// graphTracer returns the tracer the runner records node spans with:
// OTLP-backed when tracing is enabled, a no-op tracer otherwise.
func graphTracer(ctx context.Context, enabled bool) (trace.Tracer, error) {
	if !enabled {
		return noop.NewTracerProvider().Tracer("flowfn-api"), nil
	}

	return otelhelper.NewTracer(ctx, "flowfn-api")
}

// subscribeNodeFailures surfaces failed nodes in the server log so runs
// triggered over HTTP leave a trace beyond the response body.
func subscribeNodeFailures(ctx context.Context, logger *slog.Logger, bus eventbus.EventBus) {
	bus.Handle(events.NodeFailedEvent, func(ctx context.Context, event any) error {
		failed, ok := event.(*events.NodeFailed)
		if !ok {
			return nil
		}

		logger.WarnContext(ctx, "Node failed",
			"run_id", failed.RunID,
			"node_id", failed.NodeID,
			"node_type", failed.NodeType,
			"kind", failed.Kind,
			"message", failed.Message,
		)

		return nil
	})

	if err := bus.Subscribe(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)
	}
}
