package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowfn/flowfn/pkg/cmd"
	"github.com/flowfn/flowfn/pkg/log"
	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/runner"
	"github.com/flowfn/flowfn/pkg/schema"
)

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Execute a flow file once and print the per-node results",
		ArgsUsage: "<flow.json>",
		Flags: []cli.Flag{
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
			logLevelFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("cli")

			graph, err := loadGraphFile(command.Args().First())
			if err != nil {
				return err
			}

			registry := cmd.NewRegistry(logger)
			run := runner.New(registry,
				runner.WithLogger(logger),
				runner.WithWorkers(command.Int("workers")),
				runner.WithNodeTimeout(command.Duration("node-timeout")),
			)

			results := run.Run(ctx, graph)

			return printJSON(results)
		},
	}
}

// loadGraphFile reads a flow file and returns its graph. Both the flow
// envelope (name plus graph) and a bare graph document are accepted.
func loadGraphFile(path string) (models.Graph, error) {
	if path == "" {
		return nil, errors.New("a flow file argument is required")
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}

	if schema.ValidateFlow(body) == nil {
		var flow models.Flow
		if err := json.Unmarshal(body, &flow); err != nil {
			return nil, fmt.Errorf("failed to decode flow file: %w", err)
		}

		return flow.Graph, nil
	}

	if err := schema.ValidateGraph(body); err != nil {
		return nil, fmt.Errorf("%s is neither a valid flow nor a valid graph: %w", path, err)
	}

	var graph models.Graph
	if err := json.Unmarshal(body, &graph); err != nil {
		return nil, fmt.Errorf("failed to decode graph file: %w", err)
	}

	return graph, nil
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}
