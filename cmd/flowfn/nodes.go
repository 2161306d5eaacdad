package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/flowfn/flowfn/pkg/cmd"
	"github.com/flowfn/flowfn/pkg/log"
)

func NodesCommand() *cli.Command {
	return &cli.Command{
		Name:    "nodes",
		Aliases: []string{"n"},
		Usage:   "List the built-in node catalog",
		Flags: []cli.Flag{
			logLevelFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("cli")

			registry := cmd.NewRegistry(logger)

			for _, nodeType := range registry.NodeTypes() {
				fmt.Printf("%-12s %-20s %s\n", nodeType.Type, nodeType.Label, nodeType.Description)

				for _, port := range nodeType.Inputs {
					line := fmt.Sprintf("  in  %s (%s)", port.Name, port.Type)
					if len(port.Choices) > 0 {
						line += fmt.Sprintf(" choices=%v", port.Choices)
					}

					if port.Default != nil {
						line += fmt.Sprintf(" default=%v", port.Default)
					}

					fmt.Println(line)
				}

				for _, port := range nodeType.Outputs {
					fmt.Printf("  out %s (%s)\n", port.Name, port.Type)
				}
			}

			return nil
		},
	}
}
