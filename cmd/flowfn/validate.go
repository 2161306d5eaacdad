package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/flowfn/flowfn/pkg/cmd"
	"github.com/flowfn/flowfn/pkg/log"
)

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a flow file against the schema and the node catalog",
		ArgsUsage: "<flow.json>",
		Flags: []cli.Flag{
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

			issues := make([]string, 0)

			for _, err := range graph.Validate() {
				issues = append(issues, err.Error())
			}

			for _, id := range graph.NodeIDs() {
				node := graph[id]

				if _, err := registry.GetNode(node.Type); err != nil {
					issues = append(issues, fmt.Sprintf("node %q: %v", id, err))

					continue
				}

				if _, err := registry.PortsForNode(node); err != nil {
					issues = append(issues, err.Error())
				}
			}

			if len(issues) > 0 {
				for _, issue := range issues {
					fmt.Println(issue)
				}

				return fmt.Errorf("%d validation issue(s)", len(issues))
			}

			fmt.Println("OK")

			return nil
		},
	}
}
