// Package aggregate provides the group-and-aggregate node.
package aggregate

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowfn/flowfn/pkg/dataset"
	"github.com/flowfn/flowfn/pkg/models"
)

const (
	Type             = "aggregate"
	InputTable       = "table"
	InputGroupBy     = "groupby"
	InputAggregation = "aggregation"
)

func handle(_ context.Context, inputs map[string]any) (map[string]any, error) {
	table, err := dataset.FromAny(inputs[InputTable])
	if err != nil {
		return nil, err
	}

	spec, _ := inputs[InputGroupBy].(string)

	var groupBy []string

	for _, part := range strings.Split(spec, ",") {
		if name := strings.TrimSpace(part); name != "" {
			groupBy = append(groupBy, name)
		}
	}

	if len(groupBy) == 0 {
		return nil, fmt.Errorf("no groupby columns given")
	}

	agg, _ := inputs[InputAggregation].(string)

	out, err := table.GroupAggregate(groupBy, dataset.Aggregation(agg))
	if err != nil {
		return nil, err
	}

	return map[string]any{"result": out}, nil
}

// Definition describes the node for the registry.
func Definition() *models.NodeType {
	return &models.NodeType{
		Type:        Type,
		Label:       "Group and aggregate",
		Description: "Group rows by comma separated columns and reduce every numeric column.",
		Inputs: []models.InputPort{
			{Name: InputTable, Type: "table", Description: "Input table"},
			{Name: InputGroupBy, Type: "string", Description: "Comma separated group columns"},
			{
				Name:        InputAggregation,
				Type:        "string",
				Description: "Reduction applied to each numeric column",
				Default:     string(dataset.AggMean),
				Choices:     dataset.Aggregations(),
			},
		},
		Outputs: []models.OutputPort{
			{Name: "result", Type: "table", Description: "One row per group"},
		},
		Handler: handle,
	}
}
