// Package describe provides the summary statistics node.
package describe

import (
	"context"

	"github.com/flowfn/flowfn/pkg/dataset"
	"github.com/flowfn/flowfn/pkg/models"
)

const (
	Type       = "describe"
	InputTable = "table"
)

func handle(_ context.Context, inputs map[string]any) (map[string]any, error) {
	table, err := dataset.FromAny(inputs[InputTable])
	if err != nil {
		return nil, err
	}

	return map[string]any{"result": table.Describe()}, nil
}

// Definition describes the node for the registry.
func Definition() *models.NodeType {
	return &models.NodeType{
		Type:        Type,
		Label:       "Describe table",
		Description: "Summary statistics for every numeric column.",
		Inputs: []models.InputPort{
			{Name: InputTable, Type: "table", Description: "Input table"},
		},
		Outputs: []models.OutputPort{
			{Name: "result", Type: "table", Description: "One row per numeric column"},
		},
		Handler: handle,
	}
}
