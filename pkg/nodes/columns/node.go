// Package columns provides the column selection node.
package columns

import (
	"context"
	"strings"

	"github.com/flowfn/flowfn/pkg/dataset"
	"github.com/flowfn/flowfn/pkg/models"
)

const (
	Type         = "columns"
	InputTable   = "table"
	InputColumns = "columns"
)

func handle(_ context.Context, inputs map[string]any) (map[string]any, error) {
	table, err := dataset.FromAny(inputs[InputTable])
	if err != nil {
		return nil, err
	}

	spec, _ := inputs[InputColumns].(string)

	names := splitColumns(spec)
	if len(names) == 0 {
		return map[string]any{"result": table}, nil
	}

	selected, err := table.Select(names)
	if err != nil {
		return nil, err
	}

	return map[string]any{"result": selected}, nil
}

func splitColumns(spec string) []string {
	var names []string

	for _, part := range strings.Split(spec, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// Definition describes the node for the registry.
func Definition() *models.NodeType {
	return &models.NodeType{
		Type:        Type,
		Label:       "Select columns",
		Description: "Keep only the named columns of a table. Leave empty to pass the table through.",
		Inputs: []models.InputPort{
			{Name: InputTable, Type: "table", Description: "Input table"},
			{Name: InputColumns, Type: "string", Description: "Comma separated column names", Default: ""},
		},
		Outputs: []models.OutputPort{
			{Name: "result", Type: "table", Description: "Table restricted to the selected columns"},
		},
		Handler: handle,
	}
}
