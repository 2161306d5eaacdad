// Package display provides the output panel node. It accepts up to five
// inputs on numbered variadic ports and collects whatever is bound into a
// single renderable payload.
package display

import (
	"context"
	"fmt"

	"github.com/flowfn/flowfn/pkg/models"
)

const (
	Type      = "display"
	BasePort  = "output"
	MaxInputs = 5
)

func handle(_ context.Context, inputs map[string]any) (map[string]any, error) {
	var outputs []any

	for i := 1; i <= MaxInputs; i++ {
		value, ok := inputs[fmt.Sprintf("%s%d", BasePort, i)]
		if !ok || value == nil || value == "" {
			continue
		}

		outputs = append(outputs, value)
	}

	return map[string]any{"result": outputs}, nil
}

// Definition describes the node for the registry.
func Definition() *models.NodeType {
	return &models.NodeType{
		Type:        Type,
		Label:       "Display",
		Description: "Collect up to five upstream values for the output panel.",
		Mode:        models.VariadicPorts,
		MaxInputs:   MaxInputs,
		Inputs: []models.InputPort{
			{Name: BasePort, Type: "any", Description: "Value to display"},
		},
		Outputs: []models.OutputPort{
			{Name: "result", Type: "list", Description: "Bound values in port order"},
		},
		Handler: handle,
	}
}
