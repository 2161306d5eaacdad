package display_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfn/flowfn/pkg/nodes/display"
)

func TestHandle_CollectsBoundInputsInOrder(t *testing.T) {
	outputs, err := display.Definition().Handler(context.Background(), map[string]any{
		"output1": "first",
		"output2": "",
		"output3": 3.0,
		"output5": "last",
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"first", 3.0, "last"}, outputs["result"])
}

func TestHandle_NothingBound(t *testing.T) {
	outputs, err := display.Definition().Handler(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, outputs["result"])
}

func TestDefinition_VariadicShape(t *testing.T) {
	def := display.Definition()

	assert.Equal(t, 5, def.MaxInputs)
	require.Len(t, def.Inputs, 1)
	assert.Equal(t, "output", def.Inputs[0].Name)
}
