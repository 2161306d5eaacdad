package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfn/flowfn/pkg/models"
)

func noopHandler(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{"result": nil}, nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestNew_RejectsDuplicateTypes(t *testing.T) {
	_, err := New(testLogger(),
		&models.NodeType{Type: "echo", Handler: noopHandler},
		&models.NodeType{Type: "echo", Handler: noopHandler},
	)

	var dup *DuplicateTypeError

	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "echo", dup.Type)
	assert.Equal(t, models.KindDuplicateType, dup.Kind())
}

func TestNew_RejectsMissingHandler(t *testing.T) {
	_, err := New(testLogger(), &models.NodeType{Type: "echo"})
	require.Error(t, err)
}

func TestGetNode_UnknownType(t *testing.T) {
	r, err := New(testLogger())
	require.NoError(t, err)

	_, err = r.GetNode("ghost")

	var unknown *UnknownTypeError

	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, models.KindUnknownType, unknown.Kind())
}

func TestNew_ImplicitSingleOutput(t *testing.T) {
	r, err := New(testLogger(), &models.NodeType{Type: "echo", Handler: noopHandler})
	require.NoError(t, err)

	nt, err := r.GetNode("echo")
	require.NoError(t, err)
	require.Len(t, nt.Outputs, 1)
	assert.Equal(t, "result", nt.Outputs[0].Name)
	assert.True(t, nt.HasOutput("result"))
	assert.False(t, nt.HasOutput("other"))
	assert.Equal(t, models.FixedPorts, nt.Mode)
}

func TestPortsForNode_Fixed(t *testing.T) {
	r, err := New(testLogger(), &models.NodeType{
		Type:    "agg",
		Inputs:  []models.InputPort{{Name: "df", Type: "table"}, {Name: "groupby", Type: "string"}},
		Handler: noopHandler,
	})
	require.NoError(t, err)

	ports, err := r.PortsForNode(&models.GraphNode{ID: "n", Type: "agg"})
	require.NoError(t, err)
	require.Len(t, ports, 2)
	assert.Equal(t, "df", ports[0].Name)
}

func TestPortsForNode_Variadic(t *testing.T) {
	r, err := New(testLogger(), &models.NodeType{
		Type:      "display",
		Mode:      models.VariadicPorts,
		MaxInputs: 5,
		Inputs:    []models.InputPort{{Name: "output", Type: "any"}},
		Handler:   noopHandler,
	})
	require.NoError(t, err)

	ports, err := r.PortsForNode(&models.GraphNode{ID: "n", Type: "display"})
	require.NoError(t, err)
	require.Len(t, ports, 5)
	assert.Equal(t, "output1", ports[0].Name)
	assert.Equal(t, "output5", ports[4].Name)
	assert.Nil(t, ports[0].Default)
	assert.Equal(t, "", ports[1].Default)
}

func TestPortsForNode_TemplateDerived(t *testing.T) {
	r, err := New(testLogger(), &models.NodeType{
		Type:         "textnote",
		Mode:         models.TemplateDerivedPorts,
		TemplatePort: "template",
		Inputs:       []models.InputPort{{Name: "template", Type: "string"}},
		Handler:      noopHandler,
	})
	require.NoError(t, err)

	node := &models.GraphNode{
		ID:   "note",
		Type: "textnote",
		Inputs: map[string]models.Binding{
			"template": models.LiteralBinding("{{.title}}: {{.body}} ({{.title}})"),
		},
	}

	ports, err := r.PortsForNode(node)
	require.NoError(t, err)
	require.Len(t, ports, 3)
	assert.Equal(t, "template", ports[0].Name)
	assert.Equal(t, "title", ports[1].Name)
	assert.Equal(t, "body", ports[2].Name)
}

func TestPortsForNode_TemplateUnset(t *testing.T) {
	r, err := New(testLogger(), &models.NodeType{
		Type:    "textnote",
		Mode:    models.TemplateDerivedPorts,
		Inputs:  []models.InputPort{{Name: "template", Type: "string"}},
		Handler: noopHandler,
	})
	require.NoError(t, err)

	ports, err := r.PortsForNode(&models.GraphNode{ID: "note", Type: "textnote"})
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Equal(t, "template", ports[0].Name)
}

func TestPortsForNode_TemplateInvalid(t *testing.T) {
	r, err := New(testLogger(), &models.NodeType{
		Type:    "textnote",
		Mode:    models.TemplateDerivedPorts,
		Inputs:  []models.InputPort{{Name: "template", Type: "string"}},
		Handler: noopHandler,
	})
	require.NoError(t, err)

	node := &models.GraphNode{
		ID:   "note",
		Type: "textnote",
		Inputs: map[string]models.Binding{
			"template": models.LiteralBinding("{{.unterminated"),
		},
	}

	_, err = r.PortsForNode(node)
	require.Error(t, err)
}

func TestPortsForNode_PlaceholderShadowsCustomTemplatePort(t *testing.T) {
	r, err := New(testLogger(), &models.NodeType{
		Type:         "banner",
		Mode:         models.TemplateDerivedPorts,
		TemplatePort: "body",
		Inputs:       []models.InputPort{{Name: "body", Type: "string"}},
		Handler:      noopHandler,
	})
	require.NoError(t, err)

	node := &models.GraphNode{
		ID:   "n",
		Type: "banner",
		Inputs: map[string]models.Binding{
			"body": models.LiteralBinding("{{.title}} {{.body}}"),
		},
	}

	_, err = r.PortsForNode(node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"body"`)
}

func TestPortsForNode_TemplateNameFreeWithCustomPort(t *testing.T) {
	r, err := New(testLogger(), &models.NodeType{
		Type:         "banner",
		Mode:         models.TemplateDerivedPorts,
		TemplatePort: "body",
		Inputs:       []models.InputPort{{Name: "body", Type: "string"}},
		Handler:      noopHandler,
	})
	require.NoError(t, err)

	node := &models.GraphNode{
		ID:   "n",
		Type: "banner",
		Inputs: map[string]models.Binding{
			"body": models.LiteralBinding("{{.template}}"),
		},
	}

	ports, err := r.PortsForNode(node)
	require.NoError(t, err)
	require.Len(t, ports, 2)
	assert.Equal(t, "body", ports[0].Name)
	assert.Equal(t, "template", ports[1].Name)
}

func TestEditorConfig(t *testing.T) {
	r, err := New(testLogger(),
		&models.NodeType{Type: "b", Label: "B", Description: "second", Handler: noopHandler},
		&models.NodeType{Type: "a", Label: "A", Description: "first", Handler: noopHandler},
	)
	require.NoError(t, err)

	cfg := r.EditorConfig()
	nodes, ok := cfg["nodes"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0]["type"])
	assert.Equal(t, "first", nodes[0]["description"])
	assert.Equal(t, "b", nodes[1]["type"])
}
