// Package textnote provides the templated note node. Its input ports are
// derived from the placeholders of the template body, so the editor grows a
// port per `{{.name}}` the user types.
package textnote

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/flowfn/flowfn/pkg/models"
)

const (
	Type          = "textnote"
	InputTemplate = "template"
)

func handle(_ context.Context, inputs map[string]any) (map[string]any, error) {
	body, _ := inputs[InputTemplate].(string)

	tmpl, err := template.New(Type).Option("missingkey=zero").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	data := make(map[string]any, len(inputs))
	for name, value := range inputs {
		if name == InputTemplate {
			continue
		}

		data[name] = value
	}

	var rendered strings.Builder
	if err := tmpl.Execute(&rendered, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return map[string]any{"result": rendered.String()}, nil
}

// Definition describes the node for the registry.
func Definition() *models.NodeType {
	return &models.NodeType{
		Type:         Type,
		Label:        "Text note",
		Description:  "Render a Go text/template. Each {{.name}} placeholder becomes an input port.",
		Mode:         models.TemplateDerivedPorts,
		TemplatePort: InputTemplate,
		Inputs: []models.InputPort{
			{Name: InputTemplate, Type: "string", Description: "Template body", Default: ""},
		},
		Outputs: []models.OutputPort{
			{Name: "result", Type: "string", Description: "Rendered text"},
		},
		Handler: handle,
	}
}
