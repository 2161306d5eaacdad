package registry

import (
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/flowfn/flowfn/pkg/models"
)

// PortsForNode resolves the effective input ports of a graph node. Fixed
// types return their declared ports; variadic types materialize numbered
// copies of the base port; template-derived types parse the template bound
// to the node's template port and turn each placeholder into a port.
func (r *Registry) PortsForNode(node *models.GraphNode) ([]models.InputPort, error) {
	nt, err := r.GetNode(node.Type)
	if err != nil {
		return nil, err
	}

	switch nt.Mode {
	case models.VariadicPorts:
		return variadicPorts(nt), nil
	case models.TemplateDerivedPorts:
		return templatePorts(nt, node)
	default:
		return nt.Inputs, nil
	}
}

func variadicPorts(nt *models.NodeType) []models.InputPort {
	if len(nt.Inputs) == 0 {
		return nil
	}

	base := nt.Inputs[0]
	max := nt.MaxInputs
	if max <= 0 {
		max = 1
	}

	ports := make([]models.InputPort, 0, max)
	for i := 1; i <= max; i++ {
		p := base
		p.Name = fmt.Sprintf("%s%d", base.Name, i)
		// Only the first slot is required; the rest default to empty.
		if i > 1 && p.Default == nil {
			p.Default = ""
		}

		ports = append(ports, p)
	}

	return ports
}

func templatePorts(nt *models.NodeType, node *models.GraphNode) ([]models.InputPort, error) {
	templatePort := nt.TemplatePort
	if templatePort == "" {
		templatePort = "template"
	}

	ports := []models.InputPort{{Name: templatePort, Type: "string"}}

	binding, ok := node.Inputs[templatePort]
	if !ok || binding.IsRef() {
		// No template configured yet (or it arrives from upstream, in
		// which case ports cannot be derived ahead of time).
		return ports, nil
	}

	body, ok := binding.Literal.(string)
	if !ok {
		return nil, fmt.Errorf("node %q: template port %q must hold a string", node.ID, templatePort)
	}

	names, err := templateFields(body)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", node.ID, err)
	}

	for _, name := range names {
		// A placeholder must not shadow the port the template arrives on.
		if strings.EqualFold(name, templatePort) {
			return nil, fmt.Errorf("node %q: placeholder %q conflicts with the template port", node.ID, name)
		}

		ports = append(ports, models.InputPort{Name: name, Type: "string"})
	}

	return ports, nil
}

// templateFields extracts the top-level field names referenced by a
// text/template body, in order of first appearance.
func templateFields(body string) ([]string, error) {
	tmpl, err := template.New("ports").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	var (
		names []string
		seen  = make(map[string]struct{})
	)

	var walk func(n parse.Node)
	walk = func(n parse.Node) {
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return
			}
			for _, child := range n.Nodes {
				walk(child)
			}
		case *parse.ActionNode:
			walk(n.Pipe)
		case *parse.PipeNode:
			for _, cmd := range n.Cmds {
				for _, arg := range cmd.Args {
					walk(arg)
				}
			}
		case *parse.FieldNode:
			if len(n.Ident) == 0 {
				return
			}
			name := n.Ident[0]
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		case *parse.IfNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.RangeNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.WithNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		}
	}

	walk(tmpl.Root)

	return names, nil
}
