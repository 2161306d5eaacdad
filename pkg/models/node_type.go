// Package models defines the core domain models for node-graph execution.
package models

import "context"

// PortsMode describes how a node type's input ports are determined.
type PortsMode string

const (
	// FixedPorts means the input ports are exactly the declared ones.
	FixedPorts PortsMode = "fixed"
	// VariadicPorts means input ports are numbered copies of a base port,
	// materialized up to MaxInputs at resolution time.
	VariadicPorts PortsMode = "variadic"
	// TemplateDerivedPorts means input ports are derived from the
	// placeholders of a template bound to the node's template port.
	TemplateDerivedPorts PortsMode = "template"
)

// InputPort describes one typed input of a node type.
type InputPort struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

// OutputPort describes one typed output of a node type.
type OutputPort struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Handler is the executable operation behind a node type. Inputs are keyed
// by input port name, outputs by output port name.
type Handler func(ctx context.Context, inputs map[string]any) (map[string]any, error)

// NodeType is one entry of the node registry. Immutable after registration.
type NodeType struct {
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Inputs      []InputPort  `json:"inputs"`
	Outputs     []OutputPort `json:"outputs"`
	Mode        PortsMode    `json:"mode"`

	// MaxInputs caps the materialized ports of a variadic node type.
	MaxInputs int `json:"max_inputs,omitempty"`
	// TemplatePort names the input port whose literal holds the template
	// body for template-derived node types.
	TemplatePort string `json:"template_port,omitempty"`

	Handler Handler `json:"-"`
}

// HasOutput reports whether the type declares an output port with the name.
func (nt *NodeType) HasOutput(name string) bool {
	for _, p := range nt.Outputs {
		if p.Name == name {
			return true
		}
	}

	return false
}

// InputByName returns the declared input port with the name, if any.
func (nt *NodeType) InputByName(name string) (InputPort, bool) {
	for _, p := range nt.Inputs {
		if p.Name == name {
			return p, true
		}
	}

	return InputPort{}, false
}
