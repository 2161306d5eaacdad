package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PortRef points at the output port of another node in the same graph.
type PortRef struct {
	Node string `json:"node"`
	Port string `json:"port"`
}

// Binding is the value of one input port: either a literal or a reference
// to another node's output. On the wire a reference is
// {"node": "...", "port": "..."} and a literal is the value itself; the
// shape must round-trip unchanged through save/load.
type Binding struct {
	Literal any
	Ref     *PortRef
}

// IsRef reports whether the binding references another node's output.
func (b Binding) IsRef() bool {
	return b.Ref != nil
}

// LiteralBinding wraps a plain value as a binding.
func LiteralBinding(v any) Binding {
	return Binding{Literal: v}
}

// RefBinding builds a reference binding to a node's output port.
func RefBinding(node, port string) Binding {
	return Binding{Ref: &PortRef{Node: node, Port: port}}
}

func (b Binding) MarshalJSON() ([]byte, error) {
	if b.Ref != nil {
		return json.Marshal(b.Ref)
	}

	return json.Marshal(b.Literal)
}

func (b *Binding) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err == nil {
		nodeRaw, hasNode := probe["node"]
		portRaw, hasPort := probe["port"]
		if hasNode && hasPort && len(probe) == 2 {
			var ref PortRef
			if json.Unmarshal(nodeRaw, &ref.Node) == nil && json.Unmarshal(portRaw, &ref.Port) == nil {
				b.Ref = &ref
				b.Literal = nil

				return nil
			}
		}
	}

	b.Ref = nil

	return json.Unmarshal(data, &b.Literal)
}

// GraphNode is one node instance placed in a user graph.
type GraphNode struct {
	ID     string             `json:"-"`
	Type   string             `json:"type" validate:"required"`
	Inputs map[string]Binding `json:"inputs"`
}

// Graph maps node IDs to their nodes. The runner treats it as read-only.
type Graph map[string]*GraphNode

// UnmarshalJSON fills in each node's ID from its map key so callers can
// pass nodes around individually.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw map[string]*GraphNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for id, node := range raw {
		if node == nil {
			return fmt.Errorf("node %q: null node", id)
		}

		node.ID = id
	}

	*g = raw

	return nil
}

// NodeIDs returns the graph's node IDs in sorted order.
func (g Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Validate checks structural invariants that do not need the registry:
// non-empty types and reference bindings that name nodes present in the
// graph. Violations are returned as one error per offending node input.
func (g Graph) Validate() []error {
	var errs []error

	for _, id := range g.NodeIDs() {
		node := g[id]
		if node.Type == "" {
			errs = append(errs, fmt.Errorf("node %q: missing type", id))
		}

		for port, binding := range node.Inputs {
			if !binding.IsRef() {
				continue
			}

			if _, ok := g[binding.Ref.Node]; !ok {
				errs = append(errs, fmt.Errorf("node %q: input %q references unknown node %q", id, port, binding.Ref.Node))
			}
		}
	}

	return errs
}
