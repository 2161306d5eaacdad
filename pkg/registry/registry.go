// Package registry holds the static catalog of node types available to the
// editor and the job runner.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/flowfn/flowfn/pkg/models"
)

// DuplicateTypeError is returned when two definitions share a type name.
// Registry construction fails fast; no partial registry is ever built.
type DuplicateTypeError struct {
	Type string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("node type %q registered twice", e.Type)
}

func (e *DuplicateTypeError) Kind() models.ErrorKind {
	return models.KindDuplicateType
}

// UnknownTypeError is returned when a lookup names a type that was never
// registered.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("node type %q not registered", e.Type)
}

func (e *UnknownTypeError) Kind() models.ErrorKind {
	return models.KindUnknownType
}

// Registry is a read-only lookup table from type name to node type. It is
// safe to share across concurrent runs.
type Registry struct {
	logger *slog.Logger
	types  map[string]*models.NodeType
}

// New builds a registry from the given definitions. Definitions without a
// handler or with a duplicate type name are rejected.
func New(logger *slog.Logger, defs ...*models.NodeType) (*Registry, error) {
	r := &Registry{
		logger: logger,
		types:  make(map[string]*models.NodeType, len(defs)),
	}

	for _, def := range defs {
		if err := r.add(def); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) add(def *models.NodeType) error {
	if def.Type == "" {
		return fmt.Errorf("node type with empty name")
	}

	if def.Handler == nil {
		return fmt.Errorf("node type %q has no handler", def.Type)
	}

	if _, exists := r.types[def.Type]; exists {
		return &DuplicateTypeError{Type: def.Type}
	}

	if def.Mode == "" {
		def.Mode = models.FixedPorts
	}

	if len(def.Outputs) == 0 {
		// Single implicit output when none is declared.
		def.Outputs = []models.OutputPort{{Name: "result", Type: "any"}}
	}

	r.types[def.Type] = def
	r.logger.Debug("Registered node type", "type", def.Type, "mode", def.Mode)

	return nil
}

// GetNode returns the node type for the name.
func (r *Registry) GetNode(typeName string) (*models.NodeType, error) {
	nt, ok := r.types[typeName]
	if !ok {
		return nil, &UnknownTypeError{Type: typeName}
	}

	return nt, nil
}

// NodeTypes returns every registered type, sorted by type name.
func (r *Registry) NodeTypes() []*models.NodeType {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}

	sort.Strings(names)

	out := make([]*models.NodeType, 0, len(names))
	for _, name := range names {
		out = append(out, r.types[name])
	}

	return out
}

// EditorConfig is the serializable catalog handed to the node editor: every
// type with its ports, defaults, choices and help text.
func (r *Registry) EditorConfig() map[string]any {
	nodes := make([]map[string]any, 0, len(r.types))

	for _, nt := range r.NodeTypes() {
		nodes = append(nodes, map[string]any{
			"type":        nt.Type,
			"label":       nt.Label,
			"description": nt.Description,
			"mode":        nt.Mode,
			"inputs":      nt.Inputs,
			"outputs":     nt.Outputs,
		})
	}

	return map[string]any{"nodes": nodes}
}
