// Package cmd provides common initialization for the command-line
// binaries: registry, flow storage and event bus construction.
package cmd

import (
	"log/slog"

	"github.com/flowfn/flowfn/pkg/registry"
)

// NewRegistry builds the built-in node catalog, failing fast on a broken
// definition.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg, err := registry.Default(logger)
	if err != nil {
		panic(err)
	}

	return reg
}
