package registry

import (
	"log/slog"

	"github.com/flowfn/flowfn/pkg/nodes/aggregate"
	"github.com/flowfn/flowfn/pkg/nodes/columns"
	"github.com/flowfn/flowfn/pkg/nodes/describe"
	"github.com/flowfn/flowfn/pkg/nodes/display"
	"github.com/flowfn/flowfn/pkg/nodes/sampledata"
	"github.com/flowfn/flowfn/pkg/nodes/textnote"
)

// Default builds a registry holding the built-in node catalog.
func Default(logger *slog.Logger) (*Registry, error) {
	return New(logger,
		sampledata.New(nil, nil).Definition(),
		columns.Definition(),
		aggregate.Definition(),
		describe.Definition(),
		textnote.Definition(),
		display.Definition(),
	)
}
