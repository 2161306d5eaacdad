// Package file provides a filesystem-backed flow repository. One JSON
// file per flow under a root directory, which doubles as the sample flow
// directory shipped with the binaries.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/persistence"
)

// FlowRepository stores flows as JSON files.
type FlowRepository struct {
	root string
}

// NewFlowRepository creates a repository rooted at the given directory.
func NewFlowRepository(root string) *FlowRepository {
	return &FlowRepository{root: root}
}

// flowPath maps a flow id to its file. Ids come straight from URL params,
// so anything that could escape the root directory is rejected.
func (fr *FlowRepository) flowPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid flow id %q", id)
	}

	return filepath.Join(fr.root, id+".json"), nil
}

// Save writes the flow to disk, stamping timestamps.
func (fr *FlowRepository) Save(_ context.Context, flow *models.Flow) error {
	path, err := fr.flowPath(flow.ID)
	if err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	if err := os.MkdirAll(fr.root, 0750); err != nil {
		return fmt.Errorf("failed to create flows directory: %w", err)
	}

	now := time.Now().UTC()
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	return os.WriteFile(path, data, 0600)
}

// GetByID loads a flow by its identifier.
func (fr *FlowRepository) GetByID(_ context.Context, id string) (*models.Flow, error) {
	path, err := fr.flowPath(id)
	if err != nil {
		return nil, persistence.NewFlowError("GetByID", id, err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewFlowError("GetByID", id, persistence.ErrFlowNotFound)
		}

		return nil, persistence.NewFlowError("GetByID", id, err)
	}

	var flow models.Flow
	if err := json.Unmarshal(body, &flow); err != nil {
		return nil, persistence.NewFlowError("GetByID", id, err)
	}

	if flow.ID == "" {
		flow.ID = id
	}

	return &flow, nil
}

// List returns every stored flow sorted by name.
func (fr *FlowRepository) List(ctx context.Context) ([]*models.Flow, error) {
	entries, err := fs.Glob(os.DirFS(fr.root), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	flows := make([]*models.Flow, 0, len(entries))

	for _, entry := range entries {
		id := entry[:len(entry)-len(".json")]

		flow, err := fr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		flows = append(flows, flow)
	}

	sort.Slice(flows, func(i, j int) bool { return flows[i].Name < flows[j].Name })

	return flows, nil
}

// Delete removes a stored flow.
func (fr *FlowRepository) Delete(_ context.Context, id string) error {
	path, err := fr.flowPath(id)
	if err != nil {
		return persistence.NewFlowError("Delete", id, err)
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return persistence.NewFlowError("Delete", id, persistence.ErrFlowNotFound)
		}

		return persistence.NewFlowError("Delete", id, err)
	}

	return nil
}

// Close is a no-op for the file backend.
func (fr *FlowRepository) Close() error {
	return nil
}
