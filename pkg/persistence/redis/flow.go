// Package redis provides a Redis-backed flow repository, the server-side
// counterpart of the editor's browser-local save slot.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/persistence"
)

const keyPrefix = "flowfn:flow:"

// FlowRepository stores flows as JSON values in Redis.
type FlowRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewFlowRepository connects to Redis using a redis:// URL and pings it.
func NewFlowRepository(ctx context.Context, logger *slog.Logger, redisURL string) (*FlowRepository, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &FlowRepository{client: client, logger: logger}, nil
}

func flowKey(id string) string {
	return keyPrefix + id
}

func stampTimestamps(flow *models.Flow) {
	now := time.Now().UTC()
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now
}

// Save writes the flow under its key, stamping timestamps.
func (r *FlowRepository) Save(ctx context.Context, flow *models.Flow) error {
	stampTimestamps(flow)

	data, err := json.Marshal(flow)
	if err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	if err := r.client.Set(ctx, flowKey(flow.ID), data, 0).Err(); err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	return nil
}

// GetByID loads a flow by its identifier.
func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	data, err := r.client.Get(ctx, flowKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewFlowError("GetByID", id, persistence.ErrFlowNotFound)
		}

		return nil, persistence.NewFlowError("GetByID", id, err)
	}

	var flow models.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, persistence.NewFlowError("GetByID", id, err)
	}

	return &flow, nil
}

// List returns every stored flow sorted by name.
func (r *FlowRepository) List(ctx context.Context) ([]*models.Flow, error) {
	flows := make([]*models.Flow, 0)

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(keyPrefix):]

		flow, err := r.GetByID(ctx, id)
		if err != nil {
			// The key may expire between scan and fetch.
			if persistence.IsFlowNotFound(err) {
				continue
			}

			return nil, err
		}

		flows = append(flows, flow)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan flows: %w", err)
	}

	sort.Slice(flows, func(i, j int) bool { return flows[i].Name < flows[j].Name })

	return flows, nil
}

// Delete removes a stored flow.
func (r *FlowRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, flowKey(id)).Result()
	if err != nil {
		return persistence.NewFlowError("Delete", id, err)
	}

	if deleted == 0 {
		return persistence.NewFlowError("Delete", id, persistence.ErrFlowNotFound)
	}

	return nil
}

// Close closes the Redis connection.
func (r *FlowRepository) Close() error {
	return r.client.Close()
}
