//go:build integration

package redis_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/persistence"
	redisrepo "github.com/flowfn/flowfn/pkg/persistence/redis"
)

func setupRepo(t *testing.T) (*redisrepo.FlowRepository, context.Context) {
	t.Helper()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()

	repo, err := redisrepo.NewFlowRepository(ctx, slog.Default(), redisURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		flows, err := repo.List(ctx)
		require.NoError(t, err)

		for _, flow := range flows {
			_ = repo.Delete(ctx, flow.ID)
		}

		require.NoError(t, repo.Close())
	})

	return repo, ctx
}

func TestFlowRepository_Lifecycle(t *testing.T) {
	repo, ctx := setupRepo(t)

	flow := &models.Flow{
		ID:   "flow-redis-1",
		Name: "Countries demo",
		Graph: models.Graph{
			"data": &models.GraphNode{
				ID:   "data",
				Type: "sampledata",
				Inputs: map[string]models.Binding{
					"dataset": models.LiteralBinding("countries"),
				},
			},
		},
	}

	require.NoError(t, repo.Save(ctx, flow))

	loaded, err := repo.GetByID(ctx, "flow-redis-1")
	require.NoError(t, err)
	assert.Equal(t, "Countries demo", loaded.Name)

	flows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, flows, 1)

	require.NoError(t, repo.Delete(ctx, "flow-redis-1"))

	_, err = repo.GetByID(ctx, "flow-redis-1")
	assert.True(t, persistence.IsFlowNotFound(err))

	err = repo.Delete(ctx, "flow-redis-1")
	assert.True(t, persistence.IsFlowNotFound(err))
}
