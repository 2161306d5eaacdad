package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowfn/flowfn/pkg/persistence"
	"github.com/flowfn/flowfn/pkg/persistence/file"
	"github.com/flowfn/flowfn/pkg/persistence/postgresql"
	"github.com/flowfn/flowfn/pkg/persistence/redis"
)

// NewFlowRepository picks a storage backend from the URL scheme:
// postgres://, redis://, or file:// (also the default for bare paths).
func NewFlowRepository(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.FlowRepository {
	scheme, _, _ := strings.Cut(databaseURL, "://")

	switch scheme {
	case "postgres", "postgresql":
		repo, err := postgresql.NewFlowRepository(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create postgres flow repository: %w", err))
		}

		return repo
	case "redis", "rediss":
		repo, err := redis.NewFlowRepository(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create redis flow repository: %w", err))
		}

		return repo
	default:
		return file.NewFlowRepository(strings.TrimPrefix(databaseURL, "file://"))
	}
}
