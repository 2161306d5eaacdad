// Package persistence defines flow storage and the standard error types
// its implementations share.
package persistence

import (
	"context"

	"github.com/flowfn/flowfn/pkg/models"
)

// FlowRepository stores saved flows. Implementations must be safe for
// concurrent use.
type FlowRepository interface {
	Save(ctx context.Context, flow *models.Flow) error
	GetByID(ctx context.Context, id string) (*models.Flow, error)
	List(ctx context.Context) ([]*models.Flow, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
