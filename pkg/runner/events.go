package runner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowfn/flowfn/pkg/eventbus"
	"github.com/flowfn/flowfn/pkg/events"
	"github.com/flowfn/flowfn/pkg/models"
)

func (r *Runner) publish(ctx context.Context, event eventbus.Event) {
	if r.bus == nil {
		return
	}

	if err := r.bus.Publish(ctx, event); err != nil {
		r.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func baseEvent(st *runState, eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		RunID:     st.runID,
		Timestamp: time.Now().UTC(),
	}
}

func (r *Runner) publishRunStarted(ctx context.Context, st *runState) {
	r.publish(ctx, events.RunStarted{
		BaseEvent: baseEvent(st, events.RunStartedEvent),
		NodeCount: len(st.graph),
	})
}

func (r *Runner) publishRunFinished(ctx context.Context, st *runState, duration time.Duration) {
	if r.bus == nil {
		return
	}

	var succeeded, failed int

	st.mu.Lock()
	for _, res := range st.results {
		if res.Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	st.mu.Unlock()

	r.publish(ctx, events.RunFinished{
		BaseEvent: baseEvent(st, events.RunFinishedEvent),
		Duration:  duration,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

func (r *Runner) publishNodeStarted(ctx context.Context, st *runState, node *models.GraphNode) {
	r.publish(ctx, events.NodeStarted{
		BaseEvent: baseEvent(st, events.NodeStartedEvent),
		NodeID:    node.ID,
		NodeType:  node.Type,
	})
}

func (r *Runner) publishNodeFinished(ctx context.Context, st *runState, node *models.GraphNode, duration time.Duration) {
	r.publish(ctx, events.NodeFinished{
		BaseEvent: baseEvent(st, events.NodeFinishedEvent),
		NodeID:    node.ID,
		NodeType:  node.Type,
		Duration:  duration,
	})
}

func (r *Runner) publishNodeFailed(ctx context.Context, st *runState, res *models.ExecutionResult) {
	r.publish(ctx, events.NodeFailed{
		BaseEvent: baseEvent(st, events.NodeFailedEvent),
		NodeID:    res.NodeID,
		NodeType:  res.Type,
		Kind:      res.Error.Kind,
		Message:   res.Error.Message,
	})
}
