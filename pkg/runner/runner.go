// Package runner executes a user-built node graph: it resolves the
// dependency order, runs every node exactly once and reports a write-once
// result record per node. Node failures never abort the run; they are
// captured in the node's record and propagated to its dependents.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flowfn/flowfn/pkg/eventbus"
	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/registry"
)

// Runner evaluates graphs against a registry. It is stateless between runs
// and safe for concurrent use.
type Runner struct {
	registry    *registry.Registry
	logger      *slog.Logger
	bus         eventbus.EventPublisher
	tracer      trace.Tracer
	workers     int
	nodeTimeout time.Duration
}

type Option func(*Runner)

// WithWorkers enables parallel evaluation of mutually-independent nodes.
// Anything below two keeps the sequential scheduler.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithNodeTimeout bounds each node's operation; on expiry the node is
// marked with a TimeoutError and its siblings keep running. Zero disables
// the bound.
func WithNodeTimeout(d time.Duration) Option {
	return func(r *Runner) { r.nodeTimeout = d }
}

// WithEventBus publishes run and node lifecycle events on the bus.
func WithEventBus(bus eventbus.EventPublisher) Option {
	return func(r *Runner) { r.bus = bus }
}

// WithTracer records a span per node execution.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) { r.tracer = tracer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

func New(reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{
		registry: reg,
		logger:   slog.Default(),
		tracer:   noop.NewTracerProvider().Tracer("runner"),
		workers:  1,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run evaluates every node of the graph and returns one terminal result
// record per node id. The graph is treated as read-only; all failures are
// node-scoped and never returned as an error from Run itself.
func (r *Runner) Run(ctx context.Context, graph models.Graph) map[string]*models.ExecutionResult {
	runID := newRunID()
	logger := r.logger.With("run_id", runID, "nodes", len(graph))

	if len(graph) == 0 {
		return map[string]*models.ExecutionResult{}
	}

	start := time.Now()
	logger.Info("Starting graph run")

	ctx, span := r.tracer.Start(ctx, "graph.run")
	defer span.End()

	st := r.buildPlan(graph, runID)

	r.publishRunStarted(ctx, st)
	r.announcePlanFailures(ctx, st)

	if r.workers > 1 && len(st.order) > 1 {
		r.runParallel(ctx, st)
	} else {
		r.runSequential(ctx, st)
	}

	// Every node must leave with a terminal status, whatever happened
	// above. Anything unaccounted for sat behind an unresolvable
	// dependency.
	for id, node := range graph {
		if _, done := st.result(id); !done {
			res := models.NewErrorResult(id, node.Type,
				models.KindCyclicDependency, "node could not be scheduled")
			st.setResult(id, res)
			r.publishNodeFailed(ctx, st, res)
			logger.Warn("Node could not be scheduled", "node_id", id)
		}
	}

	r.publishRunFinished(ctx, st, time.Since(start))
	logger.Info("Finished graph run", "duration", time.Since(start))

	return st.results
}

// announcePlanFailures publishes and logs the error records written during
// planning. Those nodes never reach executeNode, so this is their only
// chance to appear on the event stream.
func (r *Runner) announcePlanFailures(ctx context.Context, st *runState) {
	st.mu.Lock()
	failed := make([]*models.ExecutionResult, 0, len(st.results))

	for _, res := range st.results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	st.mu.Unlock()

	sort.Slice(failed, func(i, j int) bool { return failed[i].NodeID < failed[j].NodeID })

	for _, res := range failed {
		r.publishNodeFailed(ctx, st, res)
		r.logger.Warn("Node failed validation",
			"run_id", st.runID,
			"node_id", res.NodeID,
			"node_type", res.Type,
			"kind", res.Error.Kind,
			"error", res.Error.Message,
		)
	}
}

func (r *Runner) runSequential(ctx context.Context, st *runState) {
	for _, id := range st.order {
		r.executeNode(ctx, st, id)
	}
}

func newRunID() string {
	return fmt.Sprintf("run-%s", uuid.New().String()[:8])
}
