package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/otelhelper"
)

// executeNode takes one scheduled node to its terminal result. All of its
// dependencies are guaranteed to have terminal results already.
func (r *Runner) executeNode(ctx context.Context, st *runState, id string) {
	if _, done := st.result(id); done {
		// Failed validation during planning; nothing to invoke.
		return
	}

	node := st.graph[id]
	logger := r.logger.With("run_id", st.runID, "node_id", id, "node_type", node.Type)

	// A failed dependency poisons this node without invoking it.
	for _, dep := range st.deps[id] {
		if depRes, ok := st.result(dep); ok && depRes.Failed() {
			res := models.NewErrorResult(id, node.Type, models.KindUpstreamFailure,
				fmt.Sprintf("upstream node %q failed", dep))
			st.setResult(id, res)
			r.publishNodeFailed(ctx, st, res)
			logger.Warn("Skipping node, upstream failed", "upstream", dep)

			return
		}
	}

	nt, err := r.registry.GetNode(node.Type)
	if err != nil {
		// Unknown types are caught during planning; this is unreachable
		// unless the registry changed mid-run.
		st.setResult(id, models.NewErrorResult(id, node.Type, models.KindUnknownType, err.Error()))

		return
	}

	inputs, err := r.resolveInputs(st, node)
	if err != nil {
		res := models.NewErrorResult(id, node.Type, models.KindOperationError, err.Error())
		st.setResult(id, res)
		r.publishNodeFailed(ctx, st, res)

		return
	}

	ctx, span := r.tracer.Start(ctx, "node.execute", trace.WithAttributes(
		attribute.String("flowfn.run.id", st.runID),
		attribute.String("flowfn.node.id", id),
		attribute.String("flowfn.node.type", node.Type),
	))
	defer span.End()

	start := time.Now()

	logger.Debug("Executing node")
	r.publishNodeStarted(ctx, st, node)

	outputs, execErr := r.invoke(ctx, nt, inputs)
	if execErr != nil {
		res := models.NewErrorResult(id, node.Type, execErr.Kind, execErr.Message)
		st.setResult(id, res)
		r.publishNodeFailed(ctx, st, res)
		otelhelper.SetError(span, execErr)
		logger.Error("Node failed", "kind", execErr.Kind, "error", execErr.Message)

		return
	}

	st.setOutputs(id, outputs)
	st.setResult(id, models.NewSuccessResult(id, node.Type, resultValue(nt, outputs)))
	r.publishNodeFinished(ctx, st, node, time.Since(start))
	logger.Debug("Node succeeded", "duration", time.Since(start))
}

// resolveInputs materializes the node's effective ports, applies declared
// defaults and fills in bound values, reading referenced values from the
// already-computed outputs of upstream nodes.
func (r *Runner) resolveInputs(st *runState, node *models.GraphNode) (map[string]any, error) {
	ports, err := r.registry.PortsForNode(node)
	if err != nil {
		return nil, err
	}

	inputs := make(map[string]any, len(node.Inputs))

	for _, port := range ports {
		if port.Default != nil {
			inputs[port.Name] = port.Default
		}
	}

	for port, binding := range node.Inputs {
		if binding.IsRef() {
			inputs[port] = st.output(binding.Ref.Node, binding.Ref.Port)

			continue
		}

		inputs[port] = binding.Literal
	}

	return inputs, nil
}

// invoke runs the operation with panic capture and the configured per-node
// timeout. The returned ExecutionError is nil on success.
func (r *Runner) invoke(ctx context.Context, nt *models.NodeType, inputs map[string]any) (map[string]any, *models.ExecutionError) {
	runCtx := ctx

	if r.nodeTimeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, r.nodeTimeout)
		defer cancel()
	}

	type outcome struct {
		outputs map[string]any
		err     error
	}

	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("operation panicked: %v", rec)}
			}
		}()

		outputs, err := nt.Handler(runCtx, inputs)
		done <- outcome{outputs: outputs, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, &models.ExecutionError{Kind: models.KindOperationError, Message: out.err.Error()}
		}

		return out.outputs, nil

	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, &models.ExecutionError{
				Kind:    models.KindTimeout,
				Message: fmt.Sprintf("operation exceeded %s", r.nodeTimeout),
			}
		}

		return nil, &models.ExecutionError{Kind: models.KindOperationError, Message: "run canceled"}
	}
}

// resultValue flattens single-output nodes to the bare port value; nodes
// with several output ports report the whole port map.
func resultValue(nt *models.NodeType, outputs map[string]any) any {
	if len(nt.Outputs) == 1 {
		return outputs[nt.Outputs[0].Name]
	}

	out := make(map[string]any, len(outputs))
	for k, v := range outputs {
		out[k] = v
	}

	return out
}
