package runner

import (
	"fmt"
	"sort"
	"sync"

	"github.com/flowfn/flowfn/pkg/models"
)

// runState is the per-run working set: the dependency graph, the output
// values flowing between nodes and the write-once result table.
type runState struct {
	runID string
	graph models.Graph

	deps       map[string][]string
	dependents map[string][]string
	order      []string // topological order over the acyclic portion

	mu      sync.Mutex
	results map[string]*models.ExecutionResult
	outputs map[string]map[string]any
}

func (st *runState) setResult(id string, res *models.ExecutionResult) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.results[id]; exists {
		return
	}

	st.results[id] = res
}

func (st *runState) result(id string) (*models.ExecutionResult, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	res, ok := st.results[id]

	return res, ok
}

func (st *runState) setOutputs(id string, out map[string]any) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.outputs[id] = out
}

func (st *runState) output(id, port string) any {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.outputs[id][port]
}

// buildPlan validates every node against the registry, derives the
// dependency edges from reference bindings and computes a topological
// order. Nodes that fail validation are given their terminal error record
// up front; nodes stuck in (or behind) a cycle are marked
// CyclicDependencyError and never invoked.
func (r *Runner) buildPlan(graph models.Graph, runID string) *runState {
	st := &runState{
		runID:      runID,
		graph:      graph,
		deps:       make(map[string][]string, len(graph)),
		dependents: make(map[string][]string, len(graph)),
		results:    make(map[string]*models.ExecutionResult, len(graph)),
		outputs:    make(map[string]map[string]any, len(graph)),
	}

	for _, id := range graph.NodeIDs() {
		node := graph[id]

		if _, err := r.registry.GetNode(node.Type); err != nil {
			st.setResult(id, models.NewErrorResult(id, node.Type, models.KindUnknownType, err.Error()))
		}

		seen := make(map[string]struct{})

		for _, port := range sortedPorts(node.Inputs) {
			binding := node.Inputs[port]
			if !binding.IsRef() {
				continue
			}

			src := binding.Ref.Node

			srcNode, ok := graph[src]
			if !ok {
				st.setResult(id, models.NewErrorResult(id, node.Type, models.KindUnknownPort,
					fmt.Sprintf("input %q references unknown node %q", port, src)))

				continue
			}

			// The reference must name a port that exists on the source
			// type; a bad port fails the referencing node, not the source.
			if srcType, typeErr := r.registry.GetNode(srcNode.Type); typeErr == nil {
				if !srcType.HasOutput(binding.Ref.Port) {
					st.setResult(id, models.NewErrorResult(id, node.Type, models.KindUnknownPort,
						fmt.Sprintf("input %q references unknown port %q on node %q", port, binding.Ref.Port, src)))
				}
			}

			if _, dup := seen[src]; !dup {
				seen[src] = struct{}{}
				st.deps[id] = append(st.deps[id], src)
				st.dependents[src] = append(st.dependents[src], id)
			}
		}
	}

	st.order = topologicalOrder(graph, st.deps, st.dependents)

	scheduled := make(map[string]struct{}, len(st.order))
	for _, id := range st.order {
		scheduled[id] = struct{}{}
	}

	for _, id := range graph.NodeIDs() {
		if _, ok := scheduled[id]; !ok {
			st.setResult(id, models.NewErrorResult(id, graph[id].Type,
				models.KindCyclicDependency, "node is part of, or depends on, a dependency cycle"))
		}
	}

	return st
}

// topologicalOrder runs iterative ready-set selection: every pass releases
// the nodes whose dependencies are all already ordered, by node id for
// reproducibility. Whatever remains when no pass makes progress is cyclic
// (or behind a cycle) and is excluded from the order.
func topologicalOrder(graph models.Graph, deps map[string][]string, dependents map[string][]string) []string {
	indegree := make(map[string]int, len(graph))
	for id := range graph {
		indegree[id] = len(deps[id])
	}

	var ready []string

	for _, id := range graph.NodeIDs() {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(graph))

	for len(ready) > 0 {
		sort.Strings(ready)

		next := ready
		ready = nil

		for _, id := range next {
			order = append(order, id)

			for _, dep := range dependents[id] {
				indegree[dep]--
				if indegree[dep] == 0 {
					ready = append(ready, dep)
				}
			}
		}
	}

	return order
}

func sortedPorts(inputs map[string]models.Binding) []string {
	ports := make([]string, 0, len(inputs))
	for port := range inputs {
		ports = append(ports, port)
	}

	sort.Strings(ports)

	return ports
}
