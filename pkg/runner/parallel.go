package runner

import (
	"context"
	"sync"
	"sync/atomic"
)

// runParallel evaluates the planned order with a dependency-gated worker
// pool: a node enters the ready channel only once every dependency holds a
// terminal result, so the result table stays write-once and the observable
// outcome matches the sequential scheduler.
func (r *Runner) runParallel(ctx context.Context, st *runState) {
	scheduled := make(map[string]struct{}, len(st.order))
	for _, id := range st.order {
		scheduled[id] = struct{}{}
	}

	pending := make(map[string]*atomic.Int32, len(st.order))
	for _, id := range st.order {
		counter := &atomic.Int32{}
		counter.Store(int32(len(st.deps[id])))
		pending[id] = counter
	}

	ready := make(chan string, len(st.order))

	// The planned order is already sorted within each dependency rank, so
	// seeding in order keeps the dispatch reproducible.
	for _, id := range st.order {
		if pending[id].Load() == 0 {
			ready <- id
		}
	}

	workers := r.workers
	if workers > len(st.order) {
		workers = len(st.order)
	}

	var wg sync.WaitGroup

	wg.Add(len(st.order))

	for i := 0; i < workers; i++ {
		go func() {
			for id := range ready {
				r.executeNode(ctx, st, id)

				for _, dependent := range st.dependents[id] {
					if _, ok := scheduled[dependent]; !ok {
						continue
					}

					if pending[dependent].Add(-1) == 0 {
						ready <- dependent
					}
				}

				wg.Done()
			}
		}()
	}

	wg.Wait()
	close(ready)
}
