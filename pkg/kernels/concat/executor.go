// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package concat

import (
	"sync"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
	"github.com/gomlx/catkernel/internal/workerspool"
)

// ParallelFor is the parallel-for primitive the copy engine runs on.
//
// ParallelFor must split [begin, end) into contiguous, non-overlapping sub-ranges covering it exactly once,
// each with at least grainSize indices except possibly the last, call task once per sub-range (potentially
// concurrently), and block until all calls return. If a task panics, the panic must be propagated to the
// caller of ParallelFor.
type ParallelFor interface {
	ParallelFor(begin, end, grainSize int, task func(begin, end int))
}

// Compile-time checks of the available implementations.
var (
	_ ParallelFor = Sequential{}
	_ ParallelFor = (*workerspool.Pool)(nil)
	_ ParallelFor = (*HighwayPool)(nil)
)

// Sequential runs the whole range as a single task in the calling goroutine.
type Sequential struct{}

// ParallelFor implements the ParallelFor interface.
func (Sequential) ParallelFor(begin, end, _ int, task func(begin, end int)) {
	if end > begin {
		task(begin, end)
	}
}

// HighwayPool runs sub-ranges on a persistent go-highway worker pool, with work-stealing
// batches of grainSize indices.
type HighwayPool struct {
	pool *workerpool.Pool
}

// NewHighwayPool creates a pool with numWorkers persistent workers. If numWorkers <= 0, it uses GOMAXPROCS.
//
// Call Close when the pool is no longer needed.
func NewHighwayPool(numWorkers int) *HighwayPool {
	return &HighwayPool{pool: workerpool.New(numWorkers)}
}

// NumWorkers returns the number of workers in the pool.
func (h *HighwayPool) NumWorkers() int { return h.pool.NumWorkers() }

// Close stops the workers. Later calls to ParallelFor run sequentially.
func (h *HighwayPool) Close() { h.pool.Close() }

// ParallelFor implements the ParallelFor interface.
func (h *HighwayPool) ParallelFor(begin, end, grainSize int, task func(begin, end int)) {
	n := end - begin
	if n <= 0 {
		return
	}
	var (
		panicOnce  sync.Once
		firstPanic any
	)
	h.pool.ParallelForAtomicBatched(n, max(grainSize, 1), func(start, stop int) {
		// Panics in the pool's goroutines can't be recovered by the caller.
		defer func() {
			if r := recover(); r != nil {
				panicOnce.Do(func() { firstPanic = r })
			}
		}()
		task(begin+start, begin+stop)
	})
	if firstPanic != nil {
		panic(firstPanic)
	}
}
