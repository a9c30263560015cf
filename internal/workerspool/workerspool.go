// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements a soft-limited pool of goroutines and a parallel-for on top of it.
package workerspool

import (
	"runtime"
	"sync"
)

// Pool of workers. Tasks run in new goroutines while the number of running tasks is below
// the pool's limit, and inline (in the caller's goroutine) otherwise.
type Pool struct {
	// maxParallelism is a soft target on the limit of parallel work to do.
	// The actual number of goroutines is higher than that -- because of waits and such.
	maxParallelism int
	mu             sync.Mutex
	numRunning     int
}

// New return a new Pool of workers with the default parallelism (runtime.NumCPU()).
func New() *Pool {
	return &Pool{maxParallelism: runtime.NumCPU()}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism is != 0)
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (maxParallelism < 0)
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// MaxParallelism is a soft-target for parallelism.
// If set to 0 parallelism is disabled.
// If set to -1 parallelism is unlimited.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// SetMaxParallelism sets the maxParallelism.
//
// You should only change the parallelism before any workers start running. If changed during the execution
// the behavior is undefined.
func (w *Pool) SetMaxParallelism(maxParallelism int) {
	w.maxParallelism = maxParallelism
}

const goroutineToParallelismRatio = 2

// lockedIsFull returns whether all available workers are in use.
//
// It must be called with workerPool.mu acquired.
func (w *Pool) lockedIsFull() bool {
	if w.maxParallelism == 0 {
		return true
	} else if w.maxParallelism < 0 {
		return false
	}
	return w.numRunning >= goroutineToParallelismRatio*w.maxParallelism
}

// lockedRunTaskInGoroutine and keep tabs on w.numRunning.
//
// It must be called with workerPool.mu acquired.
func (w *Pool) lockedRunTaskInGoroutine(task func()) {
	w.numRunning++
	go func() {
		defer func() {
			w.mu.Lock()
			w.numRunning--
			w.mu.Unlock()
		}()
		task()
	}()
}

// StartIfAvailable runs the task in a separate goroutine, if there are enough workers left.
// It returns true if it found workers to run the function, false otherwise.
//
// It's up to the client to synchronize the end of the function execution.
func (w *Pool) StartIfAvailable(task func()) bool {
	if w.IsUnlimited() {
		go task()
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lockedIsFull() {
		return false
	}
	w.lockedRunTaskInGoroutine(task)
	return true
}

// NumChunks returns in how many sub-ranges ParallelFor splits a range of n indices for the given grain size.
func (w *Pool) NumChunks(n, grainSize int) int {
	if n <= 0 {
		return 0
	}
	grainSize = max(grainSize, 1)
	numChunks := max(n/grainSize, 1)
	if !w.IsEnabled() {
		return 1
	}
	if !w.IsUnlimited() {
		numChunks = min(numChunks, w.maxParallelism)
	}
	chunkSize := (n + numChunks - 1) / numChunks
	return (n + chunkSize - 1) / chunkSize
}

// ParallelFor splits [begin, end) into contiguous, non-overlapping sub-ranges of at least grainSize
// indices (the last one may be shorter) and calls task once for each of them.
//
// Sub-ranges run in the pool's goroutines when workers are available, and in the calling goroutine otherwise.
// It blocks until all sub-ranges are processed. If a task panics, the first panic is re-raised in the caller
// after all the other sub-ranges finish.
func (w *Pool) ParallelFor(begin, end, grainSize int, task func(begin, end int)) {
	n := end - begin
	numChunks := w.NumChunks(n, grainSize)
	if numChunks == 0 {
		return
	}
	if numChunks == 1 {
		task(begin, end)
		return
	}
	chunkSize := (n + numChunks - 1) / numChunks

	var (
		wg         sync.WaitGroup
		panicOnce  sync.Once
		firstPanic any
	)
	runChunk := func(chunkBegin, chunkEnd int) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				panicOnce.Do(func() { firstPanic = r })
			}
		}()
		task(chunkBegin, chunkEnd)
	}

	wg.Add(numChunks)
	lastBegin := begin + (numChunks-1)*chunkSize
	for chunkBegin := begin; chunkBegin < lastBegin; chunkBegin += chunkSize {
		chunkEnd := chunkBegin + chunkSize
		if !w.StartIfAvailable(func() { runChunk(chunkBegin, chunkEnd) }) {
			runChunk(chunkBegin, chunkEnd)
		}
	}
	// The caller takes the last chunk.
	runChunk(lastBegin, end)
	wg.Wait()
	if firstPanic != nil {
		panic(firstPanic)
	}
}
