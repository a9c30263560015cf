// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunk struct{ begin, end int }

// collectChunks runs ParallelFor and returns the sub-ranges it produced, sorted.
func collectChunks(pool *Pool, begin, end, grainSize int) []chunk {
	var mu sync.Mutex
	var chunks []chunk
	pool.ParallelFor(begin, end, grainSize, func(b, e int) {
		mu.Lock()
		chunks = append(chunks, chunk{b, e})
		mu.Unlock()
	})
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].begin < chunks[j].begin })
	return chunks
}

func TestParallelFor_Coverage(t *testing.T) {
	for _, parallelism := range []int{-1, 0, 1, 3, 8} {
		pool := New()
		pool.SetMaxParallelism(parallelism)
		for _, tc := range []struct{ begin, end, grain int }{
			{0, 100, 1}, {0, 100, 7}, {5, 6, 1}, {0, 1000, 64}, {10, 11, 100}, {0, 37, 0}, {3, 103, 100},
		} {
			chunks := collectChunks(pool, tc.begin, tc.end, tc.grain)
			require.NotEmpty(t, chunks)
			// Contiguous, non-overlapping and covering the whole range exactly once.
			next := tc.begin
			for i, c := range chunks {
				require.Equal(t, next, c.begin, "parallelism=%d, case=%+v", parallelism, tc)
				require.Greater(t, c.end, c.begin)
				if i < len(chunks)-1 {
					require.GreaterOrEqual(t, c.end-c.begin, max(tc.grain, 1), "parallelism=%d, case=%+v", parallelism, tc)
				}
				next = c.end
			}
			require.Equal(t, tc.end, next)
			require.Equal(t, pool.NumChunks(tc.end-tc.begin, tc.grain), len(chunks))
		}
	}
}

func TestParallelFor_EmptyRange(t *testing.T) {
	pool := New()
	var called atomic.Int32
	pool.ParallelFor(10, 10, 1, func(_, _ int) { called.Add(1) })
	pool.ParallelFor(10, 5, 1, func(_, _ int) { called.Add(1) })
	require.Equal(t, int32(0), called.Load())
}

func TestParallelFor_Disabled(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(0)
	require.False(t, pool.IsEnabled())
	chunks := collectChunks(pool, 0, 1000, 1)
	require.Equal(t, []chunk{{0, 1000}}, chunks)
	require.False(t, pool.StartIfAvailable(func() {}))
}

func TestParallelFor_Limited(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(4)
	require.Equal(t, 4, pool.NumChunks(1000, 1))
	require.Equal(t, 2, pool.NumChunks(1000, 500))
	require.Equal(t, 1, pool.NumChunks(1000, 5000))

	pool.SetMaxParallelism(-1)
	require.True(t, pool.IsUnlimited())
	require.Equal(t, 100, pool.NumChunks(1000, 10))
}

func TestParallelFor_Panic(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(4)
	var processed atomic.Int32
	assert.PanicsWithValue(t, "boom", func() {
		pool.ParallelFor(0, 100, 10, func(b, e int) {
			if b == 0 {
				panic("boom")
			}
			processed.Add(int32(e - b))
		})
	})
	// 4 chunks of 25: all the others still ran to completion before the panic was re-raised.
	require.Equal(t, int32(75), processed.Load())
}
