// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"slices"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape_Iter(t *testing.T) {
	shape := Make(dtypes.Float64, 3, 1, 2)
	var collect [][]int
	counter := 0
	for flatIdx, indices := range shape.Iter() {
		collect = append(collect, slices.Clone(indices))
		require.Equal(t, counter, flatIdx)
		counter++
	}
	require.Equal(t, [][]int{
		{0, 0, 0},
		{0, 0, 1},
		{1, 0, 0},
		{1, 0, 1},
		{2, 0, 0},
		{2, 0, 1},
	}, collect)

	// Scalar yields once, zero-size shapes never.
	count := 0
	for range Make(dtypes.Int32).Iter() {
		count++
	}
	require.Equal(t, 1, count)
	for range Make(dtypes.Int32, 3, 0, 2).Iter() {
		t.Fatal("zero-size shape yielded an index")
	}

	// Early break.
	count = 0
	for range Make(dtypes.Int32, 4, 4).Iter() {
		count++
		if count == 5 {
			break
		}
	}
	require.Equal(t, 5, count)
}

func TestShape_IterStrided(t *testing.T) {
	// Transposed layout of a [2, 3] shape: column-major.
	shape := Make(dtypes.Float32, 2, 3)
	var offsets []int
	for flatIdx, offset := range shape.IterStrided([]int{1, 2}) {
		require.Equal(t, len(offsets), flatIdx)
		offsets = append(offsets, offset)
	}
	require.Equal(t, []int{0, 2, 4, 1, 3, 5}, offsets)

	// Row-major strides yield the flat index itself.
	shape = Make(dtypes.Float32, 2, 3, 4)
	for flatIdx, offset := range shape.IterStrided(shape.Strides()) {
		require.Equal(t, flatIdx, offset)
	}

	require.Panics(t, func() { shape.IterStrided([]int{1}) })
}
