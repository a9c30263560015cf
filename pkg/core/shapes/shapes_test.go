// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	require.False(t, invalidShape.Ok())

	shape0 := Make(dtypes.Float64)
	require.True(t, shape0.Ok())
	require.True(t, shape0.IsScalar())
	require.Equal(t, 0, shape0.Rank())
	require.Equal(t, 1, shape0.Size())
	require.Equal(t, 8, int(shape0.Memory()))
	require.Empty(t, shape0.Strides())

	shape1 := Make(dtypes.Float32, 4, 3, 2)
	require.True(t, shape1.Ok())
	require.False(t, shape1.IsScalar())
	require.Equal(t, 3, shape1.Rank())
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, 4*4*3*2, int(shape1.Memory()))
	require.Equal(t, 2, shape1.Dim(-1))
	require.Equal(t, 4, shape1.Dim(0))
	require.Equal(t, "(Float32)[4 3 2]", shape1.String())

	require.Panics(t, func() { _ = shape1.Dim(3) })
	require.Panics(t, func() { _ = Make(dtypes.Int32, 2, -1) })
}

func TestStrides(t *testing.T) {
	require.Equal(t, []int{6, 2, 1}, Make(dtypes.Float32, 4, 3, 2).Strides())
	require.Equal(t, []int{1}, Make(dtypes.Int8, 7).Strides())

	// Zero-size axes still have well-defined strides for the axes after them.
	zero := Make(dtypes.Float32, 3, 0, 5)
	require.True(t, zero.IsZeroSize())
	require.Equal(t, 0, zero.Size())
	require.Equal(t, []int{0, 5, 1}, zero.Strides())
}

func TestAdjustAxis(t *testing.T) {
	s := Make(dtypes.Int64, 2, 3, 4)
	for axis, want := range map[int]int{0: 0, 2: 2, -1: 2, -3: 0} {
		got, err := s.AdjustAxis(axis)
		require.NoError(t, err)
		require.Equal(t, want, got, "axis=%d", axis)
	}
	_, err := s.AdjustAxis(3)
	require.Error(t, err)
	_, err = s.AdjustAxis(-4)
	require.Error(t, err)
}

func TestEqualAndClone(t *testing.T) {
	s := Make(dtypes.Float32, 2, 3)
	c := s.Clone()
	require.True(t, s.Equal(c))
	c.Dimensions[0] = 5
	require.False(t, s.Equal(c))
	require.Equal(t, 2, s.Dimensions[0])

	other := Make(dtypes.Int32, 2, 3)
	require.False(t, s.Equal(other))
	require.True(t, s.EqualDimensions(other))
}
