// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package concat

import (
	"testing"

	"github.com/gomlx/catkernel/pkg/core/buffers"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestNewPartition(t *testing.T) {
	t.Run("2x2+2x2@axis1", func(t *testing.T) {
		a := must.M1(buffers.FromFlat([]float32{1, 2, 3, 4}, 2, 2))
		b := must.M1(buffers.FromFlat([]float32{5, 6, 7, 8}, 2, 2))
		out := must.M1(buffers.Make(dtypes.Float32, 2, 4))
		p := NewPartition(out, []*buffers.Buffer{a, b}, 1)
		require.Equal(t, 2, p.OuterCount)
		require.Equal(t, 4, p.OutputGroupStride)
		require.Len(t, p.Inputs, 2)
		require.Equal(t, 2, p.Inputs[0].InnerSize)
		require.Equal(t, 2, p.Inputs[1].InnerSize)
		require.NoError(t, p.Check())
	})

	t.Run("Axis0IsOneGroup", func(t *testing.T) {
		a := must.M1(buffers.Make(dtypes.Int32, 3, 5))
		b := must.M1(buffers.Make(dtypes.Int32, 2, 5))
		out := must.M1(buffers.Make(dtypes.Int32, 5, 5))
		p := NewPartition(out, []*buffers.Buffer{a, b}, 0)
		require.Equal(t, 1, p.OuterCount)
		require.Equal(t, 25, p.OutputGroupStride)
		require.Equal(t, 15, p.Inputs[0].InnerSize)
		require.Equal(t, 10, p.Inputs[1].InnerSize)
		require.NoError(t, p.Check())
	})

	t.Run("MiddleAxis", func(t *testing.T) {
		a := must.M1(buffers.Make(dtypes.Float64, 4, 1, 3))
		b := must.M1(buffers.Make(dtypes.Float64, 4, 2, 3))
		out := must.M1(buffers.Make(dtypes.Float64, 4, 3, 3))
		p := NewPartition(out, []*buffers.Buffer{a, b}, 1)
		require.Equal(t, 4, p.OuterCount)
		require.Equal(t, 9, p.OutputGroupStride)
		require.Equal(t, 3, p.Inputs[0].InnerSize)
		require.Equal(t, 6, p.Inputs[1].InnerSize)
		require.NoError(t, p.Check())
	})

	t.Run("ZeroExtent", func(t *testing.T) {
		a := must.M1(buffers.Make(dtypes.Float32, 3, 0))
		out := must.M1(buffers.Make(dtypes.Float32, 3, 0))
		p := NewPartition(out, []*buffers.Buffer{a}, 1)
		require.Equal(t, 0, p.OuterCount)
		require.Equal(t, 0, p.OutputGroupStride)
		require.NoError(t, p.Check())
	})

	t.Run("MismatchedSum", func(t *testing.T) {
		a := must.M1(buffers.Make(dtypes.Float32, 2, 2))
		out := must.M1(buffers.Make(dtypes.Float32, 2, 3))
		p := NewPartition(out, []*buffers.Buffer{a}, 1)
		require.ErrorContains(t, p.Check(), "output group stride is 3")
	})
}

func TestGrainSize(t *testing.T) {
	require.Equal(t, 32768/4, GrainSize(DefaultGrainSize, 4))
	require.Equal(t, 1, GrainSize(DefaultGrainSize, DefaultGrainSize))
	require.Equal(t, 1, GrainSize(DefaultGrainSize, 10*DefaultGrainSize))
	require.Equal(t, 100, GrainSize(100, 0))
	require.Equal(t, 1, GrainSize(0, 3))
}
