// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/gomlx/catkernel/pkg/kernels/concat"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestParseInts(t *testing.T) {
	require.Equal(t, []int{3, 0, 7}, must.M1(parseInts(" 3, 0,7,")))
	for _, bad := range []string{"", "3,x", "-1"} {
		_, err := parseInts(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestParseDType(t *testing.T) {
	require.Equal(t, dtypes.BFloat16, must.M1(parseDType("bfloat16")))
	require.Equal(t, dtypes.Float32, must.M1(parseDType("Float32")))
	_, err := parseDType("float8")
	require.Error(t, err)
}

func TestBenchmark(t *testing.T) {
	for _, dtype := range []dtypes.DType{dtypes.Float32, dtypes.Bool, dtypes.Complex128} {
		t.Run(dtype.String(), func(t *testing.T) {
			b := must.M1(newBenchmark(dtype, []int{9, 0, 17}, -2, []int{3, 1, 0, 5}, 1))
			require.Len(t, b.inputs, 4)
			require.Equal(t, 1, b.axis)

			sequential := must.M1(concat.New("sequential"))
			defer sequential.Finalize()
			parallel := must.M1(concat.New("executor=highway,parallelism=3,grain=1"))
			defer parallel.Finalize()

			want := must.M1(b.run("sequential", sequential, 2))
			got := must.M1(b.run("highway", parallel, 3))
			require.Len(t, got.durations, 3)
			require.Equal(t, []int{9, 9, 17}, got.output.Shape().Dimensions)
			require.True(t, compareOutputs(want, got))
			require.NotEmpty(t, resultsTable([]*result{want, got}, true).Render())
		})
	}

	_, err := newBenchmark(dtypes.Float32, []int{2, 2}, 2, []int{1}, 1)
	require.Error(t, err)
	_, err = newBenchmark(dtypes.Float32, []int{2, 2}, 0, nil, 1)
	require.Error(t, err)
}

func TestConfigName(t *testing.T) {
	require.Equal(t, "sequential", configName(must.M1(concat.ParseConfig("sequential"))))
	require.Equal(t, "highway(4)", configName(must.M1(concat.ParseConfig("executor=highway,parallelism=4"))))
}
