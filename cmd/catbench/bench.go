// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gomlx/catkernel/pkg/core/buffers"
	"github.com/gomlx/catkernel/pkg/core/shapes"
	"github.com/gomlx/catkernel/pkg/kernels/concat"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// benchmark holds the inputs of one concatenation.
type benchmark struct {
	axis   int
	inputs []*buffers.Buffer

	// progressWriter is where the progress bar is drawn. If nil, no progress bar is displayed.
	progressWriter io.Writer
	theme          progressbar.Theme
}

// result of running a kernel repeatedly over a benchmark.
type result struct {
	name      string
	durations []time.Duration
	output    *buffers.Buffer
}

func newBenchmarkFromFlags() (*benchmark, error) {
	dims, err := parseInts(*flagDims)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid -dims")
	}
	extents, err := parseInts(*flagExtents)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid -extents")
	}
	dtype, err := parseDType(*flagDType)
	if err != nil {
		return nil, err
	}
	b, err := newBenchmark(dtype, dims, *flagAxis, extents, 42)
	if err != nil {
		return nil, err
	}
	b.progressWriter = os.Stderr
	if *flagUnicode {
		b.theme = progressbar.ThemeUnicode
	}
	return b, nil
}

// newBenchmark creates one input per extent, with the given dimensions except on axis, filled with random bytes.
func newBenchmark(dtype dtypes.DType, dims []int, axis int, extents []int, seed uint64) (*benchmark, error) {
	if len(extents) == 0 {
		return nil, errors.New("at least one input extent is required")
	}
	reference := shapes.Make(dtype, dims...)
	adjustedAxis, err := reference.AdjustAxis(axis)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid concatenation axis for dimensions %v", dims)
	}
	b := &benchmark{axis: adjustedAxis, theme: progressbar.ThemeASCII}
	rng := rand.New(rand.NewPCG(seed, uint64(len(extents))))
	for _, extent := range extents {
		inputDims := slices.Clone(dims)
		inputDims[adjustedAxis] = extent
		input, err := buffers.Make(dtype, inputDims...)
		if err != nil {
			return nil, err
		}
		raw := input.Bytes()
		for i := range raw {
			raw[i] = byte(rng.Uint32())
		}
		if dtype == dtypes.Bool {
			for i := range raw {
				raw[i] &= 1
			}
		}
		b.inputs = append(b.inputs, input)
	}
	return b, nil
}

// String implements fmt.Stringer.
func (b *benchmark) String() string {
	parts := make([]string, len(b.inputs))
	for i, input := range b.inputs {
		parts[i] = input.Shape().String()
	}
	return fmt.Sprintf("%s along axis %d", strings.Join(parts, " + "), b.axis)
}

// run concatenates the inputs repeats times with kernel, and returns the durations and the last output.
func (b *benchmark) run(name string, kernel *concat.Kernel, repeats int) (*result, error) {
	r := &result{name: name}
	var bar *progressbar.ProgressBar
	if b.progressWriter != nil {
		out := termenv.NewOutput(b.progressWriter)
		out.HideCursor()
		defer out.ShowCursor()
		bar = progressbar.NewOptions(repeats,
			progressbar.OptionSetDescription(fmt.Sprintf("%-12s", name)),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("runs"),
			progressbar.OptionSetTheme(b.theme),
			progressbar.OptionSetWriter(b.progressWriter),
			progressbar.OptionClearOnFinish(),
		)
	}
	for range max(repeats, 1) {
		if r.output != nil {
			kernel.Release(r.output)
		}
		start := time.Now()
		output, err := kernel.Concatenate(b.inputs, b.axis)
		elapsed := time.Since(start)
		if err != nil {
			return nil, errors.WithMessagef(err, "%s kernel failed", name)
		}
		r.output = output
		r.durations = append(r.durations, elapsed)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	klog.V(1).Infof("%s: %d runs, mean %s", name, len(r.durations), r.mean())
	return r, nil
}

// mean duration of the runs.
func (r *result) mean() time.Duration {
	if len(r.durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range r.durations {
		total += d
	}
	return total / time.Duration(len(r.durations))
}

// best (shortest) duration of the runs.
func (r *result) best() time.Duration {
	if len(r.durations) == 0 {
		return 0
	}
	return slices.Min(r.durations)
}

// bytesPerSecond is the output throughput, based on the best run.
func (r *result) bytesPerSecond() float64 {
	best := r.best()
	if best <= 0 {
		return 0
	}
	return float64(r.output.Shape().Memory()) / best.Seconds()
}

// compareOutputs returns whether both results have byte-identical outputs.
func compareOutputs(a, b *result) bool {
	return a.output.Shape().Equal(b.output.Shape()) && bytes.Equal(a.output.Bytes(), b.output.Bytes())
}

// configName summarizes a kernel configuration.
func configName(c concat.Config) string {
	if c.Executor == concat.ExecutorSequential {
		return c.Executor
	}
	return fmt.Sprintf("%s(%d)", c.Executor, c.Parallelism)
}

func parseInts(s string) ([]int, error) {
	var values []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %q", s)
		}
		if v < 0 {
			return nil, errors.Errorf("negative value %d in %q", v, s)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errors.Errorf("no values given in %q", s)
	}
	return values, nil
}

// parseDType matches the name case-insensitively against the dtypes supported by the kernel.
func parseDType(name string) (dtypes.DType, error) {
	for _, dtype := range concat.SupportedDTypes() {
		if strings.EqualFold(dtype.String(), name) {
			return dtype, nil
		}
	}
	return dtypes.InvalidDType, errors.Errorf("unknown or unsupported dtype %q, supported dtypes are %v", name, concat.SupportedDTypes())
}
