// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package concat implements a parallel concatenation kernel for contiguous dense buffers.
//
// The output of a concatenation along axis is split into "outer groups", one per combination of indices
// of the axes before axis. Within an outer group, each input contributes one contiguous run of elements,
// in input order. Outer groups don't overlap, so they are copied in parallel without any locking, in tasks
// grouping enough outer groups to amortize the cost of dispatching a task.
//
// Example:
//
//	kernel, err := concat.New("")  // Default configuration.
//	if err != nil { ... }
//	defer kernel.Finalize()
//	a, _ := buffers.FromFlat([]float32{1, 2, 3, 4}, 2, 2)
//	b, _ := buffers.FromFlat([]float32{5, 6, 7, 8}, 2, 2)
//	out, err := kernel.Concatenate([]*buffers.Buffer{a, b}, 1)  // [[1, 2, 5, 6], [3, 4, 7, 8]]
//
// Only contiguous (row-major) buffers are supported: strided views must be made contiguous by the caller.
package concat

import (
	"github.com/ajroetker/go-highway/hwy"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/catkernel/backends/shapeinference"
	"github.com/gomlx/catkernel/internal/workerspool"
	"github.com/gomlx/catkernel/pkg/core/buffers"
	"github.com/gomlx/catkernel/pkg/core/shapes"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Kernel concatenates buffers using a configured ParallelFor executor.
// It is safe for concurrent use.
type Kernel struct {
	config Config
	exec   ParallelFor
	pool   buffers.Pool

	// finalize releases the executor resources, if any.
	finalize func()
}

// New creates a Kernel from a configuration string, see ParseConfig for the format.
// An empty string uses the DefaultConfig.
func New(config string) (*Kernel, error) {
	c, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(c)
}

// NewFromEnv creates a Kernel configured by the CATKERNEL_CONFIG environment variable (see ConfigEnv).
func NewFromEnv() (*Kernel, error) {
	k, err := New(configFromEnv())
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to parse $%s", ConfigEnv)
	}
	return k, nil
}

// NewFromConfig creates a Kernel from a Config, creating the executor it names.
func NewFromConfig(c Config) (*Kernel, error) {
	if c.GrainSize <= 0 {
		return nil, errors.Errorf("invalid grain size %d, it must be > 0", c.GrainSize)
	}
	var exec ParallelFor
	var finalize func()
	switch c.Executor {
	case ExecutorPool, "":
		pool := workerspool.New()
		pool.SetMaxParallelism(c.Parallelism)
		exec = pool
	case ExecutorHighway:
		hwyPool := NewHighwayPool(c.Parallelism)
		exec = hwyPool
		finalize = hwyPool.Close
	case ExecutorSequential:
		exec = Sequential{}
	default:
		return nil, errors.Errorf("unknown executor %q", c.Executor)
	}
	k := NewWithExecutor(c, exec)
	k.finalize = finalize
	return k, nil
}

// NewWithExecutor creates a Kernel that runs on the given executor. The Executor and Parallelism fields of
// the config are ignored. The caller keeps ownership of exec.
func NewWithExecutor(c Config, exec ParallelFor) *Kernel {
	if c.GrainSize <= 0 {
		c.GrainSize = DefaultGrainSize
	}
	if klog.V(1).Enabled() {
		klog.Infof("concat.Kernel: executor=%T, parallelism=%d, grain=%d, validate=%v, simd=%s (%d bytes)",
			exec, c.Parallelism, c.GrainSize, c.Validate, hwy.CurrentName(), hwy.CurrentWidth())
	}
	return &Kernel{config: c, exec: exec}
}

// Config returns the kernel's configuration.
func (k *Kernel) Config() Config { return k.config }

// Finalize releases the resources of the executor created by the Kernel. The Kernel shouldn't be used afterward.
func (k *Kernel) Finalize() {
	if k.finalize != nil {
		k.finalize()
		k.finalize = nil
	}
}

// Concatenate allocates an output buffer and concatenates the inputs into it along axis.
// axis can be negative, in which case it counts from the end.
//
// The output is allocated from the Kernel's pool of buffers, and it can be returned to it with Release.
func (k *Kernel) Concatenate(inputs []*buffers.Buffer, axis int) (*buffers.Buffer, error) {
	inputShapes := make([]shapes.Shape, len(inputs))
	for i, input := range inputs {
		if !input.Valid() {
			return nil, errors.Errorf("Concatenate: input #%d is nil or invalid", i)
		}
		inputShapes[i] = input.Shape()
	}
	outputShape, err := shapeinference.ConcatenateOp(inputShapes, axis)
	if err != nil {
		return nil, err
	}
	output, err := k.pool.Get(outputShape)
	if err != nil {
		return nil, err
	}
	if err = k.ConcatenateInto(output, inputs, axis); err != nil {
		k.pool.Put(output)
		return nil, err
	}
	return output, nil
}

// Release returns a buffer created by Concatenate to the Kernel's pool.
func (k *Kernel) Release(buffer *buffers.Buffer) {
	k.pool.Put(buffer)
}

// ConcatenateInto concatenates the inputs into the pre-allocated output along axis, in input order.
// axis can be negative, in which case it counts from the end.
//
// Unless validation is disabled in the configuration, the inputs and output are validated first (see Validate),
// and the output is not touched if they are rejected. An empty list of inputs is a no-op.
func (k *Kernel) ConcatenateInto(output *buffers.Buffer, inputs []*buffers.Buffer, axis int) error {
	if len(inputs) == 0 {
		klog.V(2).Infof("ConcatenateInto(axis=%d): no inputs, nothing to do", axis)
		return nil
	}
	if !output.Valid() {
		return errors.New("ConcatenateInto: output buffer is nil or invalid")
	}
	adjustedAxis, err := output.Shape().AdjustAxis(axis)
	if err != nil {
		return errors.WithMessagef(err, "ConcatenateInto: invalid concatenation axis")
	}
	if k.config.Validate {
		if err = Validate(output, inputs, adjustedAxis); err != nil {
			return err
		}
	}
	p := NewPartition(output, inputs, adjustedAxis)
	if k.config.Validate {
		if err = p.Check(); err != nil {
			return err
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("ConcatenateInto(axis=%d, %d inputs) -> %s (%s): outer=%d, groupStride=%d, grain=%d",
			adjustedAxis, len(inputs), output.Shape(), humanize.Bytes(uint64(output.Shape().Memory())),
			p.OuterCount, p.OutputGroupStride, GrainSize(k.config.GrainSize, p.OutputGroupStride))
	}
	return exceptions.TryCatch[error](func() {
		dispatchConcat.Dispatch(output.DType(), k.exec, p, output.Flat(), k.config.GrainSize)
	})
}

// ConcatenateUnchecked is the raw kernel: it concatenates inputs into output along axis (which must be
// in [0, rank)) using exec, without any validation.
//
// The inputs and output must be contiguous, of the same dtype, and have compatible shapes, otherwise the
// behavior is undefined. It panics if the dtype is not supported.
func ConcatenateUnchecked(exec ParallelFor, workPerTask int, output *buffers.Buffer, inputs []*buffers.Buffer, axis int) {
	if len(inputs) == 0 {
		return
	}
	p := NewPartition(output, inputs, axis)
	dispatchConcat.Dispatch(output.DType(), exec, p, output.Flat(), workPerTask)
}
