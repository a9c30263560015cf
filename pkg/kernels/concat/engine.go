// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package concat

import (
	"unsafe"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gomlx/catkernel/internal/dispatcher"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// DefaultGrainSize is the default amount of work, in elements copied, assigned at least to each parallel task.
const DefaultGrainSize = 32768

// GrainSize returns the minimum number of outer groups per parallel task, such that each task copies
// roughly workPerTask elements: wider groups get fewer outer indices per task. It is always >= 1.
func GrainSize(workPerTask, outputGroupStride int) int {
	if outputGroupStride <= 0 {
		return max(workPerTask, 1)
	}
	return max(workPerTask/outputGroupStride, 1)
}

// dispatchConcat maps a dtype to the copy engine instance for it.
// Params are (exec ParallelFor, p *Partition, outputFlat any, workPerTask int).
var dispatchConcat = dispatcher.New("Concatenate")

func init() {
	dispatchConcat.Register(dtypes.Float32, execConcatGeneric[float32])
	dispatchConcat.Register(dtypes.Float64, execConcatGeneric[float64])
	dispatchConcat.Register(dtypes.Float16, execConcatGeneric[float16.Float16])
	dispatchConcat.Register(dtypes.BFloat16, execConcatGeneric[bfloat16.BFloat16])
	dispatchConcat.Register(dtypes.Int8, execConcatGeneric[int8])
	dispatchConcat.Register(dtypes.Int16, execConcatGeneric[int16])
	dispatchConcat.Register(dtypes.Int32, execConcatGeneric[int32])
	dispatchConcat.Register(dtypes.Int64, execConcatGeneric[int64])
	dispatchConcat.Register(dtypes.Uint8, execConcatGeneric[uint8])
	dispatchConcat.Register(dtypes.Uint16, execConcatGeneric[uint16])
	dispatchConcat.Register(dtypes.Uint32, execConcatGeneric[uint32])
	dispatchConcat.Register(dtypes.Uint64, execConcatGeneric[uint64])

	// Types without SIMD lanes are copied as raw words of the same total size.
	dispatchConcat.Register(dtypes.Bool, execConcatReinterpreted[bool, uint8](1))
	dispatchConcat.Register(dtypes.Complex64, execConcatReinterpreted[complex64, uint64](1))
	dispatchConcat.Register(dtypes.Complex128, execConcatReinterpreted[complex128, uint64](2))
}

// SupportedDTypes returns the dtypes the kernel can concatenate.
func SupportedDTypes() []dtypes.DType {
	return dispatchConcat.Supported()
}

func execConcatGeneric[T hwy.Lanes](params ...any) {
	exec := params[0].(ParallelFor)
	p := params[1].(*Partition)
	output := params[2].([]T)
	workPerTask := params[3].(int)
	inputs := make([][]T, len(p.Inputs))
	innerSizes := make([]int, len(p.Inputs))
	for i, record := range p.Inputs {
		inputs[i] = record.Flat.([]T)
		innerSizes[i] = record.InnerSize
	}
	runEngine(exec, p.OuterCount, p.OutputGroupStride, inputs, innerSizes, output, workPerTask)
}

// execConcatReinterpreted returns a dispatch function that views the []From flat slices as []To, with
// scale elements of To per element of From.
func execConcatReinterpreted[From any, To hwy.Lanes](scale int) dispatcher.Func {
	return func(params ...any) {
		exec := params[0].(ParallelFor)
		p := params[1].(*Partition)
		output := reinterpretFlat[From, To](params[2], scale)
		workPerTask := params[3].(int)
		inputs := make([][]To, len(p.Inputs))
		innerSizes := make([]int, len(p.Inputs))
		for i, record := range p.Inputs {
			inputs[i] = reinterpretFlat[From, To](record.Flat, scale)
			innerSizes[i] = record.InnerSize * scale
		}
		runEngine(exec, p.OuterCount, p.OutputGroupStride*scale, inputs, innerSizes, output, workPerTask)
	}
}

func reinterpretFlat[From any, To any](flat any, scale int) []To {
	from := flat.([]From)
	if len(from) == 0 {
		return nil
	}
	return unsafe.Slice((*To)(unsafe.Pointer(unsafe.SliceData(from))), len(from)*scale)
}

// runEngine copies every outer group of the output, sharding the outer groups across exec.
//
// For outer index i, the output cursor starts at i*groupStride, and each input j, in order, contributes
// innerSizes[j] elements read from i*innerSizes[j].
func runEngine[T hwy.Lanes](exec ParallelFor, outerCount, groupStride int, inputs [][]T, innerSizes []int, output []T, workPerTask int) {
	if outerCount == 0 {
		return
	}
	lanes := lanesFor[T]()
	grainSize := GrainSize(workPerTask, groupStride)
	exec.ParallelFor(0, outerCount, grainSize, func(begin, end int) {
		for outer := begin; outer < end; outer++ {
			outputPos := outer * groupStride
			for j, input := range inputs {
				innerSize := innerSizes[j]
				if innerSize == 0 {
					continue
				}
				inputPos := outer * innerSize
				copyRun(output[outputPos:outputPos+innerSize], input[inputPos:inputPos+innerSize], lanes)
				outputPos += innerSize
			}
		}
	})
}
