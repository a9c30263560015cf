// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package concat

import (
	"github.com/gomlx/catkernel/backends/shapeinference"
	"github.com/gomlx/catkernel/pkg/core/buffers"
	"github.com/gomlx/catkernel/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Validate checks that inputs can be concatenated into output along axis by this kernel:
//
//   - all buffers are valid, and their dtype is supported;
//   - the shapes are compatible (see shapeinference.ConcatenateOp) and match the output's shape;
//   - all inputs and the output are contiguous.
//
// The errors name the offending buffer. axis can be negative.
func Validate(output *buffers.Buffer, inputs []*buffers.Buffer, axis int) error {
	if !output.Valid() {
		return errors.New("concatenation output buffer is nil or invalid")
	}
	if !dispatchConcat.IsSupported(output.DType()) {
		return errors.Errorf("dtype %s not supported by the concatenation kernel", output.DType())
	}
	inputShapes := make([]shapes.Shape, len(inputs))
	for i, input := range inputs {
		if !input.Valid() {
			return errors.Errorf("concatenation input #%d is nil or invalid", i)
		}
		inputShapes[i] = input.Shape()
	}
	if err := shapeinference.ValidateConcatenateOutput(output.Shape(), inputShapes, axis); err != nil {
		return err
	}
	for i, input := range inputs {
		if !input.IsContiguous() {
			return errors.Errorf("concatenation input #%d %s with strides %v is not contiguous", i, input, input.Strides())
		}
	}
	if !output.IsContiguous() {
		return errors.Errorf("concatenation output %s with strides %v is not contiguous", output, output.Strides())
	}
	return nil
}
