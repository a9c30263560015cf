// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapeinference calculates the shape resulting from operations and validates its inputs.
//
// Kernels trust their inputs: the functions here are the validation layer that must run before
// dispatching to them, returning descriptive errors naming the offending inputs.
package shapeinference

import (
	"github.com/gomlx/catkernel/pkg/core/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// ErrNoInputs is returned by ConcatenateOp when it is given an empty list of shapes.
var ErrNoInputs = errors.New("ConcatenateOp requires at least one input shape")

// ConcatenateOp returns the shape resulting from concatenating inputs along axis, or an error if the inputs are
// not compatible: all inputs must have the same dtype and rank, and the same dimensions on every axis other
// than the concatenation axis.
//
// axis can be negative, in which case it counts from the end.
func ConcatenateOp(inputs []shapes.Shape, axis int) (output shapes.Shape, err error) {
	if len(inputs) == 0 {
		return shapes.Invalid(), ErrNoInputs
	}

	// Initialize output dimensions with the first shape.
	firstShape := inputs[0]
	dtype := firstShape.DType
	rank := firstShape.Rank()
	if dtype == dtypes.InvalidDType {
		return shapes.Invalid(), errors.Errorf("invalid shape %s for first input of ConcatenateOp", firstShape)
	}
	if rank == 0 {
		return shapes.Invalid(), errors.Errorf("ConcatenateOp cannot concatenate scalars (input #0 has shape %s)", firstShape)
	}
	adjustedAxis, err := firstShape.AdjustAxis(axis)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "invalid concatenation axis for ConcatenateOp")
	}
	output = firstShape.Clone()

	// Validate further inputs and accumulate the concatenation axis size.
	for i := 1; i < len(inputs); i++ {
		currentShape := inputs[i]
		if currentShape.DType == dtypes.InvalidDType {
			return shapes.Invalid(), errors.Errorf("invalid shape %s for input #%d of ConcatenateOp", currentShape, i)
		}
		if currentShape.DType != dtype {
			return shapes.Invalid(), errors.Errorf("mismatched DTypes for ConcatenateOp: input #0 has %s, input #%d has %s",
				dtype, i, currentShape.DType)
		}
		if currentShape.Rank() != rank {
			return shapes.Invalid(), errors.Errorf("mismatched ranks for ConcatenateOp: input #0 has rank %d, input #%d has rank %d",
				rank, i, currentShape.Rank())
		}
		for d := range rank {
			if d == adjustedAxis {
				output.Dimensions[d] += currentShape.Dimensions[d]
			} else if currentShape.Dimensions[d] != output.Dimensions[d] {
				return shapes.Invalid(), errors.Errorf("mismatched dimensions for ConcatenateOp at axis %d (non-concatenation axis): input #0 has %d, input #%d has %d",
					d, output.Dimensions[d], i, currentShape.Dimensions[d])
			}
		}
	}
	return output, nil
}

// ValidateConcatenateOutput checks that an externally allocated output shape matches the one inferred by ConcatenateOp.
func ValidateConcatenateOutput(output shapes.Shape, inputs []shapes.Shape, axis int) error {
	want, err := ConcatenateOp(inputs, axis)
	if err != nil {
		return err
	}
	if output.DType != want.DType {
		return errors.Errorf("ConcatenateOp output has dtype %s, but inputs have dtype %s", output.DType, want.DType)
	}
	if !output.EqualDimensions(want) {
		adjustedAxis, _ := want.AdjustAxis(axis)
		if output.Rank() == want.Rank() && output.Dimensions[adjustedAxis] != want.Dimensions[adjustedAxis] {
			return errors.Errorf("ConcatenateOp output has dimension %d on the concatenation axis %d, but the inputs sum to %d (output %s, want %s)",
				output.Dimensions[adjustedAxis], adjustedAxis, want.Dimensions[adjustedAxis], output, want)
		}
		return errors.Errorf("ConcatenateOp output has shape %s, but concatenating the inputs along axis %d yields %s",
			output, axis, want)
	}
	return nil
}
