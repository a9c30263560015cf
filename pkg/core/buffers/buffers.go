// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package buffers holds Buffer, a view over the flat Go slice backing a dense multi-dimensional
// array, and Pool, an allocator of contiguous buffers.
//
// A Buffer doesn't own its data when created with FromFlat: it's a view of the caller's slice,
// and writes through the Buffer are visible on the slice.
package buffers

import (
	"reflect"
	"slices"
	"unsafe"

	"github.com/gomlx/catkernel/pkg/core/shapes"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Buffer holds a shape, the per-axis strides (in elements) and a reference to the flat data.
//
// The flat data is always a slice of the Go type of shape.DType.
type Buffer struct {
	shape   shapes.Shape
	strides []int
	valid   bool

	// flat is always a slice of the underlying data type (shape.DType).
	flat any
}

// FromFlat creates a contiguous (row-major) Buffer viewing the given flat slice.
// It doesn't copy the data.
func FromFlat[T dtypes.Supported](flat []T, dimensions ...int) (*Buffer, error) {
	shape, err := makeShape(dtypes.FromGenericsType[T](), dimensions)
	if err != nil {
		return nil, err
	}
	if len(flat) != shape.Size() {
		return nil, errors.Errorf("buffers.FromFlat: flat slice has %d elements, but shape %s requires %d",
			len(flat), shape, shape.Size())
	}
	return &Buffer{shape: shape, strides: shape.Strides(), flat: flat, valid: true}, nil
}

// FromFlatWithStrides creates a Buffer viewing the given flat slice with arbitrary strides (in elements).
//
// It is used to describe non-contiguous layouts (transposed or sliced views). Kernels that require contiguous
// data reject those, see Buffer.IsContiguous.
func FromFlatWithStrides[T dtypes.Supported](flat []T, dimensions, strides []int) (*Buffer, error) {
	shape, err := makeShape(dtypes.FromGenericsType[T](), dimensions)
	if err != nil {
		return nil, err
	}
	if len(strides) != shape.Rank() {
		return nil, errors.Errorf("buffers.FromFlatWithStrides: %d strides given for shape %s of rank %d",
			len(strides), shape, shape.Rank())
	}
	maxOffset := 0
	for axis, stride := range strides {
		if stride < 0 {
			return nil, errors.Errorf("buffers.FromFlatWithStrides: negative stride %d for axis %d", stride, axis)
		}
		maxOffset += (shape.Dimensions[axis] - 1) * stride
	}
	if shape.Size() > 0 && maxOffset >= len(flat) {
		return nil, errors.Errorf("buffers.FromFlatWithStrides: strides %v for shape %s reach element %d, but flat slice has only %d elements",
			strides, shape, maxOffset, len(flat))
	}
	return &Buffer{shape: shape, strides: slices.Clone(strides), flat: flat, valid: true}, nil
}

// Make allocates a new zero-initialized contiguous Buffer for the given dtype and dimensions.
func Make(dtype dtypes.DType, dimensions ...int) (*Buffer, error) {
	shape, err := makeShape(dtype, dimensions)
	if err != nil {
		return nil, err
	}
	return newContiguous(shape), nil
}

func makeShape(dtype dtypes.DType, dimensions []int) (shape shapes.Shape, err error) {
	if dtype == dtypes.InvalidDType {
		return shapes.Invalid(), errors.New("invalid dtype")
	}
	for axis, dim := range dimensions {
		if dim < 0 {
			return shapes.Invalid(), errors.Errorf("invalid dimension %d for axis %d in %v", dim, axis, dimensions)
		}
	}
	return shapes.Make(dtype, dimensions...), nil
}

func newContiguous(shape shapes.Shape) *Buffer {
	length := shape.Size()
	return &Buffer{
		shape:   shape,
		strides: shape.Strides(),
		flat:    reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), length, length).Interface(),
		valid:   true,
	}
}

// Shape returns the buffer's shape. The returned value shouldn't be modified.
func (b *Buffer) Shape() shapes.Shape { return b.shape }

// DType of the elements of the buffer.
func (b *Buffer) DType() dtypes.DType { return b.shape.DType }

// Rank of the buffer.
func (b *Buffer) Rank() int { return b.shape.Rank() }

// Dim returns the dimension of the given axis. Negative axes count from the end.
func (b *Buffer) Dim(axis int) int { return b.shape.Dim(axis) }

// Stride returns the stride, in elements, of the given axis. Negative axes count from the end.
func (b *Buffer) Stride(axis int) int {
	adjustedAxis, err := b.shape.AdjustAxis(axis)
	if err != nil {
		exceptions.Panicf("Buffer.Stride(%d): %v", axis, err)
	}
	return b.strides[adjustedAxis]
}

// Strides returns a copy of the per-axis strides, in elements.
func (b *Buffer) Strides() []int { return slices.Clone(b.strides) }

// Flat returns the flat slice backing the buffer: a slice of the Go type of DType.
func (b *Buffer) Flat() any { return b.flat }

// Valid returns whether the buffer is still usable: buffers returned to a Pool are invalidated.
func (b *Buffer) Valid() bool { return b != nil && b.valid && b.flat != nil }

// flatLen returns the length of the flat slice.
func (b *Buffer) flatLen() int {
	return reflect.ValueOf(b.flat).Len()
}

// IsContiguous returns whether the buffer has a row-major (C-order) layout, and its flat slice covers
// exactly its elements.
func (b *Buffer) IsContiguous() bool {
	if b.flatLen() != b.shape.Size() {
		return false
	}
	return b.shape.Rank() == 0 || b.IsContiguousFrom(0)
}

// IsContiguousFrom returns whether the axes at and after the given axis are laid out contiguously:
// the stride of each of those axes equals the product of the dimensions of the axes after it.
func (b *Buffer) IsContiguousFrom(axis int) bool {
	adjustedAxis, err := b.shape.AdjustAxis(axis)
	if err != nil {
		return false
	}
	expected := 1
	for d := b.shape.Rank() - 1; d >= adjustedAxis; d-- {
		if b.strides[d] != expected {
			return false
		}
		expected *= b.shape.Dimensions[d]
	}
	return true
}

// Bytes returns the raw bytes of the flat data, without copying.
// It works with any of the supported dtypes, and it returns nil for an empty buffer.
func (b *Buffer) Bytes() []byte {
	v := reflect.ValueOf(b.flat)
	if v.Len() == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(v.UnsafePointer()), v.Len()*int(b.shape.DType.Memory()))
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	if b == nil {
		return "Buffer(nil)"
	}
	return "Buffer" + b.shape.String()
}
