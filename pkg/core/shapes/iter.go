// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"iter"

	"github.com/gomlx/exceptions"
)

// Iter iterates sequentially, in row-major order, over all indices of the shape.
//
// It yields the flat index (counter) and a slice of indices for each axis. The yielded indices are owned by
// the iterator: don't change them inside the loop. Zero-size shapes yield nothing, and a scalar yields once.
func (s Shape) Iter() iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		for pos, indices := range s.iterWithOffsets(nil) {
			if !yield(pos.flat, indices) {
				return
			}
		}
	}
}

// IterStrided iterates sequentially, in row-major order, over all elements of the shape laid out with the
// given strides (in elements).
//
// It yields the flat index (counter) and the offset of the element in the strided layout.
// It panics if len(strides) != s.Rank().
func (s Shape) IterStrided(strides []int) iter.Seq2[int, int] {
	if len(strides) != s.Rank() {
		exceptions.Panicf("Shape.IterStrided given %d strides, want it to be equal to the rank %d", len(strides), s.Rank())
	}
	return func(yield func(int, int) bool) {
		for pos := range s.iterWithOffsets(strides) {
			if !yield(pos.flat, pos.offset) {
				return
			}
		}
	}
}

type iterPosition struct {
	flat, offset int
}

// iterWithOffsets is an N-dimensional counter: the last axis changes fastest, and offset is
// kept up to date incrementally with the strides, if given.
func (s Shape) iterWithOffsets(strides []int) iter.Seq2[iterPosition, []int] {
	return func(yield func(iterPosition, []int) bool) {
		if !s.Ok() || s.IsZeroSize() {
			return
		}
		rank := s.Rank()
		indices := make([]int, rank)
		var pos iterPosition
	yielder:
		for {
			if !yield(pos, indices) {
				return
			}
			pos.flat++
			for axis := rank - 1; axis >= 0; axis-- {
				indices[axis]++
				if strides != nil {
					pos.offset += strides[axis]
				}
				if indices[axis] < s.Dimensions[axis] {
					continue yielder
				}
				// Carry over to the previous axis.
				if strides != nil {
					pos.offset -= indices[axis] * strides[axis]
				}
				indices[axis] = 0
			}
			// The first axis overflowed: done.
			return
		}
	}
}
