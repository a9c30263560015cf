// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package buffers

import (
	"github.com/pkg/errors"
)

// Contiguous returns a row-major (contiguous) version of the buffer.
//
// If the buffer is already contiguous, it is returned itself. Otherwise, a new buffer is allocated and the
// elements are copied from the strided layout. The bits of each element are copied as is.
func (b *Buffer) Contiguous() (*Buffer, error) {
	if !b.Valid() {
		return nil, errors.New("Buffer.Contiguous: buffer is nil or invalid")
	}
	if b.IsContiguous() {
		return b, nil
	}
	output := newContiguous(b.shape.Clone())
	elemSize := int(b.shape.DType.Memory())
	src, dst := b.Bytes(), output.Bytes()
	for flatIdx, offset := range b.shape.IterStrided(b.strides) {
		copy(dst[flatIdx*elemSize:(flatIdx+1)*elemSize], src[offset*elemSize:(offset+1)*elemSize])
	}
	return output, nil
}
