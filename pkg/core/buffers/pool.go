// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package buffers

import (
	"reflect"
	"sync"

	"github.com/gomlx/catkernel/pkg/core/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Pool allocates contiguous buffers, reusing the ones returned with Put.
//
// It is safe for concurrent use. The zero value is ready to use.
type Pool struct {
	// pools maps poolKey to *sync.Pool.
	pools sync.Map
}

type poolKey struct {
	dtype  dtypes.DType
	length int
}

// getPool for the given dtype/length.
func (p *Pool) getPool(dtype dtypes.DType, length int) *sync.Pool {
	key := poolKey{dtype: dtype, length: length}
	poolInterface, ok := p.pools.Load(key)
	if !ok {
		poolInterface, _ = p.pools.LoadOrStore(key, &sync.Pool{
			New: func() interface{} {
				return &Buffer{
					flat:  reflect.MakeSlice(reflect.SliceOf(dtype.GoType()), length, length).Interface(),
					shape: shapes.Make(dtype, length),
				}
			},
		})
	}
	return poolInterface.(*sync.Pool)
}

// Get returns a contiguous buffer for the given shape.
//
// The contents of the buffer are undefined: it may hold values of a previous use.
func (p *Pool) Get(shape shapes.Shape) (*Buffer, error) {
	if !shape.Ok() {
		return nil, errors.Errorf("buffers.Pool.Get: invalid shape %s", shape)
	}
	buf := p.getPool(shape.DType, shape.Size()).Get().(*Buffer)
	buf.shape = shape.Clone()
	buf.strides = shape.Strides()
	buf.valid = true
	return buf, nil
}

// Put returns the buffer to the pool. After this any references to the buffer should be dropped.
//
// Only contiguous buffers are pooled: views created with FromFlatWithStrides are simply invalidated.
func (p *Pool) Put(buffer *Buffer) {
	if !buffer.Valid() {
		klog.Warningf("buffers.Pool.Put(%p): buffer already invalid", buffer)
		return
	}
	buffer.valid = false
	if !buffer.IsContiguous() {
		return
	}
	p.getPool(buffer.shape.DType, buffer.shape.Size()).Put(buffer)
}
