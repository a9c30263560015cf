// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dispatcher implements a table that maps a dtype to the instance of a generic function
// for the corresponding Go type.
//
// Tables are filled once, usually in an init() function, and then are read-only: Dispatch is
// safe for concurrent use.
package dispatcher

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Func is the type of functions that the DTypeDispatcher can handle.
type Func func(params ...any)

// MaxDTypes is the size of the dispatch table: dtypes with a larger enum value are not supported.
const MaxDTypes = 32

// DTypeDispatcher calls the function registered for a dtype.
type DTypeDispatcher struct {
	Name  string
	fnMap [MaxDTypes]Func
}

// New creates a new dispatcher for a class of functions.
func New(name string) *DTypeDispatcher {
	return &DTypeDispatcher{
		Name: name,
	}
}

// Dispatch calls the function that matches the dtype.
// It panics (with exceptions.Panicf) if the dtype is not supported.
func (d *DTypeDispatcher) Dispatch(dtype dtypes.DType, params ...any) {
	if !d.IsSupported(dtype) {
		exceptions.Panicf("dtype %s not supported by %s", dtype, d.Name)
	}
	d.fnMap[dtype](params...)
}

// IsSupported returns whether a function was registered for the dtype.
func (d *DTypeDispatcher) IsSupported(dtype dtypes.DType) bool {
	return dtype >= 0 && dtype < MaxDTypes && d.fnMap[dtype] != nil
}

// Supported returns the list of dtypes with a registered function, in enum order.
func (d *DTypeDispatcher) Supported() []dtypes.DType {
	var supported []dtypes.DType
	for dtype, fn := range d.fnMap {
		if fn != nil {
			supported = append(supported, dtypes.DType(dtype))
		}
	}
	return supported
}

// Register a function to handle a specific dtype.
// This overwrites any previous setting for the same dtype.
func (d *DTypeDispatcher) Register(dtype dtypes.DType, fn Func) {
	if dtype < 0 || dtype >= MaxDTypes {
		exceptions.Panicf("dtype %s not supported by %s", dtype, d.Name)
	}
	d.fnMap[dtype] = fn
}

// RegisterIfNotSet registers a function to handle a specific dtype, if one is not registered yet.
func (d *DTypeDispatcher) RegisterIfNotSet(dtype dtypes.DType, fn Func) {
	if dtype < 0 || dtype >= MaxDTypes {
		exceptions.Panicf("dtype %s not supported by %s", dtype, d.Name)
	}
	if d.fnMap[dtype] != nil {
		return
	}
	d.fnMap[dtype] = fn
}
