// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package concat

import (
	"github.com/ajroetker/go-highway/hwy"
)

// copyRun copies len(src) contiguous elements from src to dst.
//
// Runs shorter than one SIMD register (lanes elements) are copied element by element;
// longer runs are moved in full-register chunks, and the tail element by element.
// Both paths copy the exact same bits.
func copyRun[T hwy.Lanes](dst, src []T, lanes int) {
	n := len(src)
	if n < lanes {
		copyScalar(dst[:n], src)
		return
	}
	full := n - n%lanes
	copy(dst[:full], src[:full])
	copyScalar(dst[full:n], src[full:])
}

// copyScalar copies element by element, unrolled 4 times. len(dst) must be >= len(src).
func copyScalar[T any](dst, src []T) {
	dst = dst[:len(src)]
	i := 0
	for ; i+4 <= len(src); i += 4 {
		dst[i] = src[i]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+2]
		dst[i+3] = src[i+3]
	}
	for ; i < len(src); i++ {
		dst[i] = src[i]
	}
}

// lanesFor returns the number of elements of T in one SIMD register of the running CPU, at least 1.
func lanesFor[T hwy.Lanes]() int {
	return max(hwy.MaxLanes[T](), 1)
}
