// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package concat

import (
	"github.com/gomlx/catkernel/pkg/core/buffers"
	"github.com/pkg/errors"
)

// InputRecord is what the copy loop needs to know about one input.
type InputRecord struct {
	// Flat is the input's flat slice (a slice of the dtype's Go type).
	Flat any

	// InnerSize is the number of contiguous elements the input contributes to each outer group:
	// its dimension on the concatenation axis times its stride on that axis.
	InnerSize int
}

// Partition of a concatenation into independent outer groups.
//
// Outer group i of the output starts at i*OutputGroupStride, and it is the concatenation, in input order,
// of the runs [i*InnerSize, (i+1)*InnerSize) of each input. Outer groups don't overlap, so they can be
// copied in parallel.
type Partition struct {
	// OuterCount is the number of outer groups: the product of the output dimensions of the axes
	// before the concatenation axis.
	OuterCount int

	// OutputGroupStride is the distance, in elements, between consecutive outer groups in the output.
	OutputGroupStride int

	// Inputs holds one record per input, in input order.
	Inputs []InputRecord
}

// NewPartition computes the partition for concatenating inputs into output along axis.
//
// axis must be already normalized to [0, rank), and the buffers are assumed contiguous from axis on:
// no validation is performed, see Validate.
func NewPartition(output *buffers.Buffer, inputs []*buffers.Buffer, axis int) *Partition {
	p := &Partition{
		OutputGroupStride: output.Dim(axis) * output.Stride(axis),
		Inputs:            make([]InputRecord, len(inputs)),
	}
	if p.OutputGroupStride > 0 {
		p.OuterCount = output.Shape().Size() / p.OutputGroupStride
	}
	for i, input := range inputs {
		p.Inputs[i] = InputRecord{
			Flat:      input.Flat(),
			InnerSize: input.Dim(axis) * input.Stride(axis),
		}
	}
	return p
}

// Check verifies that the inputs' inner runs exactly fill an output group.
func (p *Partition) Check() error {
	sum := 0
	for _, record := range p.Inputs {
		sum += record.InnerSize
	}
	if sum != p.OutputGroupStride {
		return errors.Errorf("concatenation inputs contribute %d elements per outer group, but the output group stride is %d",
			sum, p.OutputGroupStride)
	}
	return nil
}
