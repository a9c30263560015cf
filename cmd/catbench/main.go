// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// catbench concatenates randomly filled buffers with the parallel concatenation kernel, and compares it with
// the sequential execution of the same kernel: the outputs must be byte-identical.
//
// Example:
//
//	catbench -dims=256,0,512 -axis=1 -extents=16,32,8 -dtype=bfloat16 -config="executor=highway"
//
// Set -v=1 (klog) to log the kernel configuration and the SIMD target detected.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gomlx/catkernel/pkg/kernels/concat"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagDims = flag.String("dims", "128,0,1024",
		"Comma-separated dimensions of the inputs. The dimension on -axis is ignored and taken from -extents instead.")
	flagAxis    = flag.Int("axis", 1, "Concatenation axis. Negative values count from the end.")
	flagExtents = flag.String("extents", "8,24,3,1",
		"Comma-separated dimensions of each input on the concatenation axis: one input is created per value.")
	flagDType = flag.String("dtype", "float32", "DType of the buffers, e.g. float32, bfloat16, int8, bool, complex128.")
	flagConfig = flag.String("config", "",
		fmt.Sprintf("Kernel configuration, e.g. \"executor=highway,grain=65536\". If empty, $%s is used.", concat.ConfigEnv))
	flagRepeats = flag.Int("repeats", 20, "Number of times each kernel is run.")
	flagUnicode = flag.Bool("unicode", false, "Use unicode symbols in the progress bar.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q. See 'catbench -help'.", flag.Args())
		os.Exit(1)
	}

	benchmark, err := newBenchmarkFromFlags()
	if err != nil {
		klog.Errorf("catbench: %+v", err)
		os.Exit(1)
	}

	var kernel *concat.Kernel
	if *flagConfig != "" {
		kernel = must.M1(concat.New(*flagConfig))
	} else {
		kernel = must.M1(concat.NewFromEnv())
	}
	defer kernel.Finalize()
	sequential := must.M1(concat.New("sequential"))
	defer sequential.Finalize()

	fmt.Println(titleStyle.Render(fmt.Sprintf("Concatenating %s", benchmark)))
	results := []*result{
		must.M1(benchmark.run("sequential", sequential, *flagRepeats)),
		must.M1(benchmark.run(configName(kernel.Config()), kernel, *flagRepeats)),
	}
	matches := compareOutputs(results[0], results[1])
	fmt.Println(resultsTable(results, matches).Render())
	if !matches {
		klog.Errorf("catbench: parallel output differs from the sequential output")
		os.Exit(1)
	}
}
