// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package concat

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ConfigEnv is the environment variable read by NewFromEnv, with a configuration in the format
// accepted by ParseConfig.
const ConfigEnv = "CATKERNEL_CONFIG"

// Executor names accepted in the configuration.
const (
	ExecutorPool       = "pool"
	ExecutorHighway    = "highway"
	ExecutorSequential = "sequential"
)

// Config of a Kernel.
type Config struct {
	// Parallelism is the soft limit of parallel tasks: 0 runs everything in the caller's goroutine, -1 is
	// unlimited. For the "highway" executor it is the number of persistent workers (<= 0 uses GOMAXPROCS).
	Parallelism int

	// GrainSize is the amount of work, in elements copied, assigned at least to each parallel task.
	GrainSize int

	// Executor is the parallel-for implementation: "pool" (default), "highway" or "sequential".
	Executor string

	// Validate inputs and output before running the kernel. If false, invalid inputs lead to undefined behavior.
	Validate bool
}

// DefaultConfig returns the configuration used for an empty configuration string.
func DefaultConfig() Config {
	return Config{
		Parallelism: runtime.NumCPU(),
		GrainSize:   DefaultGrainSize,
		Executor:    ExecutorPool,
		Validate:    true,
	}
}

// ParseConfig parses a comma-separated list of options over the DefaultConfig. Options:
//
//   - "parallelism=<int>": see Config.Parallelism.
//   - "grain=<int>": see Config.GrainSize, must be > 0.
//   - "executor=pool|highway|sequential": see Config.Executor.
//   - "validate=<bool>": see Config.Validate.
//   - "sequential": shortcut for "executor=sequential".
//
// Example: "executor=highway,parallelism=8,grain=65536".
func ParseConfig(config string) (Config, error) {
	c := DefaultConfig()
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !hasValue {
			if key == ExecutorSequential {
				c.Executor = ExecutorSequential
				continue
			}
			return c, errors.Errorf("configuration option %q requires a value (e.g. %q)", part, key+"=...")
		}
		var err error
		switch key {
		case "parallelism":
			c.Parallelism, err = strconv.Atoi(value)
		case "grain":
			c.GrainSize, err = strconv.Atoi(value)
			if err == nil && c.GrainSize <= 0 {
				err = errors.Errorf("must be > 0")
			}
		case "executor":
			value = strings.ToLower(value)
			switch value {
			case ExecutorPool, ExecutorHighway, ExecutorSequential:
				c.Executor = value
			default:
				err = errors.Errorf("unknown executor, valid values are %q, %q and %q", ExecutorPool, ExecutorHighway, ExecutorSequential)
			}
		case "validate":
			c.Validate, err = strconv.ParseBool(value)
		default:
			return c, errors.Errorf("unknown configuration option %q for the concatenation kernel", key)
		}
		if err != nil {
			return c, errors.WithMessagef(err, "invalid value %q for configuration option %q", value, key)
		}
	}
	return c, nil
}

// configFromEnv returns the configuration string from ConfigEnv, or "" if it is not set.
func configFromEnv() string {
	return os.Getenv(ConfigEnv)
}
