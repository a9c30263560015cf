// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package concat

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	c := must.M1(ParseConfig(""))
	require.Equal(t, DefaultConfig(), c)

	c = must.M1(ParseConfig(" executor=Highway , parallelism=3, grain=1024, validate=false "))
	require.Equal(t, Config{Parallelism: 3, GrainSize: 1024, Executor: ExecutorHighway, Validate: false}, c)

	c = must.M1(ParseConfig("sequential"))
	require.Equal(t, ExecutorSequential, c.Executor)

	for _, bad := range []string{"grain=0", "grain=x", "parallelism=many", "executor=gpu", "validate=maybe", "foo=1", "parallelism"} {
		_, err := ParseConfig(bad)
		require.Error(t, err, "config %q", bad)
	}

	_, err := New("executor=gpu")
	require.Error(t, err)
	_, err = NewFromConfig(Config{GrainSize: 0})
	require.Error(t, err)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(ConfigEnv, "sequential,grain=8")
	k := must.M1(NewFromEnv())
	defer k.Finalize()
	require.Equal(t, ExecutorSequential, k.Config().Executor)
	require.Equal(t, 8, k.Config().GrainSize)

	t.Setenv(ConfigEnv, "grain=-1")
	_, err := NewFromEnv()
	require.ErrorContains(t, err, ConfigEnv)
}
