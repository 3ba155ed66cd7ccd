// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcmetrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/aclements/gctrace"
	"github.com/aclements/gctrace/gcmetrics"
	"github.com/aclements/gctrace/simplepool"
)

func TestObserveReportsReclaim(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := gcmetrics.NewRegistry(reg)

	shield := simplepool.NewShield()
	ld := simplepool.NewLD()
	arena := gctrace.NewArena(4, shield, ld, 1, gctrace.DefaultConfig())
	pool := simplepool.New(arena)
	garbage := pool.NewObject(pool, 0) // unreferenced: becomes garbage

	tr, err := gctrace.Create(arena)
	require.NoError(t, err)
	require.NoError(t, gctrace.CondemnRefSet(tr, arena.RefSetOfSeg(garbage)))
	require.NoError(t, gctrace.Start(tr))

	for i := 0; i < 10000 && tr.State() != gctrace.StateFinished; i++ {
		require.NoError(t, gctrace.Step(tr))
	}

	m.Observe("t", tr)

	families, err := reg.Gather()
	require.NoError(t, err)

	var reclaimCount float64
	found := false
	for _, fam := range families {
		if fam.GetName() != "gctrace_reclaim_count_total" {
			continue
		}
		found = true
		reclaimCount = fam.Metric[0].GetCounter().GetValue()
	}
	require.True(t, found, "expected gctrace_reclaim_count_total to be registered")
	require.Equal(t, float64(1), reclaimCount)
}
