// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simplepool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aclements/gctrace"
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/simplepool"
)

func newFixture(t *testing.T) (*gctrace.Arena, *simplepool.SimplePool, *simplepool.SimpleRoot, *simplepool.SimpleShield) {
	t.Helper()
	shield := simplepool.NewShield()
	ld := simplepool.NewLD()
	arena := gctrace.NewArena(4, shield, ld, 1, gctrace.DefaultConfig())
	pool := simplepool.New(arena)
	root := simplepool.NewRoot(arena, rank.Exact, 1)
	return arena, pool, root, shield
}

func runToFinish(t *testing.T, tr *gctrace.Trace) {
	t.Helper()
	for i := 0; i < 10000 && tr.State() != gctrace.StateFinished; i++ {
		require.NoError(t, gctrace.Step(tr))
	}
	require.Equal(t, gctrace.StateFinished, tr.State())
}

// A reachable object survives condemnation: it's found via the root,
// un-whitened during scan, and Reclaim leaves it alone.
func TestReachableObjectSurvives(t *testing.T) {
	arena, pool, root, _ := newFixture(t)

	live := pool.NewObject(pool, 0)
	root.Set(0, live)

	tr, err := gctrace.Create(arena)
	require.NoError(t, err)

	require.NoError(t, gctrace.CondemnRefSet(tr, arena.RefSetOfSeg(live)))
	require.NoError(t, gctrace.Start(tr))

	runToFinish(t, tr)

	require.False(t, live.White().IsMember(tr.ID()), "reachable object should have been un-whitened")
	require.Equal(t, uint64(0), tr.Stats().ReclaimCount)
	gctrace.Destroy(tr)
}

// An object with nothing pointing at it is garbage: Reclaim frees its
// segment and removes it from the arena entirely.
func TestUnreachableObjectReclaimed(t *testing.T) {
	arena, pool, _, _ := newFixture(t)

	garbage := pool.NewObject(pool, 0)

	tr, err := gctrace.Create(arena)
	require.NoError(t, err)

	require.NoError(t, gctrace.CondemnRefSet(tr, arena.RefSetOfSeg(garbage)))
	require.NoError(t, gctrace.Start(tr))

	runToFinish(t, tr)

	require.Equal(t, uint64(1), tr.Stats().ReclaimCount)
	require.EqualValues(t, garbage.Size(), tr.Stats().ReclaimSize)

	_, ok := arena.SegOfAddr(garbage.Base())
	require.False(t, ok, "reclaimed segment must no longer be addressable")

	gctrace.Destroy(tr)
}

// An object reachable only transitively, through another condemned object,
// still survives: Scan must follow the chain, not just the root.
func TestTransitiveReachabilitySurvives(t *testing.T) {
	arena, pool, root, _ := newFixture(t)

	child := pool.NewObject(pool, 0)
	parent := pool.NewObject(pool, 1)
	pool.SetRef(parent, 0, child)
	root.Set(0, parent)

	tr, err := gctrace.Create(arena)
	require.NoError(t, err)

	condemned := arena.RefSetOfSeg(parent).Union(arena.RefSetOfSeg(child))
	require.NoError(t, gctrace.CondemnRefSet(tr, condemned))
	require.NoError(t, gctrace.Start(tr))

	runToFinish(t, tr)

	require.Equal(t, uint64(0), tr.Stats().ReclaimCount)
	gctrace.Destroy(tr)
}

// A pool failure during Fix leaves the segment grey rather than crashing
// the collection; Poll escalates to emergency mode and the retry succeeds.
// The injected failure fires while scanning parent (a Step, after the flip
// has already completed), not during the root scan inside Start itself —
// Start/flip have no emergency-retry path of their own; only the Step loop
// Poll drives does.
func TestInjectedFailureEscalatesToEmergency(t *testing.T) {
	arena, pool, root, _ := newFixture(t)

	inj := simplepool.NewInjecting(pool, 1)
	child := pool.NewObject(inj, 0)
	parent := pool.NewObject(pool, 1)
	pool.SetRef(parent, 0, child)
	root.Set(0, parent)

	tr, err := gctrace.Create(arena)
	require.NoError(t, err)

	condemned := arena.RefSetOfSeg(parent).Union(arena.RefSetOfSeg(child))
	require.NoError(t, gctrace.CondemnRefSet(tr, condemned))
	require.NoError(t, gctrace.Start(tr))

	for i := 0; i < 10000 && tr.State() != gctrace.StateFinished; i++ {
		gctrace.Poll(tr)
	}

	require.Equal(t, gctrace.StateFinished, tr.State())
	require.True(t, tr.Emergency())
	require.False(t, child.White().IsMember(tr.ID()))
	require.False(t, parent.White().IsMember(tr.ID()))
	gctrace.Destroy(tr)
}

// A write fault widens the faulted segment's summary to the universe
// instead of tracking the specific reference stored.
func TestAccessWriteWidensSummary(t *testing.T) {
	arena, pool, _, _ := newFixture(t)

	obj := pool.NewObject(pool, 1)
	obj.SetSM(gctrace.AccessWrite)

	require.NoError(t, gctrace.Access(arena, obj, gctrace.AccessWrite))

	require.True(t, obj.Summary().Equal(refset.Univ()))
	require.Equal(t, gctrace.AccessMode(0), obj.SM())
}
