// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aclements/gctrace"
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/simplepool"
)

func newTestArena(t *testing.T) *gctrace.Arena {
	t.Helper()
	shield := simplepool.NewShield()
	ld := simplepool.NewLD()
	return gctrace.NewArena(4, shield, ld, 1, gctrace.DefaultConfig())
}

// Condemning an empty RefSet is a contract violation, matching the
// original's AVER on a non-empty condemn set, not a recoverable failure.
func TestCondemnEmptySetPanics(t *testing.T) {
	arena := newTestArena(t)
	tr, err := gctrace.Create(arena)
	require.NoError(t, err)

	require.Panics(t, func() {
		gctrace.CondemnRefSet(tr, refset.Empty())
	})
}

// With TRACE_MAX == 1, a second Create before the first Trace is destroyed
// fails with ErrLimit rather than allocating or blocking.
func TestCreateFailsAtTraceLimit(t *testing.T) {
	arena := newTestArena(t)

	tr1, err := gctrace.Create(arena)
	require.NoError(t, err)

	_, err = gctrace.Create(arena)
	require.ErrorIs(t, err, gctrace.ErrLimit)

	pool := simplepool.New(arena)
	obj := pool.NewObject(pool, 0)
	require.NoError(t, gctrace.CondemnRefSet(tr1, arena.RefSetOfSeg(obj)))
	require.NoError(t, gctrace.Start(tr1))
	for tr1.State() != gctrace.StateFinished {
		require.NoError(t, gctrace.Step(tr1))
	}
	gctrace.Destroy(tr1)

	// The slot is free again.
	tr2, err := gctrace.Create(arena)
	require.NoError(t, err)
	require.Equal(t, 0, tr2.ID())
}

// Destroy requires a trace to have finished; calling it early is a
// programming error, not a recoverable one.
func TestDestroyRequiresFinished(t *testing.T) {
	arena := newTestArena(t)
	tr, err := gctrace.Create(arena)
	require.NoError(t, err)

	require.Panics(t, func() {
		gctrace.Destroy(tr)
	})
}

// A mutator read of a segment that's still grey for the active trace faults
// into Access, which scans the segment (discovering anything it keeps
// alive) before letting the access proceed, and drops the read barrier.
func TestAccessReadFaultScansGreySegment(t *testing.T) {
	arena := newTestArena(t)
	pool := simplepool.New(arena)
	root := simplepool.NewRoot(arena, rank.Exact, 1)

	child := pool.NewObject(pool, 0)
	parent := pool.NewObject(pool, 1)
	pool.SetRef(parent, 0, child)
	root.Set(0, parent)

	tr, err := gctrace.Create(arena)
	require.NoError(t, err)

	condemned := arena.RefSetOfSeg(parent).Union(arena.RefSetOfSeg(child))
	require.NoError(t, gctrace.CondemnRefSet(tr, condemned))
	require.NoError(t, gctrace.Start(tr)) // performs the flip

	// The flip's root scan already found parent reachable (un-whitened
	// it) but left it grey for its own contents to be scanned, and
	// raised a read barrier on it since it was newly grey.
	require.False(t, parent.White().IsMember(tr.ID()))
	require.True(t, parent.Grey().IsMember(tr.ID()))
	require.NotZero(t, parent.SM()&gctrace.AccessRead)

	require.NoError(t, gctrace.Access(arena, parent, gctrace.AccessRead))

	require.Zero(t, parent.SM()&gctrace.AccessRead)
	require.False(t, parent.Grey().IsMember(tr.ID()), "Access should have scanned and blackened parent")
	require.False(t, child.White().IsMember(tr.ID()), "scanning parent should have found child reachable")
	require.EqualValues(t, 1, tr.Stats().FaultCount)

	for tr.State() != gctrace.StateFinished {
		require.NoError(t, gctrace.Step(tr))
	}
	require.EqualValues(t, 0, tr.Stats().ReclaimCount)
	gctrace.Destroy(tr)
}
