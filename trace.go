// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import (
	"github.com/aclements/gctrace/internal/invariant"
	"github.com/aclements/gctrace/internal/tracelog"
	"github.com/aclements/gctrace/refset"
)

// State is a Trace's position in its lifecycle.
type State int

const (
	StateInit State = iota
	StateUnflipped
	StateFlipped
	StateReclaim
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateUnflipped:
		return "UNFLIPPED"
	case StateFlipped:
		return "FLIPPED"
	case StateReclaim:
		return "RECLAIM"
	case StateFinished:
		return "FINISHED"
	default:
		return "INVALID"
	}
}

// Stats holds every observable counter spec.md §6 names for a Trace.
type Stats struct {
	RootScan Counts
	SegScan  Counts
	Single   Counts

	FaultCount    uint64
	ReclaimCount  uint64
	ReclaimSize   uint64
	Condemned     uint64
	Foundation    uint64
	Rate          uint64
}

// A Trace is one collection cycle: its identity, condemned set, colouring
// state, and statistics. Trace storage is embedded in the Arena (see
// Arena.traces) so creating one never touches the heap — spec.md §4.2 calls
// this out as deliberate: a collection must be startable even under memory
// exhaustion.
type Trace struct {
	arena *Arena
	ti    int
	valid bool // installed validity signature; false for unused/destroyed slots

	state State

	white   refset.Set
	mayMove refset.Set

	condemned  uint64
	foundation uint64
	rate       uint64
	emergency  bool

	stats Stats
	log   tracelog.Log
}

// Arena returns the arena this trace belongs to.
func (t *Trace) Arena() *Arena { return t.arena }

// ID returns this trace's small-integer identity, its index into the
// arena's TraceSet bitmasks.
func (t *Trace) ID() int { return t.ti }

// State returns the trace's current lifecycle state.
func (t *Trace) State() State { return t.state }

// White returns the trace's current approximation of its condemned set.
func (t *Trace) White() refset.Set { return t.white }

// MayMove returns the subset of White that a moving pool might relocate.
func (t *Trace) MayMove() refset.Set { return t.mayMove }

// Emergency reports whether this trace has escalated to emergency mode,
// causing every subsequent ScanState it creates to dispatch Fix calls to
// FixEmergency.
func (t *Trace) Emergency() bool { return t.emergency }

// Stats returns a snapshot of the trace's observable counters.
func (t *Trace) Stats() Stats {
	s := t.stats
	s.Condemned = t.condemned
	s.Foundation = t.foundation
	s.Rate = t.rate
	return s
}

// Log returns the trace's ambient event log, for debugging.
func (t *Trace) Log() *tracelog.Log { return &t.log }

// Create starts a new collection on arena. It scans the arena's fixed pool
// of trace slots for the first one that isn't busy, marks it busy, and
// returns it in state INIT with every field zeroed. It fails with ErrLimit
// if every slot is busy; this is the only way Create can fail, and it never
// allocates, so a collection can always be started under memory pressure.
func Create(arena *Arena) (*Trace, error) {
	for ti := 0; ti < arena.traceMax; ti++ {
		if arena.busyTraces.IsMember(ti) {
			continue
		}
		arena.busyTraces = arena.busyTraces.Add(ti)
		t := &arena.traces[ti]
		*t = Trace{arena: arena, ti: ti, valid: true, state: StateInit}
		t.log.Tracef("created")
		return t, nil
	}
	return nil, ErrLimit
}

// Destroy retires t. t must be FINISHED.
func Destroy(t *Trace) {
	invariant.Check(t.valid, "trace already destroyed")
	invariant.Check(t.state == StateFinished, "Destroy requires FINISHED, got %v", t.state)
	t.valid = false
	t.arena.busyTraces = t.arena.busyTraces.Del(t.ti)
	t.arena.flippedTraces = t.arena.flippedTraces.Del(t.ti)
}
