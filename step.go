// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import (
	"github.com/aclements/gctrace/internal/invariant"
	"github.com/aclements/gctrace/traceset"
)

// Step advances t by exactly one phase:
//
//	INIT      no-op
//	FLIPPED   scan one grey segment if one exists, else move to RECLAIM
//	RECLAIM   reclaim the whole arena, then move to FINISHED
//	FINISHED  no-op
//
// UNFLIPPED is unreachable in this core: Start already performs the flip
// before returning, so a Trace is never left in UNFLIPPED for a caller to
// observe. Only ResMEMORY- or ResRESOURCE-wrapped errors may come back from
// Step; anything else reaching here is a programming error and panics via
// internal/invariant instead.
func Step(t *Trace) error {
	switch t.state {
	case StateInit:
		return nil

	case StateUnflipped:
		// Unreachable in this core: Start flips synchronously. Kept as
		// documentation for a future lazy-flip path (spec.md §9(b)),
		// not as live behavior.
		invariant.Check(false, "UNFLIPPED is unreachable: Start always flips before returning")
		return nil

	case StateFlipped:
		seg, r, found := t.arena.traceFindGrey(t.ti)
		if !found {
			t.state = StateReclaim
			return nil
		}
		return Scan(traceset.Single(t.ti), r, t.arena, seg)

	case StateReclaim:
		return Reclaim(t)

	case StateFinished:
		return nil

	default:
		invariant.Check(false, "invalid trace state %v", t.state)
		return nil
	}
}

// Poll advances t by one bounded unit of work — a single Step — escalating
// to Expedite (which does run to FINISHED) on any error. Poll never returns
// an error: a Step failure (MEMORY or RESOURCE) is handled by switching the
// trace into emergency mode and retrying until FINISHED.
//
// Callers drive a trace to completion by calling Poll repeatedly,
// interleaved with mutator work, until t.State() reports FINISHED; Poll
// itself does no looping on the success path, so each call does one
// segment's worth of scanning (or the whole reclaim phase) and returns.
func Poll(t *Trace) {
	if t.state == StateFinished {
		return
	}
	if err := Step(t); err != nil {
		Expedite(t)
	}
}

// Expedite sets t into emergency mode — causing every ScanState it creates
// from now on to dispatch Fix to FixEmergency, which must never fail — and
// then drives Step until t reaches FINISHED. Expedite must not be called
// from state INIT: nothing has been condemned yet, so expediting would not
// make progress.
func Expedite(t *Trace) {
	invariant.Check(t.state != StateInit, "Expedite from INIT would not make progress")
	t.emergency = true
	t.log.Tracef("expedited: entering emergency mode")
	for t.state != StateFinished {
		if err := Step(t); err != nil {
			// FixEmergency must never fail; a second failure here is
			// a contract violation in the pool implementation.
			invariant.Check(false, "Step failed again under emergency mode: %v", err)
		}
	}
}
