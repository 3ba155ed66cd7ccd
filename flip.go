// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import (
	"github.com/aclements/gctrace/internal/invariant"
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/traceset"
)

// Start begins the collection t was condemned for. t must be in state
// INIT. If t's white set is empty there is nothing to do: Start marks t
// flipped and finished immediately with rate 1 and zero foundation.
// Otherwise Start computes the foundation (every segment or root that
// might hold a reference into white), the work rate, transitions to
// UNFLIPPED, and performs the flip (see Flip) before returning.
func Start(t *Trace) error {
	invariant.Check(t.state == StateInit, "Start requires INIT, got %v", t.state)

	if t.white.IsEmpty() {
		t.arena.flippedTraces = t.arena.flippedTraces.Add(t.ti)
		t.state = StateFinished
		t.rate = 1
		t.log.Tracef("Start: white is empty, finishing immediately")
		return nil
	}

	for _, seg := range t.arena.Segments() {
		if seg.RankSet().IsEmpty() {
			continue
		}
		invariant.Check(seg.Pool().Attrs().Has(AttrScan),
			"segment with a non-empty rank set must belong to a scannable pool")
		if seg.Summary().Inter(t.white).IsEmpty() {
			continue
		}
		seg.Pool().Grey(t, seg)
		if seg.Grey().IsMember(t.ti) {
			t.foundation += uint64(seg.Size())
		}
	}

	for _, root := range t.arena.Roots() {
		if root.Summary().Inter(t.white).IsEmpty() {
			continue
		}
		root.Grey(t)
	}

	t.rate = computeRate(t.arena.config, t.foundation, t.condemned)

	t.state = StateUnflipped
	return flip(t)
}

// computeRate implements the §4.4 work-rate formula: assuming half the
// condemned set survives, and aiming to finish the collection within
// cfg.PollAllocBytes of mutator allocation, where cfg.BytesPerStep
// approximates bytes scanned per Step. The rate is always at least 1.
func computeRate(cfg Config, foundation, condemned uint64) uint64 {
	scan := foundation + condemned/2
	numerator := scan * cfg.ArenaPollMax
	denom := cfg.BytesPerStep * cfg.PollAllocBytes
	if denom == 0 {
		return 1
	}
	// Ceiling division without floating point.
	extra := (numerator + denom - 1) / denom
	return 1 + extra
}

// flip performs the actual colour flip: suspends the mutator, flushes
// every pool's allocation buffers, notifies LD if anything may move,
// scans every root in rank order, installs the read barrier on every
// newly-grey segment, then marks t FLIPPED and resumes the mutator.
func flip(t *Trace) error {
	a := t.arena
	a.shield.Suspend()
	defer a.shield.Resume()

	flushPoolBuffers(a)

	if !t.mayMove.IsEmpty() && a.ld != nil {
		a.ld.Age(t.mayMove)
	}

	for _, r := range rank.All() {
		ss := newScanState(a, traceset.Single(t.ti), r, t.white, t.emergency)
		for _, root := range a.Roots() {
			if root.Rank() != r {
				continue
			}
			ss.SetUnfixedSummary(refset.Empty())
			if err := root.Scan(ss); err != nil {
				t.stats.RootScan.Add(ss.Counts())
				return err
			}
			t.stats.RootScan.ScanCount++
		}
		t.stats.RootScan.Add(ss.Counts())
	}

	wasFlippedBefore := a.flippedTraces
	for _, r := range rank.All() {
		for _, seg := range a.greyRingSnapshot(r) {
			if !seg.Grey().IsMember(t.ti) {
				continue
			}
			if !seg.Grey().Inter(wasFlippedBefore).IsEmpty() {
				continue
			}
			a.shield.Raise(seg, AccessRead)
		}
	}

	t.state = StateFlipped
	a.flippedTraces = a.flippedTraces.Add(t.ti)
	return nil
}

// flushPoolBuffers terminates every pool's in-progress allocation buffers
// so their partial chunks become part of the tracked heap before the flip
// scans anything. Pool is the external interface of record; a pool class
// that uses allocation buffers implements buffer flushing as part of its
// own Whiten/Grey bookkeeping, since this core's Pool interface does not
// model buffers directly (they are, per spec.md §1, a pool-layer concern).
func flushPoolBuffers(a *Arena) {
	for _, p := range a.pools {
		if fp, ok := p.(interface{ FlushBuffers() }); ok {
			fp.FlushBuffers()
		}
	}
}
