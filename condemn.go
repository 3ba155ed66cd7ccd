// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import (
	"github.com/aclements/gctrace/internal/invariant"
	"github.com/aclements/gctrace/refset"
)

// AddWhite asks seg's pool to condemn seg for trace. seg must not already
// be white for trace. It delegates to Pool.Whiten; if the pool accepted
// (seg is now white for trace.ID()), AddWhite folds seg's RefSetOfSeg into
// trace.white, adds seg's size to trace.condemned, and — if the pool has
// the Moving attribute — also folds it into trace.mayMove. It returns
// whatever Whiten returned.
func AddWhite(t *Trace, seg *Segment) Res {
	invariant.Check(!seg.White().IsMember(t.ti), "segment already white for trace %d", t.ti)

	res := seg.Pool().Whiten(t, seg)
	if !seg.White().IsMember(t.ti) {
		return res
	}

	segRefSet := t.arena.RefSetOfSeg(seg)
	t.white = t.white.Union(segRefSet)
	t.condemned += uint64(seg.Size())
	if seg.Pool().Attrs().Has(AttrMoving) {
		t.mayMove = t.mayMove.Union(segRefSet)
	}
	return res
}

// CondemnRefSet selects a white set for t from condemnedSet: every segment
// whose pool has the GC attribute and whose RefSetOfSeg is entirely within
// condemnedSet is condemned via AddWhite. t must be in state INIT with an
// empty white set, and condemnedSet must not be empty — CondemnRefSet treats
// these as preconditions (contract violations), not recoverable failures,
// matching the original's AVER on an empty condemn set.
//
// Condemning only whole segments (rather than any segment merely
// overlapping condemnedSet) keeps the foundation from bloating with
// segments the caller only partially asked to condemn.
//
// On any pool failure, CondemnRefSet stops iterating and returns that
// error. Postcondition on success: t.White() is a subset of condemnedSet.
func CondemnRefSet(t *Trace, condemnedSet refset.Set) error {
	invariant.Check(t.state == StateInit, "CondemnRefSet requires INIT, got %v", t.state)
	invariant.Check(t.white.IsEmpty(), "CondemnRefSet requires an empty white set")
	invariant.Check(!condemnedSet.IsEmpty(), "condemnedSet must not be empty")

	for _, seg := range t.arena.Segments() {
		if !seg.Pool().Attrs().Has(AttrGC) {
			continue
		}
		if !t.arena.RefSetOfSeg(seg).Sub(condemnedSet) {
			continue
		}
		if res := AddWhite(t, seg); res != ResOK {
			return &ResError{Res: res, Reason: "pool declined to whiten segment"}
		}
	}
	return nil
}
