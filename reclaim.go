// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import "github.com/aclements/gctrace/internal/invariant"

// Reclaim frees the storage of every segment still white for t. t must be
// in state RECLAIM. Every such segment's pool must have the GC attribute;
// the pool is responsible for either freeing the segment or un-whitening
// it (spec.md §8 scenario 2: a surviving segment comes back non-white
// rather than freed). Reclaim always finishes t: state becomes FINISHED.
func Reclaim(t *Trace) error {
	invariant.Check(t.state == StateReclaim, "Reclaim requires RECLAIM, got %v", t.state)

	// Pool.Reclaim may remove seg from the arena, which shifts the arena's
	// segment slice in place, so iterate over a copy.
	segs := append([]*Segment(nil), t.arena.Segments()...)
	for _, seg := range segs {
		if !seg.White().IsMember(t.ti) {
			continue
		}
		invariant.Check(seg.Pool().Attrs().Has(AttrGC),
			"white segment's pool must have the GC attribute")

		sizeBefore := uint64(seg.Size())
		seg.Pool().Reclaim(t, seg)
		invariant.Check(!seg.White().IsMember(t.ti),
			"segment still white for trace %d after Reclaim", t.ti)

		t.stats.ReclaimCount++
		t.stats.ReclaimSize += sizeBefore
	}

	t.state = StateFinished
	return nil
}
