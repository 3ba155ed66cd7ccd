// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import (
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/traceset"
)

// Scan removes greyness from one segment for the given trace set. If seg's
// summary doesn't intersect the union of ts's white sets, seg cannot
// reference anything white and is blackened without being scanned at all.
// Otherwise the segment is exposed past the shield, handed to its pool's
// Scan method (which calls ss.Fix on every reference it finds), and
// covered again regardless of outcome.
//
// On success, seg's summary is updated per spec.md §4.6's partial/total
// rule and ts is cleared from seg's grey set. On failure seg stays grey
// (it will be rescanned, possibly in emergency mode) and its summary is
// still widened conservatively to include whatever was scanned before the
// failure.
func Scan(ts traceset.Set, r rank.Rank, arena *Arena, seg *Segment) error {
	white := unionWhite(arena, ts)

	if seg.Summary().Inter(white).IsEmpty() {
		seg.Pool().Blacken(ts, seg)
		return nil
	}

	emergency := anyEmergency(arena, ts)
	ss := newScanState(arena, ts, r, white, emergency)

	arena.shield.Expose(seg)
	wasTotal, err := seg.Pool().Scan(ss, seg)
	arena.shield.Cover(seg)

	if !ss.UnfixedSummary().Sub(seg.Summary()) {
		panic(&invariantSummaryViolation{seg: seg})
	}

	if err != nil || !wasTotal {
		seg.SetSummary(seg.Summary().Union(ss.Summary()))
	} else {
		seg.SetSummary(ss.Summary())
	}

	for ti := 0; ti < traceset.MaxTraces; ti++ {
		if !ts.IsMember(ti) {
			continue
		}
		t := &arena.traces[ti]
		if !t.valid {
			continue
		}
		t.stats.SegScan.ScanCount++
		t.stats.SegScan.Add(ss.Counts())
	}

	if err != nil {
		return err
	}

	seg.Blacken(ts)
	return nil
}

type invariantSummaryViolation struct{ seg *Segment }

func (e *invariantSummaryViolation) Error() string {
	return "scan postcondition violated: unfixedSummary is not a subset of segment summary"
}

func unionWhite(arena *Arena, ts traceset.Set) refset.Set {
	w := refset.Empty()
	for ti := 0; ti < traceset.MaxTraces; ti++ {
		if ts.IsMember(ti) && arena.traces[ti].valid {
			w = w.Union(arena.traces[ti].white)
		}
	}
	return w
}

func anyEmergency(arena *Arena, ts traceset.Set) bool {
	for ti := 0; ti < traceset.MaxTraces; ti++ {
		if ts.IsMember(ti) && arena.traces[ti].valid && arena.traces[ti].emergency {
			return true
		}
	}
	return false
}
