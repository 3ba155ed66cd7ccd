// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import (
	"github.com/aclements/gctrace/internal/invariant"
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
)

// Access handles a shield fault: the mutator tried to perform mode on seg
// while a barrier of that kind was installed. seg must actually carry mode
// in its current shield mode (Segment.SM) — a fault for a protection that
// isn't installed is a programming error in the shield, not something
// Access recovers from.
//
// A READ fault means some flipped trace still finds seg grey: the mutator
// is about to read possibly-unscanned references out of it, so Access scans
// seg at EXACT rank for every such trace before letting the access proceed.
// If the scan fails (MEMORY or RESOURCE), every trace it was scanning for
// is expedited into emergency mode and the scan is retried; FixEmergency
// must never fail, so the retry is asserted to succeed.
//
// A WRITE fault means the mutator is about to store into seg, which could
// introduce any reference at all. Rather than track exactly what's stored,
// Access simply widens seg's summary to the universal RefSet. The summary
// then covers anything the mutator could store, so the write barrier is not
// needed again, and a later Scan of seg always scans it rather than
// blackening it on the summary fast path.
//
// Either way, Access drops the protection that faulted — seg.SetSM clears
// mode — and records the fault in every affected trace's FaultCount.
func Access(arena *Arena, seg *Segment, mode AccessMode) error {
	invariant.Check(seg.SM()&mode == mode, "Access called for a protection not installed on the segment")

	switch mode {
	case AccessRead:
		ts := seg.Grey().Inter(arena.flippedTraces)
		if ts.IsEmpty() {
			break
		}
		if err := Scan(ts, rank.Exact, arena, seg); err != nil {
			for ti := range arena.traces {
				if ts.IsMember(ti) && arena.traces[ti].valid {
					arena.traces[ti].emergency = true
				}
			}
			if err2 := Scan(ts, rank.Exact, arena, seg); err2 != nil {
				invariant.Check(false, "Scan failed again under emergency mode during Access: %v", err2)
			}
		}
		for ti := range arena.traces {
			if ts.IsMember(ti) && arena.traces[ti].valid {
				arena.traces[ti].stats.FaultCount++
			}
		}

	case AccessWrite:
		seg.SetSummary(refset.Univ())
		for ti := range arena.traces {
			if arena.traces[ti].valid && seg.Grey().IsMember(ti) {
				arena.traces[ti].stats.FaultCount++
			}
		}

	default:
		invariant.Check(false, "Access called with an unrecognized mode %v", mode)
	}

	seg.SetSM(seg.SM() &^ mode)
	return nil
}
