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

// invariantCheckLegalRef enforces spec.md §3 invariant 7: at EXACT rank or
// higher, a reference that doesn't hit any segment must not fall in the
// arena's reserved-but-unallocated address space — such a reference would
// be neither a legitimate outside pointer nor a legitimate interior one.
func invariantCheckLegalRef(r rank.Rank, arena *Arena, ref uintptr) {
	invariant.Check(r < rank.Exact || !arena.IsReservedAddr(ref),
		"reference %#x at rank %v falls in reserved-but-unallocated arena space", ref, r)
}

// Counts holds the accounting fields a ScanState accumulates during a scan
// and that get folded into a Trace's running totals once the scan
// finishes. The same shape is reused for the RootScan, SegScan, and
// SingleScan accounting phases spec.md §6 names.
type Counts struct {
	ScanCount   uint64
	ScanSize    uint64
	CopiedSize  uint64
	FixRefCount uint64
	SegRefCount uint64
	WhiteSegRef uint64
	NailCount   uint64
	SnapCount   uint64
	ForwardCount uint64
}

// Add accumulates o into c.
func (c *Counts) Add(o Counts) {
	c.ScanCount += o.ScanCount
	c.ScanSize += o.ScanSize
	c.CopiedSize += o.CopiedSize
	c.FixRefCount += o.FixRefCount
	c.SegRefCount += o.SegRefCount
	c.WhiteSegRef += o.WhiteSegRef
	c.NailCount += o.NailCount
	c.SnapCount += o.SnapCount
	c.ForwardCount += o.ForwardCount
}

// ScanState is the ephemeral context for one scan: one call to Scan (for a
// segment) or the root-scanning loop inside Flip. It is stack-local to a
// single scan and is never shared (spec.md §5).
type ScanState struct {
	arena  *Arena
	traces traceset.Set
	rank   rank.Rank
	white  refset.Set

	emergency bool

	unfixedSummary refset.Set
	fixedSummary   refset.Set
	wasMarked      bool

	zoneShift uint

	counts Counts
}

// newScanState creates a ScanState serving traces, scanning at rank r. white
// is the union of every served trace's white set. If any served trace is in
// emergency mode, Fix dispatches to FixEmergency for the lifetime of this
// scan (spec.md §4.6/§4.8).
func newScanState(arena *Arena, traces traceset.Set, r rank.Rank, white refset.Set, emergency bool) *ScanState {
	return &ScanState{
		arena:     arena,
		traces:    traces,
		rank:      r,
		white:     white,
		emergency: emergency,
		zoneShift: arena.zoneShift,
	}
}

// Traces returns the set of traces this scan serves.
func (ss *ScanState) Traces() traceset.Set { return ss.traces }

// Rank returns the rank this scan is scanning at.
func (ss *ScanState) Rank() rank.Rank { return ss.rank }

// White returns the union of white sets of every trace this scan serves.
func (ss *ScanState) White() refset.Set { return ss.white }

// Arena returns the arena this scan belongs to.
func (ss *ScanState) Arena() *Arena { return ss.arena }

// SetUnfixedSummary resets the scan's running approximation of references
// not yet fixed. RootScan callers must reset this to empty before scanning
// each root (spec.md §4.5 step 3).
func (ss *ScanState) SetUnfixedSummary(s refset.Set) { ss.unfixedSummary = s }

// UnfixedSummary returns the scan's unfixed-reference summary.
func (ss *ScanState) UnfixedSummary() refset.Set { return ss.unfixedSummary }

// Summary returns the ScanState summary law of spec.md §3 invariant 6:
// fixedSummary ∪ (unfixedSummary \ white).
func (ss *ScanState) Summary() refset.Set {
	return ss.fixedSummary.Union(ss.unfixedSummary.Diff(ss.white))
}

// Counts returns the accounting counters gathered so far.
func (ss *ScanState) Counts() Counts { return ss.counts }

// NoteMarked records that Fix found at least one live white reference
// during this scan, used by callers that need to know whether anything was
// marked (e.g. to decide whether to rescan).
func (ss *ScanState) NoteMarked() { ss.wasMarked = true }

// WasMarked reports whether NoteMarked was ever called on this scan.
func (ss *ScanState) WasMarked() bool { return ss.wasMarked }

// Fix is called by a Pool or Root's Scan method on every reference it
// encounters. refIO points at the in-memory reference slot; Fix may rewrite
// it (the pool may have forwarded the referent).
//
// Per spec.md §4.6:
//  1. fixRefCount++.
//  2. Look up the segment containing *refIO. If found and it is white for
//     any of ss's traces, delegate to the pool's Fix (or FixEmergency in
//     emergency mode). If not found, the reference must point outside the
//     arena, or — at EXACT rank or above — must not land in reserved but
//     unallocated arena space (spec.md §3 invariant 7).
//  3. Regardless of outcome, fold *refIO's zone into fixedSummary (the
//     pool may have rewritten *refIO to a forwarding address by now).
func (ss *ScanState) Fix(refIO *uintptr) error {
	ss.counts.FixRefCount++

	if seg, ok := ss.arena.SegOfAddr(*refIO); ok {
		ss.counts.SegRefCount++
		if !seg.White().Inter(ss.traces).IsEmpty() {
			ss.counts.WhiteSegRef++
			if ss.emergency {
				seg.Pool().FixEmergency(ss, seg, refIO)
			} else if err := seg.Pool().Fix(ss, seg, refIO); err != nil {
				return err
			}
		}
	} else {
		invariantCheckLegalRef(ss.rank, ss.arena, *refIO)
	}

	ss.fixedSummary = ss.arena.RefSetAdd(ss.fixedSummary, *refIO)
	return nil
}
