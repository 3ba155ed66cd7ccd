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

// An Arena is the whole managed address space: it owns pools, segments, and
// the fixed pool of trace control blocks. Design Notes call the arena a
// "global mutable container" in the original and ask that a reimplementation
// pass it explicitly as a context handle rather than hide it behind package
// state — every exported gctrace function that needs arena-wide state takes
// one as an explicit argument or receiver.
type Arena struct {
	zoneShift uint
	config    Config

	shield Shield
	ld     LD

	pools []Pool
	roots []Root

	segments  []*Segment
	zoneIndex map[uintptr]*Segment // zone-aligned chunk base -> segment
	nextSegID int

	greyRing [rank.Max]*Segment

	traceMax      int
	traces        [traceset.MaxTraces]Trace
	busyTraces    traceset.Set
	flippedTraces traceset.Set
}

// NewArena creates an arena with the given zone shift (zone size is
// 1<<zoneShift bytes) and at most traceMax simultaneously active traces.
// spec.md §9(a) fixes TRACE_MAX at 1 for this core and asks that the
// assertion be preserved even though the data model is shaped to support
// more; NewArena asserts traceMax == 1 accordingly.
func NewArena(zoneShift uint, shield Shield, ld LD, traceMax int, config Config) *Arena {
	invariant.Check(traceMax == 1, "TRACE_MAX must be 1 in this core, got %d", traceMax)
	a := &Arena{
		zoneShift: zoneShift,
		config:    config,
		shield:    shield,
		ld:        ld,
		zoneIndex: make(map[uintptr]*Segment),
		traceMax:  traceMax,
	}
	return a
}

// Config returns the arena's tuning constants.
func (a *Arena) Config() Config { return a.config }

// Shield returns the arena's shield.
func (a *Arena) Shield() Shield { return a.shield }

// LD returns the arena's location-dependency registry, or nil if none was
// configured.
func (a *Arena) LD() LD { return a.ld }

// AddPool registers pool with the arena.
func (a *Arena) AddPool(p Pool) { a.pools = append(a.pools, p) }

// Pools returns every registered pool.
func (a *Arena) Pools() []Pool { return a.pools }

// AddRoot registers root with the arena.
func (a *Arena) AddRoot(r Root) { a.roots = append(a.roots, r) }

// Roots returns every registered root.
func (a *Arena) Roots() []Root { return a.roots }

func (a *Arena) zoneChunk(addr uintptr) uintptr {
	zoneSize := uintptr(1) << a.zoneShift
	return addr &^ (zoneSize - 1)
}

// ZoneOf returns the zone index addr falls in.
func (a *Arena) ZoneOf(addr uintptr) int {
	zoneSize := uintptr(1) << a.zoneShift
	return int((addr / zoneSize) % refset.NumZones)
}

// AddSegment registers seg with the arena: it becomes visible to Segments,
// SegOfAddr, and condemnation. seg must not already belong to an arena.
func (a *Arena) AddSegment(seg *Segment) {
	invariant.Check(seg.arena == nil, "segment already belongs to an arena")
	seg.arena = a
	seg.id = a.nextSegID
	a.nextSegID++
	a.segments = append(a.segments, seg)

	zoneSize := uintptr(1) << a.zoneShift
	for addr := a.zoneChunk(seg.base); addr < seg.limit; addr += zoneSize {
		a.zoneIndex[addr] = seg
	}
}

// RemoveSegment excises seg from the arena entirely: it is no longer
// enumerated, addressable, or a member of any grey ring. Pool
// implementations call this from Reclaim when they decide to actually free
// a segment rather than keep it un-whitened.
func (a *Arena) RemoveSegment(seg *Segment) {
	if !seg.grey.IsEmpty() {
		a.ringRemove(seg)
	}
	zoneSize := uintptr(1) << a.zoneShift
	for addr := a.zoneChunk(seg.base); addr < seg.limit; addr += zoneSize {
		if a.zoneIndex[addr] == seg {
			delete(a.zoneIndex, addr)
		}
	}
	for i, s := range a.segments {
		if s == seg {
			a.segments = append(a.segments[:i], a.segments[i+1:]...)
			break
		}
	}
}

// Segments returns every segment in the arena. This is the Go-idiomatic
// replacement for spec.md's SegFirst/SegNext cursor pair: a slice the
// caller ranges over. Order is unspecified and the tracer never relies on
// one segment being visited before another here.
func (a *Arena) Segments() []*Segment { return a.segments }

// SegOfAddr looks up the segment containing addr, if any. addr is first
// truncated to its zone-aligned chunk and looked up in a hash map populated
// at AddSegment time, which is O(1) average. The map holds one segment per
// chunk, so when several segments share a chunk only the most recently added
// one is indexed; a miss there falls back to a linear scan of the arena's
// segments.
func (a *Arena) SegOfAddr(addr uintptr) (*Segment, bool) {
	if seg, ok := a.zoneIndex[a.zoneChunk(addr)]; ok && addr >= seg.base && addr < seg.limit {
		return seg, true
	}
	for _, seg := range a.segments {
		if addr >= seg.base && addr < seg.limit {
			return seg, true
		}
	}
	return nil, false
}

// RefSetOfSeg returns the RefSet covering every zone seg intersects.
func (a *Arena) RefSetOfSeg(seg *Segment) refset.Set {
	s := refset.Empty()
	zoneSize := uintptr(1) << a.zoneShift
	for addr := a.zoneChunk(seg.base); addr < seg.limit; addr += zoneSize {
		s = s.Add(a.ZoneOf(addr))
	}
	return s
}

// RefSetAdd folds ref's zone into set.
func (a *Arena) RefSetAdd(set refset.Set, ref uintptr) refset.Set {
	return set.Add(a.ZoneOf(ref))
}

// IsReservedAddr reports whether addr falls in the arena's reserved address
// space but is not allocated to any segment — the condition a legal EXACT
// (or higher) reference must never satisfy, per spec.md §3 invariant 7.
// This reference Arena has no separately reserved region beyond allocated
// segments, so it always reports false; an arena that pre-reserves address
// space for future segments would track that region here.
func (a *Arena) IsReservedAddr(addr uintptr) bool { return false }

// ringInsert adds seg to every rank ring it belongs to, per its rank-set.
func (a *Arena) ringInsert(seg *Segment) {
	for _, r := range rank.All() {
		if !seg.rankSet.IsMember(r) {
			continue
		}
		node := &seg.ring[r]
		node.next = a.greyRing[r]
		node.prev = nil
		if a.greyRing[r] != nil {
			a.greyRing[r].ring[r].prev = seg
		}
		a.greyRing[r] = seg
	}
}

// ringRemove removes seg from every rank ring it belongs to.
func (a *Arena) ringRemove(seg *Segment) {
	for _, r := range rank.All() {
		if !seg.rankSet.IsMember(r) {
			continue
		}
		node := &seg.ring[r]
		if node.prev != nil {
			node.prev.ring[r].next = node.next
		} else if a.greyRing[r] == seg {
			a.greyRing[r] = node.next
		}
		if node.next != nil {
			node.next.ring[r].prev = node.prev
		}
		node.next, node.prev = nil, nil
	}
}

// greyRingSnapshot returns every segment currently on rank r's grey ring, as
// a plain slice. Scan can remove the very segment being visited from the
// ring; Design Notes call this out explicitly and ask that the "next"
// pointer be snapshotted before Scan runs. Copying the whole ring into a
// slice up front is the Go-idiomatic way to get the same safety: the walk
// below never follows a live link that Scan might have just unlinked.
func (a *Arena) greyRingSnapshot(r rank.Rank) []*Segment {
	var out []*Segment
	for seg := a.greyRing[r]; seg != nil; seg = seg.ring[r].next {
		out = append(out, seg)
	}
	return out
}

// traceFindGrey picks the lowest rank with any segment grey for ti, and the
// first such segment in that rank's ring. Equal-rank fairness is not
// required (spec.md §4.6), so "first in the ring" is as good as any other
// order.
func (a *Arena) traceFindGrey(ti int) (*Segment, rank.Rank, bool) {
	for _, r := range rank.All() {
		for seg := a.greyRing[r]; seg != nil; seg = seg.ring[r].next {
			if seg.grey.IsMember(ti) {
				return seg, r, true
			}
		}
	}
	return nil, 0, false
}
