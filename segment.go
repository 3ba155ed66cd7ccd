// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import (
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/traceset"
)

// ringNode is one rank's intrusive doubly-linked-list link for a segment
// living in that rank's arena-wide grey ring. A segment whose rank-set
// spans several ranks has one link per rank it belongs to, so it can be a
// member of several rings simultaneously.
type ringNode struct {
	next, prev *Segment
}

// A Segment is a contiguous managed region owned by one pool: the unit of
// colouring and shielding the tracer manipulates. Segment fields are
// mutated only by the tracer (colour, summary) or by the owning pool
// through the Pool interface (contents); see pool.go.
type Segment struct {
	id int

	base, limit uintptr
	pool        Pool
	rankSet     rank.Set

	summary refset.Set
	grey    traceset.Set
	white   traceset.Set
	sm      AccessMode // shield mode currently applied

	arena *Arena
	ring  [rank.Max]ringNode
}

// NewSegment constructs a segment spanning [base, limit) owned by pool. The
// caller must add it to an Arena with Arena.AddSegment before the tracer
// will consider it.
func NewSegment(base, limit uintptr, pool Pool, ranks rank.Set) *Segment {
	return &Segment{base: base, limit: limit, pool: pool, rankSet: ranks}
}

// Base returns the segment's starting address.
func (s *Segment) Base() uintptr { return s.base }

// Limit returns the address one past the end of the segment.
func (s *Segment) Limit() uintptr { return s.limit }

// Size returns the segment's size in bytes.
func (s *Segment) Size() uintptr { return s.limit - s.base }

// Pool returns the pool that owns this segment.
func (s *Segment) Pool() Pool { return s.pool }

// RankSet returns the set of ranks this segment's references belong to.
func (s *Segment) RankSet() rank.Set { return s.rankSet }

// Summary returns the segment's current reference summary: a conservative
// superset of the refsets of every reference currently stored in it.
func (s *Segment) Summary() refset.Set { return s.summary }

// SetSummary replaces the segment's summary.
func (s *Segment) SetSummary(sum refset.Set) { s.summary = sum }

// Grey returns the set of traces this segment is grey for.
func (s *Segment) Grey() traceset.Set { return s.grey }

// White returns the set of traces this segment is white (condemned) for.
func (s *Segment) White() traceset.Set { return s.white }

// SM returns the shield protections currently installed on this segment.
func (s *Segment) SM() AccessMode { return s.sm }

// MarkWhite adds ti to the segment's white set. Whitening never touches
// ring membership: whiteness alone never makes a segment scannable.
func (s *Segment) MarkWhite(ti int) {
	s.white = s.white.Add(ti)
}

// MarkGrey adds ti to the segment's grey set, inserting the segment into
// its rank ring(s) if it wasn't already grey for any trace.
func (s *Segment) MarkGrey(ti int) {
	wasEmpty := s.grey.IsEmpty()
	s.grey = s.grey.Add(ti)
	if wasEmpty {
		s.arena.ringInsert(s)
	}
}

// Blacken removes every trace in ts from the segment's grey set, removing
// the segment from its rank ring(s) once no trace finds it grey any more.
func (s *Segment) Blacken(ts traceset.Set) {
	wasEmpty := s.grey.IsEmpty()
	s.grey = s.grey.Without(ts)
	if !wasEmpty && s.grey.IsEmpty() {
		s.arena.ringRemove(s)
	}
}

// Unwhiten removes ti from the segment's white set. Pools call it from Fix
// when they find the segment reachable, and from Reclaim, which must leave
// the segment non-white whether it keeps or frees it.
func (s *Segment) Unwhiten(ti int) {
	s.white = s.white.Del(ti)
}

// SetSM records the shield protection mode currently installed on the
// segment. Called by Access as it drops protections in response to a fault.
func (s *Segment) SetSM(sm AccessMode) { s.sm = sm }
