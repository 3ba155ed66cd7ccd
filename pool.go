// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import (
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/traceset"
)

// PoolAttrs describes the capabilities of a pool class. The tracer consults
// these to decide which segments are eligible for condemnation and scanning.
type PoolAttrs uint8

const (
	// AttrGC marks a pool class as collectable: the tracer may condemn
	// and reclaim its segments.
	AttrGC PoolAttrs = 1 << iota
	// AttrMoving marks a pool class whose Fix may relocate objects,
	// meaning references into it belong in a trace's mayMove set.
	AttrMoving
	// AttrScan marks a pool class whose segments contain references
	// and so may be greyed and scanned.
	AttrScan
)

// Has reports whether a has all of want set.
func (a PoolAttrs) Has(want PoolAttrs) bool { return a&want == want }

// Pool is the policy module a tracer consults for a class of segments. The
// tracer never inspects object formats or segment contents directly; every
// mutation to live data goes through these methods. Pool implementations
// own their segments' contents; the tracer owns a segment's colour and
// summary fields, mutated only through the methods below.
type Pool interface {
	// Attrs returns this pool class's capabilities.
	Attrs() PoolAttrs

	// Whiten is asked to condemn seg for trace. It reports whether it
	// accepted by returning OK and marking seg white for trace's ID;
	// declining (any other Res, or simply not marking it) leaves seg
	// untouched.
	Whiten(trace *Trace, seg *Segment) Res

	// Grey may mark seg grey for trace, meaning seg might hold a
	// reference into trace's white set and must be scanned before the
	// trace can reclaim.
	Grey(trace *Trace, seg *Segment)

	// Blacken marks seg black for every trace in ts: a guarantee that
	// seg cannot reference white data for any of those traces.
	Blacken(ts traceset.Set, seg *Segment)

	// Scan walks every live reference in seg, calling ss.Fix on each one
	// (ss dispatches to the owning pool's Fix or FixEmergency), and reports
	// whether it scanned the segment in its entirety (wasTotal) versus
	// only partially. Returning a non-nil error aborts the scan; seg
	// stays grey and is retried, possibly in emergency mode.
	Scan(ss *ScanState, seg *Segment) (wasTotal bool, err error)

	// Fix is called by ScanState.Fix once it determines ref points into
	// a segment owned by this pool that is white for one of ss's
	// traces. Fix may rewrite *ref (e.g. to a forwarding address).
	Fix(ss *ScanState, seg *Segment, ref *uintptr) error

	// FixEmergency is Fix's non-allocating fallback; it must never
	// fail, even if that means a lower-quality decision (e.g. nailing
	// in place instead of copying).
	FixEmergency(ss *ScanState, seg *Segment, ref *uintptr)

	// Reclaim frees or un-whitens seg, which is white for trace.
	Reclaim(trace *Trace, seg *Segment)
}

// Root is a registered source of references scanned at flip.
type Root interface {
	// Rank is the reference kind this root contains.
	Rank() rank.Rank

	// Summary is a conservative approximation of the addresses this
	// root might reference.
	Summary() refset.Set

	// Grey marks this root grey for trace, meaning it must be scanned
	// before the flip that started trace can be considered complete.
	Grey(trace *Trace)

	// Scan walks the root's references, calling ss.Fix on each.
	Scan(ss *ScanState) error
}

// AccessMode is a bitmask of shield protections: READ, WRITE, or both.
type AccessMode uint8

const (
	AccessRead AccessMode = 1 << iota
	AccessWrite
)

// Shield makes segments inaccessible to the mutator, producing synchronous
// faults that are handled by Access.
type Shield interface {
	// Suspend stops the mutator; Resume restarts it. Calls nest:
	// Suspend/Resume bracket Flip.
	Suspend()
	Resume()

	// Expose transiently removes every protection from seg so the
	// tracer itself can read or write it; Cover reinstates whatever
	// Raise had set. Expose/Cover calls nest per segment.
	Expose(seg *Segment)
	Cover(seg *Segment)

	// Raise installs mode as a barrier on seg: subsequent mutator
	// accesses of that kind fault into Access.
	Raise(seg *Segment, mode AccessMode)
}

// LD is the location-dependency registry: code that has cached an address
// computed from a reference asks it to notify them when that address might
// have moved.
type LD interface {
	// Age notifies the registry that addresses in refSet may have moved
	// (because they're in mayMove) and so any dependent cached address
	// must be considered stale.
	Age(refSet refset.Set)
}
