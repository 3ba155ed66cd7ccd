// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simplepool is a minimal, non-moving, never-failing reference
// implementation of gctrace's collaborator interfaces (Pool, Root, Shield,
// LD): a fixed-size slot-graph pool suitable for exercising and testing the
// tracer core, not for production use.
package simplepool

import (
	"github.com/aclements/gctrace"
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/traceset"
)

const objectStride = 16

type object struct {
	refs []uintptr
}

// SimplePool is a non-moving, scannable, garbage-collectable pool: every
// object is its own Segment holding a fixed number of reference slots.
// Whiten always accepts, Scan always completes in one pass, and Fix marks
// the referent reachable by un-whitening it — there is no copying or
// forwarding, since SimplePool never reports AttrMoving.
type SimplePool struct {
	arena    *gctrace.Arena
	objects  map[*gctrace.Segment]*object
	nextAddr uintptr
}

// New creates an empty pool registered with arena.
func New(arena *gctrace.Arena) *SimplePool {
	p := &SimplePool{arena: arena, objects: make(map[*gctrace.Segment]*object), nextAddr: objectStride}
	arena.AddPool(p)
	return p
}

// NewObject allocates a fresh object with numRefs reference slots, all
// initially nil, and adds its segment to the arena. owner becomes the
// segment's Pool of record — ordinarily p itself, but a caller wrapping p in
// a decorator (e.g. InjectingPool) passes the decorator here so that
// ScanState.Fix dispatches to the decorator instead of straight to p.
func (p *SimplePool) NewObject(owner gctrace.Pool, numRefs int) *gctrace.Segment {
	base := p.nextAddr
	p.nextAddr += objectStride
	seg := gctrace.NewSegment(base, base+objectStride, owner, rank.SingleRank(rank.Exact))
	p.arena.AddSegment(seg)
	p.objects[seg] = &object{refs: make([]uintptr, numRefs)}
	return seg
}

// SetRef points seg's i'th reference slot at target (nil clears it) and
// recomputes seg's summary to match.
func (p *SimplePool) SetRef(seg *gctrace.Segment, i int, target *gctrace.Segment) {
	obj := p.objects[seg]
	if target == nil {
		obj.refs[i] = 0
	} else {
		obj.refs[i] = target.Base()
	}
	p.recomputeSummary(seg)
}

func (p *SimplePool) recomputeSummary(seg *gctrace.Segment) {
	obj := p.objects[seg]
	s := refset.Empty()
	for _, ref := range obj.refs {
		if ref != 0 {
			s = p.arena.RefSetAdd(s, ref)
		}
	}
	seg.SetSummary(s)
}

// Attrs reports GC and Scan: SimplePool never moves its objects.
func (p *SimplePool) Attrs() gctrace.PoolAttrs {
	return gctrace.AttrGC | gctrace.AttrScan
}

// Whiten always accepts.
func (p *SimplePool) Whiten(trace *gctrace.Trace, seg *gctrace.Segment) gctrace.Res {
	seg.MarkWhite(trace.ID())
	return gctrace.ResOK
}

// Grey marks seg grey for trace. A segment condemned on this same trace can
// still be greyed: a white object reachable from the roots still needs its
// own references scanned to discover what it keeps alive, so grey and white
// coexist on it until Scan blackens it.
func (p *SimplePool) Grey(trace *gctrace.Trace, seg *gctrace.Segment) {
	seg.MarkGrey(trace.ID())
}

// Blacken clears ts from seg's grey set.
func (p *SimplePool) Blacken(ts traceset.Set, seg *gctrace.Segment) {
	seg.Blacken(ts)
}

// Scan fixes every non-nil reference slot and always completes in full.
func (p *SimplePool) Scan(ss *gctrace.ScanState, seg *gctrace.Segment) (bool, error) {
	obj := p.objects[seg]
	for i := range obj.refs {
		if obj.refs[i] == 0 {
			continue
		}
		if err := ss.Fix(&obj.refs[i]); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Fix marks the referent reachable for every trace ss serves.
func (p *SimplePool) Fix(ss *gctrace.ScanState, seg *gctrace.Segment, ref *uintptr) error {
	p.markReachable(ss, seg)
	return nil
}

// FixEmergency does the same thing as Fix; SimplePool never allocates, so
// it has no lower-quality fallback to offer and can never fail here.
func (p *SimplePool) FixEmergency(ss *gctrace.ScanState, seg *gctrace.Segment, ref *uintptr) {
	p.markReachable(ss, seg)
}

// markReachable clears seg's white bit for every trace ss serves, and greys
// it so its own references still get scanned. For a segment with no
// references (numRefs == 0) this greys it needlessly, but Scan on such a
// segment runs no iterations and blackens it immediately, so it costs one
// extra trip through the grey ring rather than correctness.
func (p *SimplePool) markReachable(ss *gctrace.ScanState, seg *gctrace.Segment) {
	for ti := 0; ti < traceset.MaxTraces; ti++ {
		if ss.Traces().IsMember(ti) {
			seg.Unwhiten(ti)
			seg.MarkGrey(ti)
		}
	}
	ss.NoteMarked()
}

// Reclaim frees seg: objects still white at reclaim time were never found
// reachable, so they're simply dropped and excised from the arena. The
// white bit is cleared first, matching the general pool contract that
// Reclaim leaves its segment non-white one way or another, whether by
// freeing it or by choosing to keep it alive anyway.
func (p *SimplePool) Reclaim(trace *gctrace.Trace, seg *gctrace.Segment) {
	seg.Unwhiten(trace.ID())
	delete(p.objects, seg)
	trace.Arena().RemoveSegment(seg)
}
