// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simplepool

import (
	"github.com/aclements/gctrace"
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
)

// SimpleRoot is a fixed-size slice of reference slots scanned at a single
// rank, the Root analogue of SimplePool's fixed-size objects.
type SimpleRoot struct {
	arena *gctrace.Arena
	rank  rank.Rank
	refs  []uintptr
}

// NewRoot creates a root with numRefs initially-nil slots at rank r,
// registered with arena.
func NewRoot(arena *gctrace.Arena, r rank.Rank, numRefs int) *SimpleRoot {
	root := &SimpleRoot{arena: arena, rank: r, refs: make([]uintptr, numRefs)}
	arena.AddRoot(root)
	return root
}

// Set points the root's i'th slot at target (nil clears it).
func (r *SimpleRoot) Set(i int, target *gctrace.Segment) {
	if target == nil {
		r.refs[i] = 0
	} else {
		r.refs[i] = target.Base()
	}
}

// Rank returns the rank this root's references are scanned at.
func (r *SimpleRoot) Rank() rank.Rank { return r.rank }

// Summary returns the RefSet covering every non-nil slot's target.
func (r *SimpleRoot) Summary() refset.Set {
	s := refset.Empty()
	for _, ref := range r.refs {
		if ref != 0 {
			s = r.arena.RefSetAdd(s, ref)
		}
	}
	return s
}

// Grey is a no-op: flip scans every root at its rank unconditionally, so
// this reference Root needs no per-trace bookkeeping to know it must be
// scanned.
func (r *SimpleRoot) Grey(trace *gctrace.Trace) {}

// Scan fixes every non-nil slot.
func (r *SimpleRoot) Scan(ss *gctrace.ScanState) error {
	for i := range r.refs {
		if r.refs[i] == 0 {
			continue
		}
		if err := ss.Fix(&r.refs[i]); err != nil {
			return err
		}
	}
	return nil
}
