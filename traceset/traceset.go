// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package traceset implements TraceSet, a small-integer bitset over active
// trace IDs.
package traceset

// MaxTraces is the largest number of simultaneously-active traces this
// representation can distinguish. The tracer core this package supports
// asserts a configured TRACE_MAX of 1 (see gctrace.NewArena), but the data
// model itself permits more, so the bitset is sized generously rather than
// hard-coded to one bit.
const MaxTraces = 32

// A Set is a bitset over trace IDs in [0, MaxTraces).
type Set uint32

// Empty is the empty TraceSet.
func Empty() Set { return 0 }

// Single returns the TraceSet containing only ti.
func Single(ti int) Set { return 1 << uint(ti) }

// Add returns s with ti added.
func (s Set) Add(ti int) Set { return s | Single(ti) }

// Del returns s with ti removed.
func (s Set) Del(ti int) Set { return s &^ Single(ti) }

// Without returns the traces in s that are not in o.
func (s Set) Without(o Set) Set { return s &^ o }

// IsMember reports whether ti is in s.
func (s Set) IsMember(ti int) bool { return s&Single(ti) != 0 }

// Union returns the union of s and o.
func (s Set) Union(o Set) Set { return s | o }

// Inter returns the intersection of s and o.
func (s Set) Inter(o Set) Set { return s & o }

// Sub reports whether s is a subset of o.
func (s Set) Sub(o Set) bool { return s&^o == 0 }

// Super reports whether s is a superset of o.
func (s Set) Super(o Set) bool { return o.Sub(s) }

// IsEmpty reports whether s has no members.
func (s Set) IsEmpty() bool { return s == 0 }

// Count returns the number of member trace IDs.
func (s Set) Count() int {
	n := 0
	for s != 0 {
		s &= s - 1
		n++
	}
	return n
}
