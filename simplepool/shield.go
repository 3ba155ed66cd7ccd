// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simplepool

import "github.com/aclements/gctrace"

// SimpleShield is a bookkeeping-only Shield: there is no real mutator to
// suspend or memory protection to install, so it just records what the
// tracer asked for, for tests to assert against, and keeps each segment's
// SM() field consistent with the protections Raise installed.
type SimpleShield struct {
	Suspended   bool
	SuspendCall int
	exposeDepth map[*gctrace.Segment]int
}

// NewShield creates an idle shield.
func NewShield() *SimpleShield {
	return &SimpleShield{exposeDepth: make(map[*gctrace.Segment]int)}
}

// Suspend records that the mutator is stopped.
func (s *SimpleShield) Suspend() {
	s.Suspended = true
	s.SuspendCall++
}

// Resume records that the mutator is running again.
func (s *SimpleShield) Resume() { s.Suspended = false }

// Expose tracks nested exposure of seg to the tracer itself.
func (s *SimpleShield) Expose(seg *gctrace.Segment) { s.exposeDepth[seg]++ }

// Cover ends one level of exposure.
func (s *SimpleShield) Cover(seg *gctrace.Segment) { s.exposeDepth[seg]-- }

// Raise installs mode on seg's recorded shield mode.
func (s *SimpleShield) Raise(seg *gctrace.Segment, mode gctrace.AccessMode) {
	seg.SetSM(seg.SM() | mode)
}
