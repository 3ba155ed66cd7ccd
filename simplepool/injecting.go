// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simplepool

import "github.com/aclements/gctrace"

// InjectingPool wraps another Pool and fails its FailAt'th call to Fix with
// ResRESOURCE, then succeeds on every call after. It exists to exercise the
// tracer's partial-scan and emergency-mode paths under a controlled,
// reproducible failure rather than a real resource exhaustion.
type InjectingPool struct {
	gctrace.Pool
	FailAt int
	calls  int
}

// NewInjecting wraps inner, failing its failAt'th Fix call (1-indexed).
func NewInjecting(inner gctrace.Pool, failAt int) *InjectingPool {
	return &InjectingPool{Pool: inner, FailAt: failAt}
}

// Fix counts calls and fails exactly once, at the configured call number.
func (p *InjectingPool) Fix(ss *gctrace.ScanState, seg *gctrace.Segment, ref *uintptr) error {
	p.calls++
	if p.calls == p.FailAt {
		return &gctrace.ResError{Res: gctrace.ResRESOURCE, Reason: "injected failure"}
	}
	return p.Pool.Fix(ss, seg, ref)
}
