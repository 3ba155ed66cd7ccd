// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gctrace

import "fmt"

// Res is a tracer result code. Only MEMORY and RESOURCE may be returned from
// Step; LIMIT is returned only from Create. Every other failure this
// package can detect is a contract violation and panics instead (see
// internal/invariant) rather than returning a Res.
type Res int

const (
	// ResOK indicates success.
	ResOK Res = iota
	// ResLIMIT indicates trace slot exhaustion: every slot in
	// [0, TRACE_MAX) is busy.
	ResLIMIT
	// ResMEMORY indicates a pool could not allocate memory needed to
	// complete a Fix.
	ResMEMORY
	// ResRESOURCE indicates a pool ran out of some other bounded
	// resource (e.g. a fixed-size side table) needed to complete a Fix.
	ResRESOURCE
)

func (r Res) String() string {
	switch r {
	case ResOK:
		return "OK"
	case ResLIMIT:
		return "LIMIT"
	case ResMEMORY:
		return "MEMORY"
	case ResRESOURCE:
		return "RESOURCE"
	default:
		return fmt.Sprintf("Res(%d)", int(r))
	}
}

// A ResError wraps a non-OK Res as an error, the form in which pool
// failures propagate out of Create/Start/Step.
type ResError struct {
	Res    Res
	Reason string
}

func (e *ResError) Error() string {
	if e.Reason == "" {
		return e.Res.String()
	}
	return fmt.Sprintf("%s: %s", e.Res, e.Reason)
}

// AsRes returns the Res a pool-reported error wraps, or ResOK if err is nil.
// A non-nil err that isn't a *ResError is a logic error the caller should
// treat as a resource failure (it came from somewhere that isn't supposed to fail
// any other way) and is reported as ResRESOURCE so callers have something
// actionable to escalate on.
func AsRes(err error) Res {
	if err == nil {
		return ResOK
	}
	if re, ok := err.(*ResError); ok {
		return re.Res
	}
	return ResRESOURCE
}

// ErrLimit is returned by Create when every trace slot is busy.
var ErrLimit = &ResError{Res: ResLIMIT, Reason: "no free trace slot"}
