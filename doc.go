// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gctrace implements the core of an incremental, tri-color tracing
// garbage collector: condemning a set of objects, finding the survivors by
// transitive reachability from a set of roots, and reclaiming whatever
// wasn't reached.
//
// gctrace does not manage memory itself. It drives collection against
// external collaborators — Pool, Root, Shield, and LD — that the caller
// supplies; gctrace owns only the Arena (the set of Segments, Pools, and
// Roots) and the Trace objects that track one collection cycle each.
//
// A typical cycle looks like:
//
//	arena := gctrace.NewArena(zoneShift, shield, ld, 1, gctrace.DefaultConfig())
//	// ... register pools and roots with arena ...
//	tr, err := gctrace.Create(arena)
//	err = gctrace.CondemnRefSet(tr, condemnedAddresses)
//	err = gctrace.Start(tr) // suspends the mutator, performs the flip
//	for tr.State() != gctrace.StateFinished {
//		gctrace.Poll(tr)
//	}
//	gctrace.Destroy(tr)
//
// See package simplepool for a minimal reference Pool/Root/Shield/LD
// implementation suitable for tests and experimentation.
package gctrace
