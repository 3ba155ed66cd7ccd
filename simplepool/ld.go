// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package simplepool

import "github.com/aclements/gctrace/refset"

// SimpleLD records every RefSet it was asked to age, for tests to inspect.
// SimplePool never moves objects, so Age is never called against it in
// practice; SimpleLD exists for pools that do report AttrMoving.
type SimpleLD struct {
	Aged []refset.Set
}

// NewLD creates an empty location-dependency registry.
func NewLD() *SimpleLD { return &SimpleLD{} }

// Age records refSet.
func (l *SimpleLD) Age(refSet refset.Set) {
	l.Aged = append(l.Aged, refSet)
}
