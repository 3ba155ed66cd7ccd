// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package traceset

import "testing"

func TestSingleMember(t *testing.T) {
	s := Single(3)
	if !s.IsMember(3) {
		t.Fatal("3 should be a member")
	}
	if s.IsMember(4) {
		t.Fatal("4 should not be a member")
	}
}

func TestAddDel(t *testing.T) {
	s := Empty().Add(0).Add(1)
	if s.Count() != 2 {
		t.Fatalf("count = %d, want 2", s.Count())
	}
	s = s.Del(0)
	if s.IsMember(0) || !s.IsMember(1) {
		t.Fatal("Del did not remove the right member")
	}
}

func TestSubSuper(t *testing.T) {
	a := Single(0).Add(1)
	b := Single(0).Add(1).Add(2)
	if !a.Sub(b) {
		t.Error("a should be a subset of b")
	}
	if !b.Super(a) {
		t.Error("b should be a superset of a")
	}
}

// Two trace sets with no member in common intersect to the empty set.
func TestInterDisjointSets(t *testing.T) {
	grey := Single(0).Add(2)
	white := Single(1)
	if !grey.Inter(white).IsEmpty() {
		t.Fatal("expected grey and white sets to be disjoint here")
	}
}
