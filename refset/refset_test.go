// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refset

import "testing"

func TestEmptyUniv(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Fatal("Empty() is not empty")
	}
	if Univ().IsEmpty() {
		t.Fatal("Univ() is empty")
	}
	for _, z := range []int{0, 63, 64, 127, 200, NumZones - 1} {
		if !Univ().Member(z) {
			t.Errorf("zone %d not a member of Univ()", z)
		}
	}
}

func TestAddMember(t *testing.T) {
	s := Empty().Add(5).Add(130)
	for _, z := range []int{5, 130} {
		if !s.Member(z) {
			t.Errorf("zone %d should be a member", z)
		}
	}
	for _, z := range []int{0, 4, 6, 129, 131} {
		if s.Member(z) {
			t.Errorf("zone %d should not be a member", z)
		}
	}
}

func TestUnionInterDiff(t *testing.T) {
	a := Empty().Add(1).Add(2).Add(3)
	b := Empty().Add(2).Add(3).Add(4)

	u := a.Union(b)
	for _, z := range []int{1, 2, 3, 4} {
		if !u.Member(z) {
			t.Errorf("union missing zone %d", z)
		}
	}

	i := a.Inter(b)
	if !i.Equal(Empty().Add(2).Add(3)) {
		t.Errorf("inter = %v, want {2,3}", i)
	}

	d := a.Diff(b)
	if !d.Equal(Empty().Add(1)) {
		t.Errorf("diff = %v, want {1}", d)
	}
}

func TestSubSuper(t *testing.T) {
	a := Empty().Add(1).Add(2)
	b := Empty().Add(1).Add(2).Add(3)

	if !a.Sub(b) {
		t.Error("a should be a subset of b")
	}
	if a.Super(b) {
		t.Error("a should not be a superset of b")
	}
	if !b.Super(a) {
		t.Error("b should be a superset of a")
	}
	if !a.Sub(a) {
		t.Error("a should be a subset of itself")
	}
}

// The invariant the tracer relies on throughout: disjoint refsets imply no
// reference in one can point into the other.
func TestInterEmptyMeansDisjoint(t *testing.T) {
	a := Empty().Add(10)
	b := Empty().Add(20)
	if !a.Inter(b).IsEmpty() {
		t.Fatal("expected disjoint sets")
	}
}
