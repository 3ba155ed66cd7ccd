// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rank

import "testing"

func TestOrder(t *testing.T) {
	all := All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
	if all[0] != Ambig || all[1] != Exact {
		t.Fatalf("All() = %v, want [AMBIG EXACT]", all)
	}
	if !(Ambig < Exact) {
		t.Fatal("AMBIG must sort before EXACT")
	}
}

func TestSet(t *testing.T) {
	s := SingleRank(Ambig).Add(Exact)
	if !s.IsMember(Ambig) || !s.IsMember(Exact) {
		t.Fatal("set should contain both ranks")
	}
	if Set(0).IsMember(Ambig) {
		t.Fatal("empty set should have no members")
	}
}
