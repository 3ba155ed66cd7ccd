// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package invariant

import "testing"

func TestCheckPasses(t *testing.T) {
	Check(true, "should not panic")
}

func TestCheckPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		v, ok := r.(*Violation)
		if !ok {
			t.Fatalf("panic value = %T, want *Violation", r)
		}
		if v.Error() != "bad: 3" {
			t.Fatalf("message = %q", v.Error())
		}
	}()
	Check(false, "bad: %d", 3)
}
