// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tracelog

import (
	"strings"
	"testing"
)

func TestTracefDump(t *testing.T) {
	var l Log
	l.Tracef("scan seg %d", 1)
	l.Tracef("reclaim seg %d size=%d", 1, 4096)
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	d := l.Dump()
	if !strings.Contains(d, "scan seg 1") || !strings.Contains(d, "reclaim seg 1 size=4096") {
		t.Fatalf("Dump() missing expected lines:\n%s", d)
	}
}
