// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tracelog implements a small append-only event log, adapted from
// go-weave's scheduler trace: an ordered list of timestamped-by-sequence
// messages that costs nothing while nothing goes wrong and is rendered only
// when a caller asks for it (typically because an invariant check failed
// mid-collection). This is the "stack probe and event logging" instrument
// spec.md calls non-core — ambient debugging aid, never consulted by the
// algorithm itself.
package tracelog

import (
	"bytes"
	"fmt"
)

type entry struct {
	seq int
	msg string
}

// A Log accumulates entries in order. The zero Log is ready to use.
type Log struct {
	entries []entry
	next    int
}

// Tracef appends a formatted message.
func (l *Log) Tracef(format string, args ...interface{}) {
	l.entries = append(l.entries, entry{l.next, fmt.Sprintf(format, args...)})
	l.next++
}

// Len returns the number of entries recorded.
func (l *Log) Len() int { return len(l.entries) }

// Dump renders the log as a multi-line string, most recent entry last.
func (l *Log) Dump() string {
	var buf bytes.Buffer
	for _, e := range l.entries {
		fmt.Fprintf(&buf, "%4d: %s\n", e.seq, e.msg)
	}
	return buf.String()
}
