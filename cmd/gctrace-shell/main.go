// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gctrace-shell is an interactive REPL over a single toy arena,
// for exercising Condemn/Start/Step/Poll/Access by hand.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/aclements/gctrace"
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/simplepool"
)

func main() {
	numObjects := flag.Int("objects", 8, "number of objects to pre-allocate")
	flag.Parse()

	sh := newShell(*numObjects)
	sh.printf("gctrace-shell: %d objects (seg0..seg%d), root slot 0\n", *numObjects, *numObjects-1)
	sh.printf("commands: ref <i> <j|nil>, condemn <i...>, start, step, poll, access read|write <i>, status, segs, quit\n")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		sh.printf("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		args, err := shellquote.Split(line)
		if err != nil {
			sh.printf("parse error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			break
		}
		if err := sh.dispatch(args); err != nil {
			sh.printf("error: %v\n", err)
		}
	}
}

type shell struct {
	arena  *gctrace.Arena
	pool   *simplepool.SimplePool
	root   *simplepool.SimpleRoot
	shield *simplepool.SimpleShield
	objs   []*gctrace.Segment
	tr     *gctrace.Trace
}

func newShell(n int) *shell {
	shield := simplepool.NewShield()
	ld := simplepool.NewLD()
	arena := gctrace.NewArena(6, shield, ld, 1, gctrace.DefaultConfig())
	pool := simplepool.New(arena)
	root := simplepool.NewRoot(arena, rank.Exact, 1)

	objs := make([]*gctrace.Segment, n)
	for i := range objs {
		objs[i] = pool.NewObject(pool, n)
	}
	return &shell{arena: arena, pool: pool, root: root, shield: shield, objs: objs}
}

func (s *shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

func (s *shell) dispatch(args []string) error {
	switch args[0] {
	case "ref":
		return s.cmdRef(args[1:])
	case "condemn":
		return s.cmdCondemn(args[1:])
	case "start":
		return s.cmdStart()
	case "step":
		return s.cmdStep()
	case "poll":
		return s.cmdPoll()
	case "access":
		return s.cmdAccess(args[1:])
	case "status":
		return s.cmdStatus()
	case "segs":
		return s.cmdSegs()
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (s *shell) objIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= len(s.objs) {
		return 0, fmt.Errorf("invalid object index %q", arg)
	}
	return i, nil
}

func (s *shell) cmdRef(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: ref <i> <j|nil>")
	}
	i, err := s.objIndex(args[0])
	if err != nil {
		return err
	}
	if args[1] == "nil" {
		s.pool.SetRef(s.objs[i], 0, nil)
		return nil
	}
	j, err := s.objIndex(args[1])
	if err != nil {
		return err
	}
	s.pool.SetRef(s.objs[i], 0, s.objs[j])
	return nil
}

func (s *shell) cmdCondemn(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: condemn <i...>")
	}
	tr, err := gctrace.Create(s.arena)
	if err != nil {
		return err
	}
	condemned := refsetOf(s.arena, s.objs, args)
	if err := gctrace.CondemnRefSet(tr, condemned); err != nil {
		return err
	}
	s.tr = tr
	return nil
}

func refsetOf(arena *gctrace.Arena, objs []*gctrace.Segment, indices []string) refset.Set {
	out := refset.Empty()
	for _, a := range indices {
		i, err := strconv.Atoi(a)
		if err != nil || i < 0 || i >= len(objs) {
			continue
		}
		out = out.Union(arena.RefSetOfSeg(objs[i]))
	}
	return out
}

func (s *shell) cmdStart() error {
	if s.tr == nil {
		return fmt.Errorf("no active trace; run condemn first")
	}
	return gctrace.Start(s.tr)
}

func (s *shell) cmdStep() error {
	if s.tr == nil {
		return fmt.Errorf("no active trace")
	}
	return gctrace.Step(s.tr)
}

func (s *shell) cmdPoll() error {
	if s.tr == nil {
		return fmt.Errorf("no active trace")
	}
	gctrace.Poll(s.tr)
	return nil
}

func (s *shell) cmdAccess(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: access read|write <i>")
	}
	i, err := s.objIndex(args[1])
	if err != nil {
		return err
	}
	var mode gctrace.AccessMode
	switch args[0] {
	case "read":
		mode = gctrace.AccessRead
	case "write":
		mode = gctrace.AccessWrite
	default:
		return fmt.Errorf("mode must be read or write")
	}
	seg := s.objs[i]
	if seg.SM()&mode == 0 {
		return fmt.Errorf("segment %d has no %s barrier installed", i, args[0])
	}
	return gctrace.Access(s.arena, seg, mode)
}

func (s *shell) cmdStatus() error {
	if s.tr == nil {
		s.printf("no active trace\n")
		return nil
	}
	stats := s.tr.Stats()
	s.printf("state=%v emergency=%v rootScans=%d segScans=%d reclaimed=%d/%d bytes\n",
		s.tr.State(), s.tr.Emergency(), stats.RootScan.ScanCount, stats.SegScan.ScanCount,
		stats.ReclaimCount, stats.ReclaimSize)
	return nil
}

func (s *shell) cmdSegs() error {
	for i, seg := range s.objs {
		s.printf("seg%d: base=%#x sm=%v summary=%v\n", i, seg.Base(), seg.SM(), seg.Summary())
	}
	return nil
}
