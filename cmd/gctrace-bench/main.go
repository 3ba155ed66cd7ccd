// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gctrace-bench builds a number of independent toy arenas, each
// with a chain of objects, condemns and collects all of them
// concurrently, and reports the resulting counters.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/aclements/gctrace"
	"github.com/aclements/gctrace/gcmetrics"
	"github.com/aclements/gctrace/rank"
	"github.com/aclements/gctrace/refset"
	"github.com/aclements/gctrace/simplepool"
)

func main() {
	arenas := flag.IntP("arenas", "n", 8, "number of independent arenas to run")
	objects := flag.IntP("objects", "o", 64, "objects per arena")
	garbageFrac := flag.Float64("garbage-frac", 0.3, "fraction of objects left unreachable from the root")
	injectEvery := flag.Int("inject-every", 0, "if nonzero, fail the Nth Fix call (once) to exercise emergency mode")
	listen := flag.String("listen", "", "if set, serve Prometheus metrics on this address instead of exiting")
	flag.Parse()

	reg := prometheus.NewRegistry()
	metrics := gcmetrics.NewRegistry(reg)

	var g errgroup.Group
	for i := 0; i < *arenas; i++ {
		i := i
		g.Go(func() error {
			return runArena(fmt.Sprintf("arena%d", i), *objects, *garbageFrac, *injectEvery, metrics)
		})
	}

	if *listen != "" {
		go func() {
			if err := g.Wait(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}()
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		fmt.Fprintf(os.Stdout, "serving metrics on %s/metrics\n", *listen)
		if err := http.ListenAndServe(*listen, nil); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runArena builds one arena with n objects, the trailing garbageFrac of them
// left unreachable, condemns the whole heap, and drives the collection to
// completion, reporting counters to metrics under label.
func runArena(label string, n int, garbageFrac float64, injectEvery int, metrics *gcmetrics.Registry) error {
	shield := simplepool.NewShield()
	ld := simplepool.NewLD()
	arena := gctrace.NewArena(6, shield, ld, 1, gctrace.DefaultConfig())
	pool := simplepool.New(arena)

	var owner gctrace.Pool = pool
	var inj *simplepool.InjectingPool
	if injectEvery > 0 {
		inj = simplepool.NewInjecting(pool, injectEvery)
		owner = inj
	}

	objs := make([]*gctrace.Segment, n)
	for i := range objs {
		objs[i] = pool.NewObject(owner, 1)
	}
	// Chain each reachable object to the next, and point the root at
	// object 0; objects past the reachable prefix are garbage.
	reachable := int(float64(n) * (1 - garbageFrac))
	root := simplepool.NewRoot(arena, rank.Exact, 1)
	if reachable > 0 {
		root.Set(0, objs[0])
		for i := 0; i < reachable-1; i++ {
			pool.SetRef(objs[i], 0, objs[i+1])
		}
	}

	tr, err := gctrace.Create(arena)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	condemned := refset.Empty()
	for _, seg := range objs {
		condemned = condemned.Union(arena.RefSetOfSeg(seg))
	}
	if err := gctrace.CondemnRefSet(tr, condemned); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	if err := gctrace.Start(tr); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	for tr.State() != gctrace.StateFinished {
		gctrace.Poll(tr)
		metrics.Observe(label, tr)
	}
	gctrace.Destroy(tr)

	fmt.Printf("%s: reclaimed %d segments (%d bytes), rate %d, emergency %v\n",
		label, tr.Stats().ReclaimCount, tr.Stats().ReclaimSize, tr.Stats().Rate, tr.Emergency())
	return nil
}

