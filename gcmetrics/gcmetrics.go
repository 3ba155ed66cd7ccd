// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcmetrics exports a Trace's observable counters as Prometheus
// metrics, the way kubernetes-dns's node-cache command exports its own
// cache-layer counters: a handful of NewCounterVec/NewGaugeVec instances
// registered once, refreshed by calling Observe after each Poll.
package gcmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aclements/gctrace"
)

// Registry holds every metric gcmetrics exports, labeled by an arbitrary
// "trace" label the caller supplies (e.g. an arena name) so several traces
// can share one registry without colliding.
type Registry struct {
	rootScanCount *prometheus.CounterVec
	segScanCount  *prometheus.CounterVec
	fixRefCount   *prometheus.CounterVec
	faultCount    *prometheus.CounterVec
	reclaimCount  *prometheus.CounterVec
	reclaimSize   *prometheus.CounterVec
	condemned     *prometheus.GaugeVec
	foundation    *prometheus.GaugeVec
	rate          *prometheus.GaugeVec
	state         *prometheus.GaugeVec

	mu   sync.Mutex
	prev map[string]gctrace.Stats
}

// NewRegistry constructs a Registry and registers its metrics with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gctrace",
			Name:      name,
			Help:      help,
		}, []string{"trace"})
	}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gctrace",
			Name:      name,
			Help:      help,
		}, []string{"trace"})
	}

	r := &Registry{
		rootScanCount: counter("root_scan_count_total", "Number of root scans performed."),
		segScanCount:  counter("seg_scan_count_total", "Number of segment scans performed."),
		fixRefCount:   counter("fix_ref_count_total", "Number of references passed to Fix."),
		faultCount:    counter("fault_count_total", "Number of barrier faults handled by Access."),
		reclaimCount:  counter("reclaim_count_total", "Number of segments reclaimed."),
		reclaimSize:   counter("reclaim_size_bytes_total", "Bytes reclaimed."),
		condemned:     gauge("condemned_bytes", "Bytes condemned by the active trace."),
		foundation:    gauge("foundation_bytes", "Bytes in the active trace's foundation."),
		rate:          gauge("rate", "Configured work rate of the active trace."),
		state:         gauge("state", "Lifecycle state of the trace, as gctrace.State's integer value."),
		prev:          make(map[string]gctrace.Stats),
	}
	reg.MustRegister(r.rootScanCount, r.segScanCount, r.fixRefCount, r.faultCount,
		r.reclaimCount, r.reclaimSize, r.condemned, r.foundation, r.rate, r.state)
	return r
}

// Observe refreshes every metric from t's current Stats, under the given
// label. Trace accumulates its counters as running totals for the lifetime
// of one collection, but Prometheus counters are meant to be incremented by
// delta; Observe tracks the last-seen totals per label and adds only what
// changed since the previous call, so it can be called repeatedly (e.g.
// after every Poll) without double-counting.
func (r *Registry) Observe(label string, t *gctrace.Trace) {
	stats := t.Stats()

	r.mu.Lock()
	last := r.prev[label]
	r.prev[label] = stats
	r.mu.Unlock()

	r.rootScanCount.WithLabelValues(label).Add(float64(stats.RootScan.ScanCount - last.RootScan.ScanCount))
	r.segScanCount.WithLabelValues(label).Add(float64(stats.SegScan.ScanCount - last.SegScan.ScanCount))
	fixDelta := (stats.RootScan.FixRefCount + stats.SegScan.FixRefCount) -
		(last.RootScan.FixRefCount + last.SegScan.FixRefCount)
	r.fixRefCount.WithLabelValues(label).Add(float64(fixDelta))
	r.faultCount.WithLabelValues(label).Add(float64(stats.FaultCount - last.FaultCount))
	r.reclaimCount.WithLabelValues(label).Add(float64(stats.ReclaimCount - last.ReclaimCount))
	r.reclaimSize.WithLabelValues(label).Add(float64(stats.ReclaimSize - last.ReclaimSize))

	r.condemned.WithLabelValues(label).Set(float64(stats.Condemned))
	r.foundation.WithLabelValues(label).Set(float64(stats.Foundation))
	r.rate.WithLabelValues(label).Set(float64(stats.Rate))
	r.state.WithLabelValues(label).Set(float64(t.State()))
}
