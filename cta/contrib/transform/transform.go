// Copyright 2025 The go-cta Authors. SPDX-License-Identifier: Apache-2.0

// Package transform launches grids of CTAs that run load-balancing search
// and hand every (output index, segment, rank) triple to a user function.
//
// Usage:
//
//	pool := workerpool.New(0)
//	defer pool.Close()
//
//	opts := transform.Options{Pool: pool}
//	err := transform.LBS(opts, count, segments, func(index, seg, rank int) {
//	    out[index] = seg
//	})
//
// The user function runs concurrently on many goroutines: it must only
// write state owned by its output index.
package transform

import (
	"sync"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"

	"github.com/ajroetker/go-cta/cta"
	"github.com/ajroetker/go-cta/cta/contrib/lbs"
	"github.com/ajroetker/go-cta/cta/contrib/partition"
	"github.com/ajroetker/go-cta/cta/contrib/segload"
	"github.com/ajroetker/go-cta/cta/contrib/workerpool"
)

// Options configures a launch. The zero value uses cta.DefaultBlock and
// runs every CTA on the calling goroutine.
type Options struct {
	// Block is the launch shape; zero means cta.DefaultBlock().
	Block cta.Block

	// Pool schedules CTAs; nil runs them sequentially.
	Pool *workerpool.Pool

	// Metrics, if set, records each launch.
	Metrics *Metrics
}

func (o Options) block() cta.Block {
	if o.Block == (cta.Block{}) {
		return cta.DefaultBlock()
	}
	return o.Block
}

// kernel is the per-lane body run after load-balancing search. scratch is
// nil when the launch loads no cached values.
type kernel func(l *cta.Lane, res *lbs.Result, scratch *segload.Storage)

// LBS calls fn(index, seg, rank) for every output index in [0, count), where
// seg is the segment containing index and rank its position in it.
//
// segments holds the start of each segment: it must be non-decreasing, start
// at 0 when count > 0, and stay within [0, count].
func LBS[S constraints.Integer](opts Options, count int, segments []S, fn func(index, seg, rank int)) error {
	return launch(opts, count, segments, 0, func(l *cta.Lane, res *lbs.Result, _ *segload.Storage) {
		for i := range l.VT {
			if res.Active(i) {
				fn(res.Indices[i], res.Segments[i], res.Ranks[i])
			}
		}
	})
}

// LBSWithValues is LBS that also passes values[seg] to fn. values is
// indexed by segment id and loaded through the CTA's shared scratch.
func LBSWithValues[S constraints.Integer, V segload.Scalar](opts Options, count int, segments []S, values []V,
	fn func(index, seg, rank int, v V)) error {
	if len(values) != len(segments) {
		return errors.Errorf("transform: %d values for %d segments", len(values), len(segments))
	}
	return launch(opts, count, segments, segload.SizeOf[V](), func(l *cta.Lane, res *lbs.Result, scratch *segload.Storage) {
		cached := make([]V, l.VT)
		segload.Load(l, res.Placement.Range.BRange(), res.Segments, scratch, segload.Col(values, cached))
		for i := range l.VT {
			if res.Active(i) {
				fn(res.Indices[i], res.Segments[i], res.Ranks[i], cached[i])
			}
		}
	})
}

// LBSWithValues2 is LBSWithValues for two per-segment attributes.
func LBSWithValues2[S constraints.Integer, V1, V2 segload.Scalar](opts Options, count int, segments []S,
	values1 []V1, values2 []V2, fn func(index, seg, rank int, v1 V1, v2 V2)) error {
	if len(values1) != len(segments) || len(values2) != len(segments) {
		return errors.Errorf("transform: %d and %d values for %d segments", len(values1), len(values2), len(segments))
	}
	elemSize := max(segload.SizeOf[V1](), segload.SizeOf[V2]())
	return launch(opts, count, segments, elemSize, func(l *cta.Lane, res *lbs.Result, scratch *segload.Storage) {
		cached1, cached2 := make([]V1, l.VT), make([]V2, l.VT)
		segload.Load(l, res.Placement.Range.BRange(), res.Segments, scratch,
			segload.Col(values1, cached1), segload.Col(values2, cached2))
		for i := range l.VT {
			if res.Active(i) {
				fn(res.Indices[i], res.Segments[i], res.Ranks[i], cached1[i], cached2[i])
			}
		}
	})
}

// launch partitions the work, then runs body on every lane of every CTA.
func launch[S constraints.Integer](opts Options, count int, segments []S, elemSize int, body kernel) error {
	block := opts.block()
	if err := block.Validate(); err != nil {
		return err
	}
	if err := ValidateSegments(count, segments); err != nil {
		return err
	}

	total := count + len(segments)
	nv := block.NV()
	numCTAs := partition.NumTiles(total, nv)
	if numCTAs == 0 {
		return nil
	}

	start := time.Now()
	partitions := partition.LoadBalance(opts.Pool, count, segments, nv)
	klog.V(1).Infof("transform: %d items in %d segments, block %s, %d CTAs on %d workers",
		count, len(segments), block, numCTAs, opts.Pool.NumWorkers())

	var (
		mu       sync.Mutex
		firstErr error
	)
	opts.Pool.ParallelForAtomic(numCTAs, func(c int) {
		storage := lbs.NewStorage(block)
		var scratch *segload.Storage
		if elemSize > 0 {
			scratch = segload.NewStorage(block, elemSize)
		}
		exception := exceptions.Try(func() {
			block.Run(c, func(l *cta.Lane) {
				res := lbs.LoadBalance(l, count, segments, partitions, storage)
				if l.Tid == 0 && klog.V(2).Enabled() {
					klog.Infof("transform: CTA %d: merge range %s, loaded %s",
						c, res.MergeRange, res.Placement.Range)
				}
				body(l, &res, scratch)
			})
		})
		if exception == nil {
			return
		}
		err, ok := exception.(error)
		if !ok {
			err = errors.Errorf("%v", exception)
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = errors.WithMessagef(err, "transform: CTA %d", c)
		}
		mu.Unlock()
	})
	if firstErr != nil {
		return firstErr
	}

	opts.Metrics.observe(numCTAs, count, time.Since(start))
	return nil
}
