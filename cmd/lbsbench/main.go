// Copyright 2025 The go-cta Authors. SPDX-License-Identifier: Apache-2.0

// lbsbench generates random segment descriptors, runs load-balanced
// transforms over them, verifies every (index, segment, rank) triple and
// reports throughput.
package main

import (
	goflag "flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/ajroetker/go-cta/cta"
	"github.com/ajroetker/go-cta/cta/contrib/algo"
	"github.com/ajroetker/go-cta/cta/contrib/transform"
	"github.com/ajroetker/go-cta/cta/contrib/workerpool"
)

type config struct {
	segments      int
	meanLength    int
	emptyFraction float64
	nt, vt        int
	workers       int
	iterations    int
	seed          int64
	metrics       bool
}

func main() {
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	cfg := config{}
	cmd := &cobra.Command{
		Use:   "lbsbench",
		Short: "Benchmark and verify CTA load-balancing search on random segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
		SilenceUsage: true,
	}
	defaults := cta.DefaultBlock()
	flags := cmd.Flags()
	flags.IntVar(&cfg.segments, "segments", 100_000, "Number of segments.")
	flags.IntVar(&cfg.meanLength, "mean-length", 20, "Mean length of non-empty segments.")
	flags.Float64Var(&cfg.emptyFraction, "empty-fraction", 0.25, "Fraction of segments that are empty.")
	flags.IntVar(&cfg.nt, "nt", defaults.NT, "Lanes per CTA.")
	flags.IntVar(&cfg.vt, "vt", defaults.VT, "Items per lane.")
	flags.IntVar(&cfg.workers, "workers", 0, "Worker goroutines running CTAs; 0 uses one per processor.")
	flags.IntVar(&cfg.iterations, "iterations", 5, "Number of timed launches.")
	flags.Int64Var(&cfg.seed, "seed", 1, "Random seed.")
	flags.BoolVar(&cfg.metrics, "metrics", false, "Print the collected launch metrics.")

	if err := cmd.Execute(); err != nil {
		klog.Errorf("lbsbench failed: %+v", err)
		os.Exit(1)
	}
}

// randomLengths draws segment lengths with a heavy tail and a share of
// empty segments, the case load-balancing search exists for.
func randomLengths(cfg config) []int {
	rng := rand.New(rand.NewSource(cfg.seed))
	return lo.Times(cfg.segments, func(int) int {
		if rng.Float64() < cfg.emptyFraction {
			return 0
		}
		return 1 + int(rng.ExpFloat64()*float64(cfg.meanLength))
	})
}

func run(cfg config) error {
	device := cta.CurrentDevice()
	block := cta.Block{NT: cfg.nt, VT: cfg.vt}
	if err := block.Validate(); err != nil {
		return err
	}
	if cfg.workers <= 0 {
		cfg.workers = device.NumProcs
	}

	lengths := randomLengths(cfg)
	segments, count := algo.ExclusiveScan(lengths)
	fmt.Printf("device %s (%d-byte vectors, %d processors), block %s, %d workers\n",
		device.Name, device.VectorWidth, device.NumProcs, block, cfg.workers)
	fmt.Printf("%s outputs in %s segments (%s empty)\n", humanize.Comma(int64(count)),
		humanize.Comma(int64(len(segments))),
		humanize.Comma(int64(lo.Count(lengths, 0))))

	pool := workerpool.New(cfg.workers)
	defer pool.Close()

	reg := prometheus.NewRegistry()
	metrics, err := transform.NewMetrics(reg)
	if err != nil {
		return err
	}
	opts := transform.Options{Block: block, Pool: pool, Metrics: metrics}

	seg := make([]int32, count)
	rank := make([]int32, count)
	var best time.Duration
	for it := range cfg.iterations {
		start := time.Now()
		err := transform.LBS(opts, count, segments, func(index, s, r int) {
			seg[index] = int32(s)
			rank[index] = int32(r)
		})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		if it == 0 || elapsed < best {
			best = elapsed
		}
		klog.V(1).Infof("iteration %d: %s", it, elapsed)
	}

	if err := verify(lengths, seg, rank); err != nil {
		return err
	}
	if cfg.iterations > 0 {
		rate := float64(count+len(segments)) / best.Seconds()
		fmt.Printf("best of %d: %s, %s merge items/s\n", cfg.iterations, best, humanize.SIWithDigits(rate, 2, ""))
	}

	if cfg.metrics {
		families, err := reg.Gather()
		if err != nil {
			return errors.Wrap(err, "gathering metrics")
		}
		for _, mf := range families {
			for _, m := range mf.GetMetric() {
				switch {
				case m.GetCounter() != nil:
					fmt.Printf("%s %g\n", mf.GetName(), m.GetCounter().GetValue())
				case m.GetHistogram() != nil:
					h := m.GetHistogram()
					fmt.Printf("%s count=%d sum=%gs\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
				}
			}
		}
	}
	return nil
}

// verify checks the last launch against a serial expansion of lengths.
func verify(lengths []int, seg, rank []int32) error {
	index := 0
	for s, n := range lengths {
		for r := range n {
			if int(seg[index]) != s || int(rank[index]) != r {
				return errors.Errorf("output %d: got segment %d rank %d, want segment %d rank %d",
					index, seg[index], rank[index], s, r)
			}
			index++
		}
	}
	fmt.Printf("verified %s outputs\n", humanize.Comma(int64(index)))
	return nil
}
