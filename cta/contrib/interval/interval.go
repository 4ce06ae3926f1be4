// Copyright 2025 The go-cta Authors. SPDX-License-Identifier: Apache-2.0

// Package interval implements interval expand and interval move on top of
// load-balanced transforms.
package interval

import (
	"github.com/pkg/errors"

	"github.com/ajroetker/go-cta/cta/contrib/algo"
	"github.com/ajroetker/go-cta/cta/contrib/segload"
	"github.com/ajroetker/go-cta/cta/contrib/transform"
)

// Expand returns counts[0] copies of values[0], followed by counts[1]
// copies of values[1], and so on.
func Expand[V segload.Scalar](opts transform.Options, counts []int, values []V) ([]V, error) {
	if len(counts) != len(values) {
		return nil, errors.Errorf("interval.Expand: %d counts for %d values", len(counts), len(values))
	}
	if at := algo.FindIf(counts, func(_ int, c int) bool { return c < 0 }); at >= 0 {
		return nil, errors.Errorf("interval.Expand: negative count %d for interval %d", counts[at], at)
	}

	starts, total := algo.ExclusiveScan(counts)
	out := make([]V, total)
	err := transform.LBSWithValues(opts, total, starts, values, func(index, _, _ int, v V) {
		out[index] = v
	})
	if err != nil {
		return nil, errors.WithMessage(err, "interval.Expand")
	}
	return out, nil
}

// Move copies, for every interval i, src[gather[i]:gather[i]+counts[i]] to
// dst[scatter[i]:scatter[i]+counts[i]]. Destination intervals must not
// overlap.
func Move[V any](opts transform.Options, counts, gather, scatter []int, src, dst []V) error {
	if len(gather) != len(counts) || len(scatter) != len(counts) {
		return errors.Errorf("interval.Move: %d counts, %d gather and %d scatter offsets",
			len(counts), len(gather), len(scatter))
	}
	for i, c := range counts {
		switch {
		case c < 0:
			return errors.Errorf("interval.Move: negative count %d for interval %d", c, i)
		case gather[i] < 0 || gather[i]+c > len(src):
			return errors.Errorf("interval.Move: interval %d reads [%d, %d) of %d source items",
				i, gather[i], gather[i]+c, len(src))
		case scatter[i] < 0 || scatter[i]+c > len(dst):
			return errors.Errorf("interval.Move: interval %d writes [%d, %d) of %d destination items",
				i, scatter[i], scatter[i]+c, len(dst))
		}
	}

	starts, total := algo.ExclusiveScan(counts)
	err := transform.LBSWithValues2(opts, total, starts, gather, scatter, func(_, _, rank int, g, s int) {
		dst[s+rank] = src[g+rank]
	})
	return errors.WithMessage(err, "interval.Move")
}
