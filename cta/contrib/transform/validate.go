// Copyright 2025 The go-cta Authors. SPDX-License-Identifier: Apache-2.0

package transform

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-cta/cta/contrib/algo"
)

// ValidateSegments checks that segments is a valid descriptor of count
// outputs: non-decreasing starts within [0, count], the first of which is 0
// whenever there are outputs to cover.
func ValidateSegments[S constraints.Integer](count int, segments []S) error {
	if count < 0 {
		return errors.Errorf("invalid count %d: must be non-negative", count)
	}
	if count > 0 && (len(segments) == 0 || segments[0] != 0) {
		return errors.Errorf("segments must start at 0 to cover %d outputs", count)
	}
	if ok, at := algo.IsNonDecreasing(segments); !ok {
		return errors.Errorf("segments must be non-decreasing: segments[%d]=%d < segments[%d]=%d",
			at, segments[at], at-1, segments[at-1])
	}
	if len(segments) > 0 {
		if last := int(segments[len(segments)-1]); last > count {
			return errors.Errorf("segment %d starts at %d, past the %d outputs", len(segments)-1, last, count)
		}
		if first := int(segments[0]); first < 0 {
			return errors.Errorf("segment 0 starts at negative offset %d", first)
		}
	}
	return nil
}
