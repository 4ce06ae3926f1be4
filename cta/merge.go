// Copyright 2025 go-cta Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cta

import "cmp"

// Bounds selects how MergePath breaks ties between equal A and B keys.
type Bounds int

const (
	// BoundsLower takes A keys before equal B keys.
	BoundsLower Bounds = iota

	// BoundsUpper takes B keys before equal A keys.
	BoundsUpper
)

// String returns a human-readable name for the bounds.
func (b Bounds) String() string {
	switch b {
	case BoundsLower:
		return "lower"
	case BoundsUpper:
		return "upper"
	default:
		return "unknown"
	}
}

// Counting returns the virtual sequence base, base+1, base+2, ...
// It is used as a key accessor for MergePath when one side of the merge is
// the natural numbers and has no backing storage.
func Counting(base int) func(i int) int {
	return func(i int) int { return base + i }
}

// At returns a key accessor over a slice.
func At[T any](s []T) func(i int) T {
	return func(i int) T { return s[i] }
}

// Less is the natural ordering, usable as the comparator of MergePath.
func Less[T cmp.Ordered](a, b T) bool {
	return a < b
}

// MergePath returns the number of A keys that precede cross-diagonal diag of
// the merge of aKeys[0:aCount] and bKeys[0:bCount].
//
// The result mp lies in [max(0, diag-bCount), min(diag, aCount)], and
// partitioning at (mp, diag-mp) splits the merged output after diag items.
// With BoundsUpper, B keys equal to an A key are placed first.
func MergePath[T any](bounds Bounds, aKeys func(int) T, aCount int, bKeys func(int) T, bCount int,
	diag int, less func(a, b T) bool) int {
	begin := max(0, diag-bCount)
	end := min(diag, aCount)

	for begin < end {
		mid := (begin + end) / 2
		aKey := aKeys(mid)
		bKey := bKeys(diag - 1 - mid)

		var pred bool
		if bounds == BoundsUpper {
			pred = less(aKey, bKey)
		} else {
			pred = !less(bKey, aKey)
		}

		if pred {
			begin = mid + 1
		} else {
			end = mid
		}
	}
	return begin
}

// ComputeMergeRange recovers the merge rectangle of partition number
// partition from its two merge-path crossings mp0 and mp1. Every partition
// but the last covers exactly spacing items.
func ComputeMergeRange(aCount, bCount, partition, spacing, mp0, mp1 int) MergeRange {
	diag0 := spacing * partition
	diag1 := min(aCount+bCount, diag0+spacing)
	return MergeRange{
		ABegin: mp0,
		AEnd:   mp1,
		BBegin: diag0 - mp0,
		BEnd:   diag1 - mp1,
	}
}
