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

// Package partition computes, on the host side, where the boundaries of
// fixed-size tiles cross a merge path. Each CTA of a merge-like kernel then
// recovers its own rectangle of the merge from two neighboring crossings
// with cta.ComputeMergeRange.
package partition

import (
	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-cta/cta"
	"github.com/ajroetker/go-cta/cta/contrib/workerpool"
)

// searchBatch is the number of crossings each worker claims at a time.
const searchBatch = 64

// NumTiles returns the number of tiles of size spacing needed to cover
// total merge items.
func NumTiles(total, spacing int) int {
	return (total + spacing - 1) / spacing
}

// Search returns NumTiles(aCount+bCount, spacing)+1 merge-path crossings:
// crossing i is the number of A keys in the first min(spacing*i, aCount+bCount)
// items of the merge.
//
// Crossings are computed concurrently on pool; a nil pool runs them on the
// calling goroutine.
func Search[T any](pool *workerpool.Pool, bounds cta.Bounds, aKeys func(int) T, aCount int,
	bKeys func(int) T, bCount int, spacing int, less func(a, b T) bool) []int {
	total := aCount + bCount
	crossings := make([]int, NumTiles(total, spacing)+1)
	pool.ParallelForAtomicBatched(len(crossings), searchBatch, func(start, end int) {
		for i := start; i < end; i++ {
			diag := min(spacing*i, total)
			crossings[i] = cta.MergePath(bounds, aKeys, aCount, bKeys, bCount, diag, less)
		}
	})
	return crossings
}

// MergePath partitions the merge of the sorted slices a and b.
func MergePath[T any](pool *workerpool.Pool, bounds cta.Bounds, a, b []T, spacing int,
	less func(a, b T) bool) []int {
	return Search(pool, bounds, cta.At(a), len(a), cta.At(b), len(b), spacing, less)
}

// LoadBalance partitions the load-balancing search of count outputs over
// segments: the merge of the outputs 0, 1, ..., count-1 with the segment
// starts, with starts taken before equal outputs.
func LoadBalance[S constraints.Integer](pool *workerpool.Pool, count int, segments []S, spacing int) []int {
	starts := func(i int) int { return int(segments[i]) }
	return Search(pool, cta.BoundsUpper, cta.Counting(0), count, starts, len(segments), spacing, cta.Less[int])
}
