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

package lbs

import (
	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-cta/cta"
)

// Placement is the output of Place.
type Placement struct {
	// Range is the merge range of the *loaded* segment starts. Its B side
	// may extend the CTA's range by one element in each direction.
	Range cta.MergeRange

	// AIndex is the first output index of the lane's serial merge.
	AIndex int

	// BIndex is one before the first segment of the lane's serial merge.
	BIndex int
}

// Place stages the segment starts of the CTA's merge range rng into bShared
// and finds where each lane's serial merge begins.
//
// bShared must hold at least NV+2-rng.ACount() entries. On return it holds
// the loaded starts followed by sentinels equal to count, and every lane
// has passed the two barriers that order the staging before the search and
// the search before any later reuse.
func Place[S constraints.Integer](l *cta.Lane, rng cta.MergeRange, count int, segments []S, bShared []int) Placement {
	nt, vt := l.NT, l.VT
	numSegments := len(segments)

	// Load the start of the segment enclosing the first output of the tile.
	loadPreceding := 0
	if 0 < rng.BBegin {
		loadPreceding = 1
	}
	rng.BBegin -= loadPreceding

	// Load one trailing start so that the last active lane can read the end
	// of its segment as b_shared[seg+1].
	if rng.BEnd < numSegments && rng.AEnd < count {
		rng.BEnd++
	}

	loadCount := rng.BCount()
	fillCount := nt*vt + 1 + loadPreceding - loadCount - rng.ACount()
	cta.Assertf(fillCount >= 0 && loadCount+fillCount <= len(bShared),
		"lbs: CTA %d: window of %d starts and %d sentinels does not fit %d shared entries",
		l.CTA, loadCount, fillCount, len(bShared))

	for i := l.Tid; i < fillCount; i += nt {
		bShared[loadCount+i] = count
	}
	for i := l.Tid; i < loadCount; i += nt {
		bShared[i] = int(segments[rng.BBegin+i])
	}
	l.Sync()

	// Skip the preceding start: it was loaded only to be read, not merged.
	diag := vt*l.Tid + loadPreceding
	mp := cta.MergePath(cta.BoundsUpper, cta.Counting(rng.ABegin), rng.ACount(),
		cta.At(bShared), loadCount+fillCount, diag, cta.Less[int])
	l.Sync()

	// The first serial step must cross the start of the lane's first
	// segment, so BIndex starts one before it.
	return Placement{
		Range:  rng,
		AIndex: rng.ABegin + mp,
		BIndex: rng.BBegin + (diag - mp) - 1,
	}
}
