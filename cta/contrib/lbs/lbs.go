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

// Package lbs implements CTA load-balancing search.
//
// Given count outputs split into segments by a sorted array of segment
// starts, LoadBalance tells every lane of a CTA which output index, owning
// segment and rank within that segment each of its VT items corresponds
// to. Work is divided by a merge-path search of the outputs 0,1,2,...
// against the segment starts, so every lane gets VT merge items whatever
// the segment sizes, and empty segments cost one merge item each.
//
// Each CTA covers NV = NT*VT merge items (outputs plus segment starts).
// The crossings of the CTA boundaries with the merge path come from the
// host, see the partition package.
package lbs

import (
	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-cta/cta"
)

// Storage is the shared memory of one CTA running LoadBalance.
type Storage struct {
	// Indices holds, in turn, the staged segment starts and the segment id
	// of every output of the tile.
	Indices []int
}

// NewStorage allocates shared memory for block.
func NewStorage(block cta.Block) *Storage {
	return &Storage{Indices: make([]int, block.NV()+2)}
}

// Result is the per-lane output of LoadBalance.
type Result struct {
	Placement Placement

	// MergeRange is the CTA's merge range as given by the partitions.
	MergeRange cta.MergeRange

	// MergeFlags has bit i set iff serial merge step i consumed an output
	// rather than a segment start (thread order).
	MergeFlags int

	// Indices, Segments and Ranks hold VT entries in strided order: entry i
	// is item NT*i+Tid of the tile. Inactive entries have Ranks[i] == -1.
	Indices  []int
	Segments []int
	Ranks    []int
}

// Active reports whether strided entry i maps to an output.
func (r *Result) Active(i int) bool {
	return r.Ranks[i] >= 0
}

// LoadBalance maps the lane's items of CTA l.CTA to (output, segment, rank)
// triples.
//
// partitions[l.CTA] and partitions[l.CTA+1] are the merge-path crossings
// of the CTA boundaries, with spacing NV. storage is shared by all lanes of
// the CTA and must come from NewStorage with the same block.
func LoadBalance[S constraints.Integer](l *cta.Lane, count int, segments []S, partitions []int,
	storage *Storage) Result {
	nt, vt := l.NT, l.VT
	nv := nt * vt

	mp0 := partitions[l.CTA]
	mp1 := partitions[l.CTA+1]
	rng := cta.ComputeMergeRange(count, len(segments), l.CTA, nv, mp0, mp1)
	cta.Assertf(rng.Valid() && rng.AEnd <= count && rng.BEnd <= len(segments),
		"lbs: CTA %d: partitions (%d, %d) give invalid range %s", l.CTA, mp0, mp1, rng)

	// a_shared[i] lives at Indices[i-rng.ABegin] for i in [ABegin, AEnd).
	// b_shared starts right after it.
	aCount := rng.ACount()
	shared := storage.Indices
	placement := Place(l, rng, count, segments, shared[aCount:])

	// b_shared[s] lives at Indices[bBase+s], indexed by segment id.
	bBase := aCount - placement.Range.BBegin

	curItem := placement.AIndex
	curSegment := placement.BIndex
	mergeFlags := 0

	// VT+1 steps: the step after the last output may still cross segment
	// starts that must be reflected in the flags.
	for i := range vt + 1 {
		p := curItem < shared[bBase+curSegment+1]
		if p && i < vt {
			shared[curItem-rng.ABegin] = curSegment
			curItem++
		} else {
			curSegment++
		}
		if p {
			mergeFlags |= 1 << i
		}
	}
	l.Sync()

	res := Result{
		Placement:  placement,
		MergeRange: rng,
		MergeFlags: mergeFlags,
		Indices:    make([]int, vt),
		Segments:   make([]int, vt),
		Ranks:      make([]int, vt),
	}
	for i := range vt {
		j := nt*i + l.Tid
		res.Indices[i] = rng.ABegin + j
		if j < aCount {
			seg := shared[j]
			res.Segments[i] = seg
			res.Ranks[i] = res.Indices[i] - shared[bBase+seg]
		} else {
			res.Segments[i] = rng.BBegin
			res.Ranks[i] = -1
		}
	}
	l.Sync()

	return res
}
