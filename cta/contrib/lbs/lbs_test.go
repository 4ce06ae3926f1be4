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
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-cta/cta"
	"github.com/ajroetker/go-cta/cta/contrib/algo"
	"github.com/ajroetker/go-cta/cta/contrib/partition"
)

// grid is the outcome of running LoadBalance over every CTA.
type grid struct {
	partitions []int
	// results[cta][tid]
	results [][]Result
	// seg and rank per output index, -1 where not produced.
	seg, rank []int
	// produced counts how many times each output was produced.
	produced []int
}

func runGrid[S int | int32](t *testing.T, block cta.Block, count int, segments []S) *grid {
	t.Helper()
	g := &grid{
		partitions: partition.LoadBalance(nil, count, segments, block.NV()),
		seg:        lo.Times(count, func(int) int { return -1 }),
		rank:       lo.Times(count, func(int) int { return -1 }),
		produced:   make([]int, count),
	}
	numCTAs := len(g.partitions) - 1
	g.results = make([][]Result, numCTAs)
	for c := range numCTAs {
		storage := NewStorage(block)
		lanes := make([]Result, block.NT)
		block.Run(c, func(l *cta.Lane) {
			lanes[l.Tid] = LoadBalance(l, count, segments, g.partitions, storage)
		})
		g.results[c] = lanes
		for _, res := range lanes {
			for i := range block.VT {
				if !res.Active(i) {
					continue
				}
				index := res.Indices[i]
				require.Less(t, index, count)
				g.produced[index]++
				g.seg[index] = res.Segments[i]
				g.rank[index] = res.Ranks[i]
			}
		}
	}
	return g
}

func TestScenarios(t *testing.T) {
	block := cta.Block{NT: 4, VT: 2}
	tests := []struct {
		name     string
		count    int
		segments []int32
		seg      []int
		rank     []int
	}{
		{
			name:     "simple",
			count:    8,
			segments: []int32{0, 3, 5, 8},
			seg:      []int{0, 0, 0, 1, 1, 2, 2, 2},
			rank:     []int{0, 1, 2, 0, 1, 0, 1, 2},
		},
		{
			name:     "empty_segments",
			count:    5,
			segments: []int32{0, 2, 2, 2, 5},
			seg:      []int{0, 0, 3, 3, 3},
			rank:     []int{0, 1, 0, 1, 2},
		},
		{
			name:     "leading_empty",
			count:    4,
			segments: []int32{0, 0, 0, 4},
			seg:      []int{2, 2, 2, 2},
			rank:     []int{0, 1, 2, 3},
		},
		{
			name:     "trailing_empty",
			count:    4,
			segments: []int32{0, 2, 4, 4},
			seg:      []int{0, 0, 1, 1},
			rank:     []int{0, 1, 0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := runGrid(t, block, tt.count, tt.segments)
			assert.Equal(t, tt.seg, g.seg)
			assert.Equal(t, tt.rank, g.rank)
			assert.Equal(t, lo.Times(tt.count, func(int) int { return 1 }), g.produced)
		})
	}
}

func TestMultiTile(t *testing.T) {
	block := cta.Block{NT: 4, VT: 2}
	segments := []int{0, 6, 7, 7, 15, 20}
	g := runGrid(t, block, 20, segments)

	// 20 outputs and 6 starts make 26 merge items: three full tiles of 8
	// and one of 2.
	require.Equal(t, []int{0, 6, 12, 19, 20}, g.partitions)
	wantACounts := []int{6, 6, 7, 1}
	for c, lanes := range g.results {
		popcount := 0
		for _, res := range lanes {
			popcount += cta.MergeFlagsCount(res.MergeFlags, block.VT)
			assert.Equal(t, lanes[0].MergeRange, res.MergeRange)
		}
		assert.Equalf(t, wantACounts[c], lanes[0].MergeRange.ACount(), "CTA %d", c)
		assert.Equalf(t, wantACounts[c], popcount, "CTA %d", c)
	}

	// Contiguous coverage across tiles.
	for c := 1; c < len(g.results); c++ {
		assert.Equal(t, g.results[c-1][0].MergeRange.AEnd, g.results[c][0].MergeRange.ABegin)
	}

	wantSeg := []int{0, 0, 0, 0, 0, 0, 1, 3, 3, 3, 3, 3, 3, 3, 3, 4, 4, 4, 4, 4}
	assert.Equal(t, wantSeg, g.seg)
	assert.NotContains(t, g.seg, 2)
	assert.NotContains(t, g.seg, 5)
}

func TestMergeFlagsAndPlacement(t *testing.T) {
	block := cta.Block{NT: 4, VT: 2}
	g := runGrid(t, block, 8, []int{0, 3, 5, 8})
	lanes := g.results[0]

	wantFlags := []int{0b110, 0b011, 0b110, 0b101}
	wantStarts := [][2]int{{0, -1}, {1, 0}, {3, 0}, {4, 1}}
	for tid, res := range lanes {
		assert.Equalf(t, wantFlags[tid], res.MergeFlags, "lane %d flags", tid)
		assert.Equalf(t, wantStarts[tid], [2]int{res.Placement.AIndex, res.Placement.BIndex}, "lane %d start", tid)
		// The trailing start is loaded; there is no preceding one in tile 0.
		assert.Equal(t, cta.MergeRange{ABegin: 0, AEnd: 5, BBegin: 0, BEnd: 4}, res.Placement.Range)
	}

	// Tile 1 loads the start preceding its range.
	for _, res := range g.results[1] {
		assert.Equal(t, 2, res.Placement.Range.BBegin)
		assert.Equal(t, 3, res.MergeRange.BBegin)
	}
}

func TestInactiveLanes(t *testing.T) {
	block := cta.Block{NT: 4, VT: 3}
	g := runGrid(t, block, 5, []int{0, 2})
	for _, lanes := range g.results {
		for tid, res := range lanes {
			for i := range block.VT {
				j := block.NT*i + tid
				assert.Equal(t, res.MergeRange.ABegin+j, res.Indices[i])
				if j >= res.MergeRange.ACount() {
					assert.Equal(t, -1, res.Ranks[i])
					assert.Equal(t, res.MergeRange.BBegin, res.Segments[i])
				}
			}
		}
	}
}

func TestAllBoundaryTile(t *testing.T) {
	// A run of empty segments fills whole tiles with segment starts only.
	counts := append(append([]int{3}, make([]int, 25)...), 4, 0, 2)
	segments, count := algo.ExclusiveScan(counts)
	for _, block := range []cta.Block{{NT: 4, VT: 2}, {NT: 2, VT: 3}, {NT: 1, VT: 1}} {
		g := runGrid(t, block, count, segments)
		checkInvariants(t, g, count, segments)
	}
}

func TestRandomInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	blocks := []cta.Block{{NT: 1, VT: 1}, {NT: 4, VT: 2}, {NT: 3, VT: 5}, {NT: 8, VT: 7}, {NT: 32, VT: 3}}
	for trial := 0; trial < 60; trial++ {
		numSegments := 1 + rng.Intn(60)
		counts := lo.Times(numSegments, func(int) int {
			switch rng.Intn(4) {
			case 0:
				return 0
			case 1:
				return rng.Intn(3)
			default:
				return rng.Intn(40)
			}
		})
		segments, count := algo.ExclusiveScan(counts)
		block := blocks[trial%len(blocks)]
		g := runGrid(t, block, count, segments)
		checkInvariants(t, g, count, segments)
	}
}

func checkInvariants(t *testing.T, g *grid, count int, segments []int) {
	t.Helper()
	end := func(s int) int {
		if s+1 < len(segments) {
			return segments[s+1]
		}
		return count
	}
	for i := range count {
		require.Equalf(t, 1, g.produced[i], "output %d produced %d times", i, g.produced[i])
		s := g.seg[i]
		require.Truef(t, segments[s] <= i && i < end(s), "output %d assigned to segment %d [%d, %d)", i, s, segments[s], end(s))
		require.Equal(t, i-segments[s], g.rank[i])
		require.Greater(t, end(s), segments[s], "empty segment %d produced output %d", s, i)
	}
	for c, lanes := range g.results {
		popcount := 0
		for _, res := range lanes {
			popcount += cta.MergeFlagsCount(res.MergeFlags, len(res.Indices))
		}
		require.Equalf(t, lanes[0].MergeRange.ACount(), popcount, "CTA %d merge flags", c)
	}
}

func TestIdempotent(t *testing.T) {
	block := cta.Block{NT: 8, VT: 3}
	segments := []int32{0, 0, 5, 9, 9, 9, 40, 41}
	first := runGrid(t, block, 64, segments)
	second := runGrid(t, block, 64, segments)
	assert.Equal(t, first.results, second.results)
}

func TestPlaceDebugChecks(t *testing.T) {
	previous := cta.SetDebug(true)
	defer cta.SetDebug(previous)

	block := cta.Block{NT: 2, VT: 2}
	segments := []int{0, 2}
	rng := cta.MergeRange{ABegin: 0, AEnd: 4, BBegin: 0, BEnd: 2}
	require.Panics(t, func() {
		// Too small for NV+2-ACount entries.
		bShared := make([]int, 1)
		block.Run(0, func(l *cta.Lane) {
			Place(l, rng, 4, segments, bShared)
		})
	})
}
