// Copyright 2025 The go-cta Authors. SPDX-License-Identifier: Apache-2.0

package interval

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-cta/cta"
	"github.com/ajroetker/go-cta/cta/contrib/transform"
	"github.com/ajroetker/go-cta/cta/contrib/workerpool"
)

func TestExpand(t *testing.T) {
	opts := transform.Options{Block: cta.Block{NT: 4, VT: 2}}

	got := must.M1(Expand(opts, []int{3, 2, 3}, []float64{10, 20, 30}))
	assert.Equal(t, []float64{10, 10, 10, 20, 20, 30, 30, 30}, got)

	got = must.M1(Expand(opts, []int{2, 0, 0, 3}, []float64{1, 2, 3, 4}))
	assert.Equal(t, []float64{1, 1, 4, 4, 4}, got)

	got = must.M1(Expand(opts, []int{0, 0}, []float64{1, 2}))
	assert.Empty(t, got)

	_, err := Expand(opts, []int{1, 2}, []float64{1})
	assert.Error(t, err)
	_, err = Expand(opts, []int{1, -2}, []float64{1, 2})
	assert.Error(t, err)
}

func TestExpandLarge(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Close()

	counts := lo.Times(500, func(i int) int { return (i * 7) % 13 })
	values := lo.Times(500, func(i int) int32 { return int32(i) })
	got := must.M1(Expand(transform.Options{Pool: pool}, counts, values))

	var want []int32
	for i, c := range counts {
		for range c {
			want = append(want, values[i])
		}
	}
	require.Equal(t, want, got)
}

func TestMove(t *testing.T) {
	src := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	dst := make([]string, 8)
	counts := []int{2, 0, 3, 3}
	gather := []int{6, 0, 0, 3}
	scatter := []int{0, 8, 5, 2}

	opts := transform.Options{Block: cta.Block{NT: 2, VT: 3}}
	require.NoError(t, Move(opts, counts, gather, scatter, src, dst))
	assert.Equal(t, []string{"g", "h", "d", "e", "f", "a", "b", "c"}, dst)
}

func TestMoveErrors(t *testing.T) {
	src := make([]int, 4)
	dst := make([]int, 4)
	opts := transform.Options{}
	assert.Error(t, Move(opts, []int{1}, []int{0, 1}, []int{0}, src, dst))
	assert.Error(t, Move(opts, []int{-1}, []int{0}, []int{0}, src, dst))
	assert.Error(t, Move(opts, []int{3}, []int{2}, []int{0}, src, dst))
	assert.Error(t, Move(opts, []int{3}, []int{0}, []int{2}, src, dst))
	assert.NoError(t, Move(opts, []int{4}, []int{0}, []int{0}, src, dst))
}
