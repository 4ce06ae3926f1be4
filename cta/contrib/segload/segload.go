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

// Package segload loads per-segment attributes into per-item registers.
//
// After a load-balancing search has told each lane which segment each of
// its items belongs to, Load stages every requested attribute of the
// CTA's segments in shared memory and gathers it back out per item. The
// attributes are given as columns; they are loaded one at a time through
// the same scratch, which is therefore sized for the widest column rather
// than for their sum.
//
// Columns hold plain values only (integers and floats, including named
// types over them such as float16.Float16), since the scratch is raw memory
// reinterpreted as each column's element type.
package segload

import (
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-cta/cta"
)

// Scalar is a constraint for pointer-free element types.
type Scalar interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

// SizeOf returns the size in bytes of T.
func SizeOf[T Scalar]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Storage is the shared scratch of one CTA running Load.
type Storage struct {
	// words keeps the scratch 8-byte aligned for every Scalar.
	words    []uint64
	elemSize int
}

// NewStorage allocates scratch for block and columns of up to elemSize
// bytes per element.
//
// A tile can load up to NV+2 segments: its own, the one preceding it and
// the one following it, so the scratch holds NV+2 elements.
func NewStorage(block cta.Block, elemSize int) *Storage {
	numBytes := elemSize * (block.NV() + 2)
	return &Storage{
		words:    make([]uint64, (numBytes+7)/8),
		elemSize: elemSize,
	}
}

// ElemSize returns the widest element the storage was sized for.
func (s *Storage) ElemSize() int {
	return s.elemSize
}

// view reinterprets the scratch as a slice of T.
func view[T Scalar](s *Storage) []T {
	n := len(s.words) * 8 / SizeOf[T]()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(s.words))), n)
}

// Column is one per-segment attribute to load.
type Column interface {
	// ElemSize is the size in bytes of one element.
	ElemSize() int

	load(l *cta.Lane, rng cta.Range, segments []int, storage *Storage)
}

type column[T Scalar] struct {
	src []T
	dst []T
}

// Col returns the column that loads src[segments[k]] into dst[k] for each
// of the lane's VT items. src is indexed by segment id and shared by all
// lanes; dst belongs to the calling lane and must hold VT elements.
func Col[T Scalar](src []T, dst []T) Column {
	return column[T]{src: src, dst: dst}
}

func (c column[T]) ElemSize() int {
	return SizeOf[T]()
}

func (c column[T]) load(l *cta.Lane, rng cta.Range, segments []int, storage *Storage) {
	shared := view[T](storage)
	cta.Assertf(rng.Count() <= len(shared),
		"segload: CTA %d: %d segments do not fit a scratch of %d elements", l.CTA, rng.Count(), len(shared))
	cta.Assertf(len(c.dst) >= l.VT, "segload: destination holds %d elements, want %d", len(c.dst), l.VT)

	for j := rng.Begin + l.Tid; j < rng.End; j += l.NT {
		shared[j-rng.Begin] = c.src[j]
	}
	l.Sync()

	for k := range l.VT {
		c.dst[k] = shared[segments[k]-rng.Begin]
	}
	l.Sync()
}

// MaxElemSize returns the largest ElemSize among columns.
func MaxElemSize(columns ...Column) int {
	size := 0
	for _, c := range columns {
		size = max(size, c.ElemSize())
	}
	return size
}

// Load fills each column's destination with the attribute of the segment
// of each of the lane's items.
//
// rng is the range of segment ids the tile touches and segments the lane's
// VT segment ids, all in rng. Inactive items still read a valid element of
// the tile; their values carry no meaning. Every lane of the CTA must call
// Load with the same columns in the same order.
func Load(l *cta.Lane, rng cta.Range, segments []int, storage *Storage, columns ...Column) {
	for _, c := range columns {
		cta.Assertf(c.ElemSize() <= storage.elemSize,
			"segload: column of %d-byte elements does not fit storage sized for %d bytes",
			c.ElemSize(), storage.elemSize)
		c.load(l, rng, segments, storage)
	}
}
