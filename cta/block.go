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

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// MaxVT is the largest number of items per thread. Algorithms keep one flag
// bit per serial step and run VT+1 steps, so VT+1 bits must fit in an int32.
const MaxVT = 30

// Block is the launch shape of a CTA: NT lanes, each owning VT items.
type Block struct {
	NT int
	VT int
}

// NV returns the number of items owned by the whole CTA.
func (b Block) NV() int {
	return b.NT * b.VT
}

// Validate returns an error if the shape cannot be launched.
func (b Block) Validate() error {
	if b.NT <= 0 {
		return errors.Errorf("cta: invalid block, NT=%d must be positive", b.NT)
	}
	if b.VT <= 0 || b.VT > MaxVT {
		return errors.Errorf("cta: invalid block, VT=%d must be in [1, %d]", b.VT, MaxVT)
	}
	return nil
}

func (b Block) String() string {
	return fmt.Sprintf("%dx%d", b.NT, b.VT)
}

// Lane is the per-thread view of a running CTA.
type Lane struct {
	// Tid is the lane index in [0, NT).
	Tid int

	// CTA is the index of the CTA within its grid.
	CTA int

	NT, VT int

	barrier *Barrier
}

// NV returns NT*VT.
func (l *Lane) NV() int {
	return l.NT * l.VT
}

// Sync is a full-CTA barrier.
func (l *Lane) Sync() {
	l.barrier.Wait()
}

// Run executes kernel on NT lanes as CTA number cta and returns once every
// lane has returned.
//
// If a lane panics, the barrier is broken so that its peers unwind, and the
// first panic value is re-raised on the caller's goroutine.
func (b Block) Run(cta int, kernel func(l *Lane)) {
	barrier := NewBarrier(b.NT)

	var (
		wg         sync.WaitGroup
		panicOnce  sync.Once
		firstPanic any
	)
	for tid := range b.NT {
		lane := &Lane{Tid: tid, CTA: cta, NT: b.NT, VT: b.VT, barrier: barrier}
		wg.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { firstPanic = r })
					barrier.Break()
					return
				}
				barrier.Leave()
			}()
			kernel(lane)
		})
	}
	wg.Wait()

	if firstPanic != nil {
		panic(firstPanic)
	}
}
