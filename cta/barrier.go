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
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"
)

// ErrBarrierBroken is the panic value delivered to lanes waiting on a barrier
// whose CTA is being torn down because another lane panicked.
var ErrBarrierBroken = errors.New("cta: barrier broken by a panicking lane")

// Barrier is a reusable barrier for a fixed group of goroutines.
//
// Lanes that finish their kernel early call Leave, after which the barrier
// no longer waits for them. This matches devices where exited threads do
// not participate in later barriers.
type Barrier struct {
	_ cpu.CacheLinePad

	mu         sync.Mutex
	cond       sync.Cond
	parties    int
	waiting    int
	generation uint64
	broken     bool

	_ cpu.CacheLinePad
}

// NewBarrier returns a barrier for n parties.
func NewBarrier(n int) *Barrier {
	b := &Barrier{parties: n}
	b.cond.L = &b.mu
	return b
}

// Wait blocks until all remaining parties have called Wait.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		panic(ErrBarrierBroken)
	}
	gen := b.generation
	b.waiting++
	if b.waiting >= b.parties {
		b.lockedRelease()
		return
	}
	for gen == b.generation && !b.broken {
		b.cond.Wait()
	}
	if gen == b.generation {
		panic(ErrBarrierBroken)
	}
}

// Leave removes the caller from the barrier for good.
func (b *Barrier) Leave() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.parties--
	if b.waiting > 0 && b.waiting >= b.parties {
		b.lockedRelease()
	}
}

// Break wakes every waiter with ErrBarrierBroken. Later calls to Wait panic.
func (b *Barrier) Break() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.broken = true
	b.cond.Broadcast()
}

// lockedRelease starts a new generation. It must be called with b.mu held.
func (b *Barrier) lockedRelease() {
	b.waiting = 0
	b.generation++
	b.cond.Broadcast()
}
