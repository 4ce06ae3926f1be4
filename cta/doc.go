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

// Package cta runs cooperative thread arrays (CTAs) on the CPU.
//
// A CTA is a group of NT lanes that execute the same kernel function and
// share scratch memory. Each lane runs on its own goroutine; Lane.Sync is a
// full-CTA barrier with the same meaning as a device __syncthreads: every
// write made by any lane before the barrier is visible to every lane after it.
//
// Basic usage:
//
//	import "github.com/ajroetker/go-cta/cta"
//
//	block := cta.Block{NT: 128, VT: 7}
//	shared := make([]int, block.NV())
//	block.Run(0, func(l *cta.Lane) {
//		for i := l.Tid; i < len(shared); i += l.NT {
//			shared[i] = i
//		}
//		l.Sync()
//		// All of shared is now visible to every lane.
//	})
//
// The package also carries the merge-path primitives that CTA algorithms
// build on: MergePath, ComputeMergeRange and the Counting iterator.
package cta
