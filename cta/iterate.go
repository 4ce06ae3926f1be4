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

import "math/bits"

// StridedIterate calls fn(i, j) for each of the VT items of lane tid in
// strided order, j = nt*i + tid, skipping items with j >= count.
func StridedIterate(tid, nt, vt, count int, fn func(i, j int)) {
	for i := range vt {
		j := nt*i + tid
		if j < count {
			fn(i, j)
		}
	}
}

// MergeFlagsCount returns the number of set bits among the low vt bits of
// flags: the number of serial merge steps that consumed an A item.
func MergeFlagsCount(flags, vt int) int {
	mask := uint64(1)<<uint(vt) - 1
	return bits.OnesCount64(uint64(flags) & mask)
}
