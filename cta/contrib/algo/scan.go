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

package algo

import "golang.org/x/exp/constraints"

// Number is a constraint for types that can be scanned.
type Number interface {
	constraints.Integer | constraints.Float
}

// PrefixSum computes the inclusive prefix sum in place.
// Result[i] = data[0] + data[1] + ... + data[i]
//
// Example:
//
//	data := []int64{1, 2, 3, 4, 5, 6, 7, 8}
//	PrefixSum(data)
//	// data = [1, 3, 6, 10, 15, 21, 28, 36]
func PrefixSum[T Number](data []T) {
	var carry T
	for i := range data {
		carry += data[i]
		data[i] = carry
	}
}

// ExclusiveScan returns the exclusive prefix sum of counts and its total.
// starts[i] = counts[0] + ... + counts[i-1]
//
// With counts holding segment lengths, starts is the CSR segments
// descriptor and total the number of items across all segments.
func ExclusiveScan[T Number](counts []T) (starts []T, total T) {
	starts = make([]T, len(counts))
	for i, c := range counts {
		starts[i] = total
		total += c
	}
	return starts, total
}

// FindIf returns the index of the first element for which pred is true,
// or -1 if there is none.
func FindIf[T any](slice []T, pred func(i int, v T) bool) int {
	for i, v := range slice {
		if pred(i, v) {
			return i
		}
	}
	return -1
}

// IsNonDecreasing reports whether data[i-1] <= data[i] for every i. If not,
// it also returns the first i that breaks the order.
func IsNonDecreasing[T constraints.Ordered](data []T) (ok bool, at int) {
	at = FindIf(data, func(i int, v T) bool { return i > 0 && v < data[i-1] })
	return at < 0, at
}
