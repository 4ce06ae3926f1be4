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

import "fmt"

// Range is the half-open interval [Begin, End).
type Range struct {
	Begin, End int
}

// Count returns End - Begin.
func (r Range) Count() int {
	return r.End - r.Begin
}

// Valid reports whether Begin <= End.
func (r Range) Valid() bool {
	return r.Begin <= r.End
}

// MergeRange is the rectangle [ABegin, AEnd) x [BBegin, BEnd) of a merge
// that one CTA (or one thread) is responsible for.
type MergeRange struct {
	ABegin, AEnd int
	BBegin, BEnd int
}

// ACount returns the number of A items in the range.
func (m MergeRange) ACount() int { return m.AEnd - m.ABegin }

// BCount returns the number of B items in the range.
func (m MergeRange) BCount() int { return m.BEnd - m.BBegin }

// Total returns ACount() + BCount().
func (m MergeRange) Total() int { return m.ACount() + m.BCount() }

// ARange returns the A side as a Range.
func (m MergeRange) ARange() Range { return Range{m.ABegin, m.AEnd} }

// BRange returns the B side as a Range.
func (m MergeRange) BRange() Range { return Range{m.BBegin, m.BEnd} }

// Valid reports whether both sides are well-formed intervals.
func (m MergeRange) Valid() bool {
	return m.ABegin <= m.AEnd && m.BBegin <= m.BEnd
}

func (m MergeRange) String() string {
	return fmt.Sprintf("a[%d,%d) b[%d,%d)", m.ABegin, m.AEnd, m.BBegin, m.BEnd)
}
