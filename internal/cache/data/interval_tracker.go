// Copyright 2026 Google LLC
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

package data

import (
	"slices"
	"sort"
)

// IntervalTracker keeps covered offsets as a sorted slice of disjoint,
// non-adjacent half-open ranges. Memory is proportional to the number of gaps
// rather than to the resource length, which suits sparse access over large
// resources.
type IntervalTracker struct {
	// INVARIANT: for all i, ranges[i].Start < ranges[i].End
	// INVARIANT: for all i, ranges[i].End < ranges[i+1].Start
	ranges  []ByteRange
	covered int64
}

func NewIntervalTracker() *IntervalTracker {
	return &IntervalTracker{}
}

func (it *IntervalTracker) Add(start, end int64) {
	if start > end {
		return
	}
	nr := ByteRange{Start: start, End: end + 1}

	// [i, j) are the existing ranges that overlap or touch nr.
	i := sort.Search(len(it.ranges), func(k int) bool { return it.ranges[k].End >= nr.Start })
	j := sort.Search(len(it.ranges), func(k int) bool { return it.ranges[k].Start > nr.End })

	for _, r := range it.ranges[i:j] {
		it.covered -= r.Len()
	}
	if i < j {
		nr.Start = min(nr.Start, it.ranges[i].Start)
		nr.End = max(nr.End, it.ranges[j-1].End)
	}
	it.covered += nr.Len()
	it.ranges = slices.Replace(it.ranges, i, j, nr)
}

func (it *IntervalTracker) Contains(start, end int64) bool {
	if start > end {
		return true
	}
	i := sort.Search(len(it.ranges), func(k int) bool { return it.ranges[k].End > start })
	if i == len(it.ranges) {
		return false
	}
	r := it.ranges[i]
	return r.Start <= start && r.End > end
}

func (it *IntervalTracker) Covered() int64 {
	return it.covered
}

func (it *IntervalTracker) Ranges() []ByteRange {
	return slices.Clone(it.ranges)
}
