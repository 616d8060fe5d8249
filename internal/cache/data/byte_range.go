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

import "fmt"

// ByteRange represents a contiguous range of bytes [Start, End).
type ByteRange struct {
	Start int64
	End   int64 // exclusive
}

func (r ByteRange) Len() int64 {
	return r.End - r.Start
}

func (r ByteRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// CoverageTracker records which byte offsets of a fixed-length resource have
// been filled. Coverage only ever grows.
//
// Ranges passed to Add and Contains are inclusive: [start, end].
type CoverageTracker interface {
	// Add marks every offset in [start, end] as present.
	Add(start, end int64)

	// Contains reports whether every offset in [start, end] is present.
	Contains(start, end int64) bool

	// Covered returns the number of offsets marked present.
	Covered() int64

	// Ranges returns the covered offsets as sorted, disjoint, coalesced ranges.
	Ranges() []ByteRange
}

// TrackerKind selects a CoverageTracker implementation.
type TrackerKind string

const (
	// BitmapTrackerKind keeps one bit per byte offset.
	BitmapTrackerKind TrackerKind = "bitmap"

	// IntervalTrackerKind keeps a sorted list of disjoint covered intervals.
	IntervalTrackerKind TrackerKind = "intervals"
)

// NewCoverageTracker returns the tracker of the given kind. Unknown kinds fall
// back to the bitmap tracker.
func NewCoverageTracker(kind TrackerKind) CoverageTracker {
	switch kind {
	case IntervalTrackerKind:
		return NewIntervalTracker()
	default:
		return NewBitmapTracker()
	}
}

// InvariantViolation is the panic value raised when the cache is used outside
// of its preconditions. It always indicates a bug in the caller.
type InvariantViolation struct {
	Op  string
	Msg string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", v.Op, v.Msg)
}

func violate(op, format string, args ...any) {
	panic(InvariantViolation{Op: op, Msg: fmt.Sprintf(format, args...)})
}
