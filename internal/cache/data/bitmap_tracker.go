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
	"github.com/RoaringBitmap/roaring/roaring64"
)

// BitmapTracker keeps one bit per byte offset in a compressed roaring bitmap.
// Membership tests are rank lookups, so a contiguous query costs two rank
// computations regardless of its length.
type BitmapTracker struct {
	bitmap *roaring64.Bitmap
}

func NewBitmapTracker() *BitmapTracker {
	return &BitmapTracker{bitmap: roaring64.New()}
}

func (bt *BitmapTracker) Add(start, end int64) {
	if start > end {
		return
	}
	bt.bitmap.AddRange(uint64(start), uint64(end)+1)
}

func (bt *BitmapTracker) Contains(start, end int64) bool {
	if start > end {
		return true
	}

	// Rank(x) counts the set bits in [0, x].
	present := bt.bitmap.Rank(uint64(end))
	if start > 0 {
		present -= bt.bitmap.Rank(uint64(start - 1))
	}
	return present == uint64(end-start+1)
}

func (bt *BitmapTracker) Covered() int64 {
	return int64(bt.bitmap.GetCardinality())
}

func (bt *BitmapTracker) Ranges() []ByteRange {
	var ranges []ByteRange
	it := bt.bitmap.Iterator()
	for it.HasNext() {
		v := int64(it.Next())
		if n := len(ranges); n > 0 && ranges[n-1].End == v {
			ranges[n-1].End++
			continue
		}
		ranges = append(ranges, ByteRange{Start: v, End: v + 1})
	}
	return ranges
}
