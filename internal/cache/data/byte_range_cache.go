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

// PageSize is the granularity at which the backing buffer is allocated.
const PageSize = 256 * 1024

// ByteRangeCache is a sparse store spanning a resource of fixed length. A
// coverage tracker records which offsets hold fetched bytes; the bytes live in
// fixed-size pages that are allocated the first time they are filled, so a
// stream that only touches the head and tail of a large resource stays small.
//
// INVARIANT: offset i is covered iff the backing byte at i holds fetched data.
// INVARIANT: coverage never shrinks.
//
// Not safe for concurrent access.
type ByteRangeCache struct {
	length   int64
	coverage CoverageTracker
	pages    map[int64][]byte
}

// NewByteRangeCache returns an empty cache for a resource of the given length.
func NewByteRangeCache(length int64, kind TrackerKind) *ByteRangeCache {
	if length < 0 {
		violate("NewByteRangeCache", "negative length %d", length)
	}
	return &ByteRangeCache{
		length:   length,
		coverage: NewCoverageTracker(kind),
		pages:    make(map[int64][]byte),
	}
}

func (c *ByteRangeCache) Length() int64 {
	return c.length
}

// CheckCoverage reports whether every offset in [start, end] has been filled.
// An empty range (start > end) is vacuously covered.
func (c *ByteRangeCache) CheckCoverage(start, end int64) bool {
	if start > end {
		return true
	}
	if start < 0 || end >= c.length {
		return false
	}
	return c.coverage.Contains(start, end)
}

// Fill copies payload into the cache at start and marks those offsets covered.
//
// REQUIRES: 0 <= start && start+len(payload) <= Length()
func (c *ByteRangeCache) Fill(start int64, payload []byte) {
	if len(payload) == 0 {
		return
	}
	end := start + int64(len(payload)) - 1
	if start < 0 || end >= c.length {
		violate("Fill", "range [%d, %d] outside resource of length %d", start, end, c.length)
	}

	for off := start; off <= end; {
		page, pageOff := c.page(off, true)
		n := copy(page[pageOff:], payload[off-start:])
		off += int64(n)
	}
	c.coverage.Add(start, end)
}

// Extract returns a copy of the cached bytes in [start, end].
//
// REQUIRES: CheckCoverage(start, end)
func (c *ByteRangeCache) Extract(start, end int64) []byte {
	if start > end {
		return []byte{}
	}
	if !c.CheckCoverage(start, end) {
		violate("Extract", "range [%d, %d] is not fully cached", start, end)
	}

	out := make([]byte, end-start+1)
	for off := start; off <= end; {
		page, pageOff := c.page(off, false)
		n := copy(out[off-start:], page[pageOff:])
		off += int64(n)
	}
	return out
}

// CachedBytes returns the number of covered offsets.
func (c *ByteRangeCache) CachedBytes() int64 {
	return c.coverage.Covered()
}

// Ranges returns the covered ranges, mostly for diagnostics and tests.
func (c *ByteRangeCache) Ranges() []ByteRange {
	return c.coverage.Ranges()
}

// page returns the page holding off, trimmed to the resource length, along
// with off's position inside it.
func (c *ByteRangeCache) page(off int64, create bool) ([]byte, int64) {
	id := off / PageSize
	p, ok := c.pages[id]
	if !ok {
		if !create {
			violate("page", "page %d for offset %d was never filled", id, off)
		}
		size := min(int64(PageSize), c.length-id*PageSize)
		p = make([]byte, size)
		c.pages[id] = p
	}
	return p, off - id*PageSize
}
