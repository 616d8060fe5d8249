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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type trackerTest struct {
	suite.Suite
	kind    TrackerKind
	tracker CoverageTracker
}

func TestBitmapTrackerSuite(t *testing.T) {
	suite.Run(t, &trackerTest{kind: BitmapTrackerKind})
}

func TestIntervalTrackerSuite(t *testing.T) {
	suite.Run(t, &trackerTest{kind: IntervalTrackerKind})
}

func (t *trackerTest) SetupTest() {
	t.tracker = NewCoverageTracker(t.kind)
}

func (t *trackerTest) TestEmptyTracker() {
	assert.False(t.T(), t.tracker.Contains(0, 0))
	assert.True(t.T(), t.tracker.Contains(5, 4), "empty range is vacuously covered")
	assert.Equal(t.T(), int64(0), t.tracker.Covered())
	assert.Empty(t.T(), t.tracker.Ranges())
}

func (t *trackerTest) TestAddAndContains() {
	t.tracker.Add(10, 19)

	assert.True(t.T(), t.tracker.Contains(10, 19))
	assert.True(t.T(), t.tracker.Contains(12, 15))
	assert.False(t.T(), t.tracker.Contains(9, 10))
	assert.False(t.T(), t.tracker.Contains(19, 20))
	assert.Equal(t.T(), int64(10), t.tracker.Covered())
}

func (t *trackerTest) TestAdjacentRangesCoalesce() {
	t.tracker.Add(0, 9)
	t.tracker.Add(10, 19)

	assert.True(t.T(), t.tracker.Contains(0, 19))
	assert.Equal(t.T(), []ByteRange{{Start: 0, End: 20}}, t.tracker.Ranges())
}

func (t *trackerTest) TestGapIsNotCovered() {
	t.tracker.Add(0, 9)
	t.tracker.Add(11, 19)

	assert.False(t.T(), t.tracker.Contains(0, 19))
	assert.False(t.T(), t.tracker.Contains(10, 10))
	assert.Equal(t.T(), []ByteRange{{Start: 0, End: 10}, {Start: 11, End: 20}}, t.tracker.Ranges())
	assert.Equal(t.T(), int64(19), t.tracker.Covered())
}

func (t *trackerTest) TestOverlappingAddsDoNotDoubleCount() {
	t.tracker.Add(50, 99)
	t.tracker.Add(0, 60)
	t.tracker.Add(90, 120)
	t.tracker.Add(200, 210)
	t.tracker.Add(0, 300)

	assert.Equal(t.T(), []ByteRange{{Start: 0, End: 301}}, t.tracker.Ranges())
	assert.Equal(t.T(), int64(301), t.tracker.Covered())
}

func (t *trackerTest) TestOutOfOrderAdds() {
	t.tracker.Add(300, 399)
	t.tracker.Add(100, 199)
	t.tracker.Add(200, 299)

	assert.True(t.T(), t.tracker.Contains(100, 399))
	assert.False(t.T(), t.tracker.Contains(99, 399))
}

func (t *trackerTest) TestCoverageIsMonotonic() {
	rng := rand.New(rand.NewSource(42))
	const length = 4096
	var covered [][2]int64

	for i := 0; i < 200; i++ {
		start := rng.Int63n(length)
		end := min(start+rng.Int63n(64), length-1)
		t.tracker.Add(start, end)
		covered = append(covered, [2]int64{start, end})

		for _, r := range covered {
			require.True(t.T(), t.tracker.Contains(r[0], r[1]), "range %v lost coverage", r)
		}
	}
}

func (t *trackerTest) TestTrackersAgree() {
	if t.kind == BitmapTrackerKind {
		t.T().Skip("bitmap is the reference implementation")
	}
	rng := rand.New(rand.NewSource(7))
	other := NewBitmapTracker()

	for i := 0; i < 100; i++ {
		start := rng.Int63n(2000)
		end := start + rng.Int63n(100)
		t.tracker.Add(start, end)
		other.Add(start, end)
	}
	for i := 0; i < 500; i++ {
		start := rng.Int63n(2100)
		end := start + rng.Int63n(50)
		assert.Equal(t.T(), other.Contains(start, end), t.tracker.Contains(start, end), "[%d, %d]", start, end)
	}
	assert.Equal(t.T(), other.Covered(), t.tracker.Covered())
	assert.Equal(t.T(), other.Ranges(), t.tracker.Ranges())
}
