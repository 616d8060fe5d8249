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

package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/drivestream/drivestream/common"
	"github.com/drivestream/drivestream/internal/transport/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"
)

const testLocator = "https://example.com/track.mp3"

func content(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

type FetcherTest struct {
	suite.Suite
	content   []byte
	transport *fake.Transport
	fetcher   *Fetcher
}

func TestFetcherSuite(t *testing.T) {
	suite.Run(t, new(FetcherTest))
}

func (t *FetcherTest) SetupTest() {
	t.content = content(1000)
	t.transport = fake.NewTransport(t.content)
	t.fetcher = NewFetcher(t.transport, testLocator, nil, nil, 0)
}

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *FetcherTest) TestExactlyOneRequestPerFetch() {
	cred := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"})
	t.fetcher = NewFetcher(t.transport, testLocator, cred, nil, 0)

	data, err := t.fetcher.FetchRange(context.Background(), 100, 199)

	require.NoError(t.T(), err)
	assert.Equal(t.T(), t.content[100:200], data)
	reqs := t.transport.Requests()
	require.Len(t.T(), reqs, 1)
	assert.Equal(t.T(), testLocator, reqs[0].Locator)
	assert.Equal(t.T(), int64(100), reqs[0].Start)
	assert.Equal(t.T(), int64(199), reqs[0].End)
	assert.Equal(t.T(), cred, reqs[0].Credential)
}

func (t *FetcherTest) TestShortReadAtEnd() {
	data, err := t.fetcher.FetchRange(context.Background(), 990, 1099)

	require.NoError(t.T(), err)
	assert.Equal(t.T(), t.content[990:], data)
}

func (t *FetcherTest) TestEmptyPastEnd() {
	data, err := t.fetcher.FetchRange(context.Background(), 1000, 1009)

	require.NoError(t.T(), err)
	assert.Empty(t.T(), data)
}

func (t *FetcherTest) TestTruncatesOversizedPayload() {
	t.transport.Overfetch(7)

	data, err := t.fetcher.FetchRange(context.Background(), 0, 9)

	require.NoError(t.T(), err)
	assert.Equal(t.T(), t.content[:10], data)
}

func (t *FetcherTest) TestFailureIsFetchFailedError() {
	t.transport.FailRange(200, 299, http.StatusServiceUnavailable)

	data, err := t.fetcher.FetchRange(context.Background(), 200, 299)

	assert.Nil(t.T(), data)
	var ffe *FetchFailedError
	require.ErrorAs(t.T(), err, &ffe)
	assert.Equal(t.T(), int64(200), ffe.Start)
	assert.Equal(t.T(), int64(299), ffe.End)
	assert.Equal(t.T(), http.StatusServiceUnavailable, ffe.Status)
	assert.ErrorContains(t.T(), err, "status 503")
	assert.Equal(t.T(), 1, t.transport.RequestCount())
}

func (t *FetcherTest) TestInvalidRangeNeverDispatches() {
	_, err := t.fetcher.FetchRange(context.Background(), 10, 9)

	var ffe *FetchFailedError
	assert.ErrorAs(t.T(), err, &ffe)
	assert.Equal(t.T(), 0, t.transport.RequestCount())
}

func (t *FetcherTest) TestTimeoutWhenTransportHangs() {
	t.transport.Hang()
	t.fetcher = NewFetcher(t.transport, testLocator, nil, nil, 10*time.Millisecond)

	_, err := t.fetcher.FetchRange(context.Background(), 0, 9)

	assert.ErrorIs(t.T(), err, context.DeadlineExceeded)
}

func (t *FetcherTest) TestCancelledContext() {
	t.transport.Hang()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := t.fetcher.FetchRange(ctx, 0, 9)

	assert.ErrorIs(t.T(), err, context.Canceled)
}

func (t *FetcherTest) TestRecordsMetrics() {
	m := new(common.MockMetricHandle)
	m.On("FetchRequestLatency", mock.Anything, mock.AnythingOfType("time.Duration"), "fake").Return()
	m.On("FetchRequestCount", mock.Anything, int64(1), "fake", common.FetchStatusOK).Return()
	m.On("FetchDownloadBytesCount", mock.Anything, int64(50), "fake").Return()
	t.fetcher = NewFetcher(t.transport, testLocator, nil, m, 0)

	_, err := t.fetcher.FetchRange(context.Background(), 0, 49)

	require.NoError(t.T(), err)
	m.AssertExpectations(t.T())
}

func (t *FetcherTest) TestRecordsFailureMetrics() {
	t.transport.FailRange(0, 0, http.StatusForbidden)
	m := new(common.MockMetricHandle)
	m.On("FetchRequestLatency", mock.Anything, mock.AnythingOfType("time.Duration"), "fake").Return()
	m.On("FetchRequestCount", mock.Anything, int64(1), "fake", common.FetchStatusFailed).Return()
	t.fetcher = NewFetcher(t.transport, testLocator, nil, m, 0)

	_, err := t.fetcher.FetchRange(context.Background(), 0, 49)

	require.Error(t.T(), err)
	m.AssertExpectations(t.T())
	m.AssertNotCalled(t.T(), "FetchDownloadBytesCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetchFailedErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := error(&FetchFailedError{Start: 1, End: 2, Err: inner})

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "fetch [1, 2] failed: connection reset", err.Error())
}
