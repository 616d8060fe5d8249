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

package common

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockMetricHandle struct {
	mock.Mock
}

func (m *MockMetricHandle) StreamReadCount(ctx context.Context, inc int64, cacheHit string) {
	m.Called(ctx, inc, cacheHit)
}

func (m *MockMetricHandle) StreamReadBytesCount(ctx context.Context, inc int64, cacheHit string) {
	m.Called(ctx, inc, cacheHit)
}

func (m *MockMetricHandle) FetchRequestCount(ctx context.Context, inc int64, transport string, status string) {
	m.Called(ctx, inc, transport, status)
}

func (m *MockMetricHandle) FetchDownloadBytesCount(ctx context.Context, inc int64, transport string) {
	m.Called(ctx, inc, transport)
}

func (m *MockMetricHandle) FetchRequestLatency(ctx context.Context, latency time.Duration, transport string) {
	m.Called(ctx, latency, transport)
}
