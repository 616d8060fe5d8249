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

package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuxRoutesByScheme(t *testing.T) {
	gcs := &fakeBackend{name: "gcs", content: testContent(10)}
	s3 := &fakeBackend{name: "s3", content: testContent(20)}
	m := NewMux()
	m.Handle(SchemeGCS, gcs)
	m.Handle("S3", s3)

	resp := m.Fetch(context.Background(), &Request{Locator: "s3://b/k", Start: 0, End: 4})
	require.NoError(t, resp.Err)
	assert.Equal(t, "s3", resp.Transport)

	info, err := m.Describe(context.Background(), "gs://b/o", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Length)

	assert.Equal(t, []string{"gs", "s3"}, m.Schemes())
}

func TestMuxUnknownScheme(t *testing.T) {
	m := NewMux()
	m.Handle(SchemeHTTPS, &fakeBackend{name: "http"})

	resp := m.Fetch(context.Background(), &Request{Locator: "ftp://host/file", Start: 0, End: 1})
	assert.ErrorContains(t, resp.Err, `no transport for scheme "ftp" (supported: https)`)
	assert.Equal(t, "mux", resp.Transport)

	_, err := m.Describe(context.Background(), "nope", nil)
	assert.ErrorContains(t, err, "no scheme")
}
