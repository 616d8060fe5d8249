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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"
)

const testDriveFileID = "1xYzDriveFile"

type DriveBackendTest struct {
	suite.Suite
	content []byte
	server  *httptest.Server
	backend *DriveBackend
	lastReq *http.Request
}

func TestDriveBackendSuite(t *testing.T) {
	suite.Run(t, new(DriveBackendTest))
}

func (t *DriveBackendTest) SetupTest() {
	t.content = testContent(1000)
	t.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.lastReq = r
		if !strings.HasSuffix(r.URL.Path, "/files/"+testDriveFileID) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found"}}`))
			return
		}
		if r.URL.Query().Get("alt") == "media" {
			http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(t.content))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "Live Set.flac", "size": "1000"})
	}))

	svc, err := NewDriveService(context.Background(), t.server.URL+"/drive/v3/", t.server.Client())
	require.NoError(t.T(), err)
	t.backend = NewDriveBackend(svc, Options{UserAgent: "drivestream-test"})
}

func (t *DriveBackendTest) TearDownTest() {
	t.server.Close()
}

func (t *DriveBackendTest) TestFetchRange() {
	cred := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "drive-token"})

	resp := t.backend.Fetch(context.Background(), &Request{
		Locator:    "gdrive://" + testDriveFileID,
		Start:      10,
		End:        59,
		Credential: cred,
	})

	require.NoError(t.T(), resp.Err)
	assert.Equal(t.T(), "drive", resp.Transport)
	assert.Equal(t.T(), t.content[10:60], resp.Body)
	assert.Equal(t.T(), "bytes=10-59", t.lastReq.Header.Get("Range"))
	assert.Equal(t.T(), "Bearer drive-token", t.lastReq.Header.Get("Authorization"))
	assert.Equal(t.T(), "/drive/v3/files/"+testDriveFileID, t.lastReq.URL.Path)
}

func (t *DriveBackendTest) TestFetchPastEnd() {
	resp := t.backend.Fetch(context.Background(), &Request{Locator: "gdrive://" + testDriveFileID, Start: 1000, End: 1009})

	assert.NoError(t.T(), resp.Err)
	assert.Empty(t.T(), resp.Body)
	assert.Equal(t.T(), http.StatusRequestedRangeNotSatisfiable, resp.Status)
}

func (t *DriveBackendTest) TestFetchMissingFile() {
	resp := t.backend.Fetch(context.Background(), &Request{Locator: "gdrive://missing", Start: 0, End: 9})

	assert.Error(t.T(), resp.Err)
	assert.Equal(t.T(), http.StatusNotFound, resp.Status)
}

func (t *DriveBackendTest) TestDescribe() {
	info, err := t.backend.Describe(context.Background(), "gdrive://"+testDriveFileID, nil)

	require.NoError(t.T(), err)
	assert.Equal(t.T(), Info{Name: "Live Set.flac", Length: 1000}, info)
	assert.Contains(t.T(), t.lastReq.URL.Query().Get("fields"), "size")
}

func (t *DriveBackendTest) TestDescribeMissingFile() {
	_, err := t.backend.Describe(context.Background(), "gdrive://missing", nil)

	assert.ErrorContains(t.T(), err, "Files.Get")
}
