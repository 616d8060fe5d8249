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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheme(t *testing.T) {
	s, err := Scheme("GS://bucket/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, SchemeGCS, s)

	_, err = Scheme("relative/path")
	assert.ErrorContains(t, err, "no scheme")
}

func TestParseBucketLocator(t *testing.T) {
	bucket, key, err := parseBucketLocator("s3://media/albums/01 intro.flac", SchemeS3)
	require.NoError(t, err)
	assert.Equal(t, "media", bucket)
	assert.Equal(t, "albums/01 intro.flac", key)

	_, _, err = parseBucketLocator("s3://media", SchemeS3)
	assert.Error(t, err)

	_, _, err = parseBucketLocator("gs://media/a", SchemeS3)
	assert.Error(t, err)
}

func TestParseDriveLocator(t *testing.T) {
	id, err := parseDriveLocator("gdrive://1AbC-dEf_g")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-dEf_g", id)

	_, err = parseDriveLocator("gdrive://id/extra")
	assert.Error(t, err)

	_, err = parseDriveLocator("gdrive://")
	assert.Error(t, err)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a b.mp3", baseName("https://host/dir/a%20b.mp3"))
	assert.Equal(t, "https://host", baseName("https://host"))
}

func TestParseContentRange(t *testing.T) {
	testCases := []struct {
		in      string
		want    contentRange
		wantErr bool
	}{
		{in: "bytes 0-99/1000", want: contentRange{0, 99, 1000}},
		{in: "bytes 10-19/*", want: contentRange{10, 19, -1}},
		{in: "bytes */500", want: contentRange{-1, -1, 500}},
		{in: "bytes */*", wantErr: true},
		{in: "bytes 5-4/10", wantErr: true},
		{in: "bytes 0-10/10", wantErr: true},
		{in: "items 0-1/2", wantErr: true},
		{in: "bytes 0-x/2", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseContentRange(tc.in)

			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
