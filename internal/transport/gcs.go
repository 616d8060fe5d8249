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
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// GCSBackend retrieves byte ranges from gs://bucket/object locators.
//
// The storage client carries its own credentials, so Request.Credential is
// ignored here; callers build the client with the same token source.
type GCSBackend struct {
	client *storage.Client
	opts   Options
}

func NewGCSBackend(client *storage.Client, opts Options) *GCSBackend {
	return &GCSBackend{client: client, opts: opts}
}

func (b *GCSBackend) Name() string {
	return "gcs"
}

func (b *GCSBackend) Fetch(ctx context.Context, r *Request) *Response {
	resp := &Response{Transport: b.Name()}

	bucket, object, err := parseBucketLocator(r.Locator, SchemeGCS)
	if err != nil {
		resp.Err = err
		return resp
	}

	rd, err := b.client.Bucket(bucket).Object(object).NewRangeReader(ctx, r.Start, r.Len())
	if err != nil {
		resp.Status = gcsStatus(err)
		resp.Err = fmt.Errorf("NewRangeReader %s: %w", r, err)
		return resp
	}
	defer rd.Close()
	resp.Status = http.StatusPartialContent

	resp.Body, err = readRange(ctx, rd, r.Len(), b.opts.Egress)
	if err != nil {
		resp.Body = nil
		resp.Err = fmt.Errorf("reading %s: %w", r, err)
	}
	return resp
}

func (b *GCSBackend) Describe(ctx context.Context, locator string, _ oauth2.TokenSource) (Info, error) {
	bucket, object, err := parseBucketLocator(locator, SchemeGCS)
	if err != nil {
		return Info{}, err
	}

	attrs, err := b.client.Bucket(bucket).Object(object).Attrs(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("Attrs %s: %w", locator, err)
	}
	return Info{Name: baseName(locator), Length: attrs.Size}, nil
}

func gcsStatus(err error) int {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return http.StatusNotFound
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}
