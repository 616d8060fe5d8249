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

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// NewDriveService builds a Drive client that sends no credentials of its own.
// DriveBackend authorizes each call with the request's token source.
func NewDriveService(ctx context.Context, endpoint string, client *http.Client) (*drive.Service, error) {
	opts := []option.ClientOption{option.WithoutAuthentication()}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}
	return svc, nil
}

// DriveBackend retrieves byte ranges of Google Drive files addressed as
// gdrive://<fileId>.
type DriveBackend struct {
	svc  *drive.Service
	opts Options
}

func NewDriveBackend(svc *drive.Service, opts Options) *DriveBackend {
	return &DriveBackend{svc: svc, opts: opts}
}

func (b *DriveBackend) Name() string {
	return "drive"
}

func (b *DriveBackend) authorize(h http.Header, cred oauth2.TokenSource) error {
	if b.opts.UserAgent != "" {
		h.Set("User-Agent", b.opts.UserAgent)
	}
	if cred == nil {
		return nil
	}
	tok, err := cred.Token()
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	h.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	return nil
}

func (b *DriveBackend) Fetch(ctx context.Context, r *Request) *Response {
	resp := &Response{Transport: b.Name()}

	id, err := parseDriveLocator(r.Locator)
	if err != nil {
		resp.Err = err
		return resp
	}

	call := b.svc.Files.Get(id).SupportsAllDrives(true).Context(ctx)
	if resp.Err = b.authorize(call.Header(), r.Credential); resp.Err != nil {
		return resp
	}
	call.Header().Set("Range", rangeHeader(r.Start, r.End))

	httpResp, err := call.Download()
	if err != nil {
		resp.Status = driveStatus(err)
		if resp.Status == http.StatusRequestedRangeNotSatisfiable {
			// Offset at or beyond the end of the file.
			return resp
		}
		resp.Err = fmt.Errorf("Files.Get %s: %w", r, err)
		return resp
	}
	defer httpResp.Body.Close()
	resp.Status = httpResp.StatusCode

	if httpResp.StatusCode == http.StatusPartialContent {
		cr, err := parseContentRange(httpResp.Header.Get("Content-Range"))
		if err != nil {
			resp.Err = err
			return resp
		}
		if cr.First != r.Start {
			resp.Err = fmt.Errorf("Files.Get %s: server returned range starting at %d", r, cr.First)
			return resp
		}
	} else if r.Start > 0 {
		resp.Err = fmt.Errorf("Files.Get %s: range ignored, status %s", r, httpResp.Status)
		return resp
	}

	resp.Body, err = readRange(ctx, httpResp.Body, r.Len(), b.opts.Egress)
	if err != nil {
		resp.Body = nil
		resp.Err = fmt.Errorf("reading %s: %w", r, err)
	}
	return resp
}

func (b *DriveBackend) Describe(ctx context.Context, locator string, cred oauth2.TokenSource) (Info, error) {
	id, err := parseDriveLocator(locator)
	if err != nil {
		return Info{}, err
	}

	call := b.svc.Files.Get(id).SupportsAllDrives(true).Fields("name", "size").Context(ctx)
	if err := b.authorize(call.Header(), cred); err != nil {
		return Info{}, err
	}
	f, err := call.Do()
	if err != nil {
		return Info{}, fmt.Errorf("Files.Get %s: %w", locator, err)
	}
	return Info{Name: f.Name, Length: f.Size}, nil
}

func driveStatus(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}
