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
	"fmt"
	"io"
	"mime"
	"net/http"

	"golang.org/x/oauth2"
)

// HTTPBackend retrieves byte ranges from http:// and https:// locators using
// the Range header.
type HTTPBackend struct {
	client *http.Client
	opts   Options
}

// NewHTTPBackend returns a backend using client, or http.DefaultClient when
// client is nil.
func NewHTTPBackend(client *http.Client, opts Options) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{client: client, opts: opts}
}

func (b *HTTPBackend) Name() string {
	return "http"
}

func (b *HTTPBackend) newRequest(ctx context.Context, method, locator string, cred oauth2.TokenSource) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("NewRequest: %w", err)
	}
	if b.opts.UserAgent != "" {
		req.Header.Set("User-Agent", b.opts.UserAgent)
	}
	if cred != nil {
		tok, err := cred.Token()
		if err != nil {
			return nil, fmt.Errorf("token: %w", err)
		}
		tok.SetAuthHeader(req)
	}
	return req, nil
}

func (b *HTTPBackend) Fetch(ctx context.Context, r *Request) *Response {
	resp := &Response{Transport: b.Name()}

	req, err := b.newRequest(ctx, http.MethodGet, r.Locator, r.Credential)
	if err != nil {
		resp.Err = err
		return resp
	}
	req.Header.Set("Range", rangeHeader(r.Start, r.End))

	httpResp, err := b.client.Do(req)
	if err != nil {
		resp.Err = fmt.Errorf("GET %s: %w", r, err)
		return resp
	}
	defer httpResp.Body.Close()
	resp.Status = httpResp.StatusCode

	switch httpResp.StatusCode {
	case http.StatusPartialContent:
		cr, err := parseContentRange(httpResp.Header.Get("Content-Range"))
		if err != nil {
			resp.Err = err
			return resp
		}
		if cr.First != r.Start {
			resp.Err = fmt.Errorf("GET %s: server returned range starting at %d", r, cr.First)
			return resp
		}
	case http.StatusOK:
		// The server ignored the Range header and is sending the whole resource.
		if _, err := io.CopyN(io.Discard, httpResp.Body, r.Start); err != nil {
			if err == io.EOF {
				// Resource is shorter than the requested offset.
				return resp
			}
			resp.Err = fmt.Errorf("GET %s: skipping to offset: %w", r, err)
			return resp
		}
	default:
		resp.Err = fmt.Errorf("GET %s: unexpected status %s", r, httpResp.Status)
		return resp
	}

	resp.Body, resp.Err = readRange(ctx, httpResp.Body, r.Len(), b.opts.Egress)
	if resp.Err != nil {
		resp.Body = nil
		resp.Err = fmt.Errorf("GET %s: reading body: %w", r, resp.Err)
	}
	return resp
}

// Describe asks for the length with HEAD and falls back to a one-byte ranged
// GET for servers that don't report Content-Length on HEAD.
func (b *HTTPBackend) Describe(ctx context.Context, locator string, cred oauth2.TokenSource) (Info, error) {
	info := Info{Name: baseName(locator), Length: -1}

	req, err := b.newRequest(ctx, http.MethodHead, locator, cred)
	if err != nil {
		return Info{}, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("HEAD %s: %w", locator, err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK && resp.ContentLength >= 0 {
		info.Length = resp.ContentLength
		info.Name = dispositionName(resp.Header, info.Name)
		return info, nil
	}

	req, err = b.newRequest(ctx, http.MethodGet, locator, cred)
	if err != nil {
		return Info{}, err
	}
	req.Header.Set("Range", rangeHeader(0, 0))
	resp, err = b.client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("GET %s: %w", locator, err)
	}
	defer resp.Body.Close()
	info.Name = dispositionName(resp.Header, info.Name)

	switch resp.StatusCode {
	case http.StatusPartialContent, http.StatusRequestedRangeNotSatisfiable:
		cr, err := parseContentRange(resp.Header.Get("Content-Range"))
		if err != nil {
			return Info{}, fmt.Errorf("GET %s: %w", locator, err)
		}
		if cr.Total < 0 {
			return Info{}, fmt.Errorf("GET %s: server did not report the resource length", locator)
		}
		info.Length = cr.Total
	case http.StatusOK:
		if resp.ContentLength < 0 {
			return Info{}, fmt.Errorf("GET %s: server did not report the resource length", locator)
		}
		info.Length = resp.ContentLength
	default:
		return Info{}, fmt.Errorf("GET %s: unexpected status %s", locator, resp.Status)
	}
	return info, nil
}

func dispositionName(h http.Header, fallback string) string {
	cd := h.Get("Content-Disposition")
	if cd == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return params["filename"]
}
