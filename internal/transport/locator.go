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
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeGCS   = "gs"
	SchemeS3    = "s3"
	SchemeDrive = "gdrive"
)

// Scheme returns the lower-cased scheme of a locator.
func Scheme(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("invalid locator %q: %w", locator, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("locator %q has no scheme", locator)
	}
	return strings.ToLower(u.Scheme), nil
}

// parseBucketLocator splits scheme://bucket/key locators.
func parseBucketLocator(locator, scheme string) (bucket, key string, err error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", "", fmt.Errorf("invalid locator %q: %w", locator, err)
	}
	if !strings.EqualFold(u.Scheme, scheme) {
		return "", "", fmt.Errorf("locator %q is not a %s:// locator", locator, scheme)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("locator %q must look like %s://bucket/key", locator, scheme)
	}
	return bucket, key, nil
}

// parseDriveLocator returns the file ID of a gdrive://<fileId> locator.
func parseDriveLocator(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("invalid locator %q: %w", locator, err)
	}
	if !strings.EqualFold(u.Scheme, SchemeDrive) {
		return "", fmt.Errorf("locator %q is not a %s:// locator", locator, SchemeDrive)
	}
	id := u.Host
	if id == "" || strings.Trim(u.Path, "/") != "" {
		return "", fmt.Errorf("locator %q must look like %s://<fileId>", locator, SchemeDrive)
	}
	return id, nil
}

// baseName is the last path element of a locator, used when the remote does
// not report a name.
func baseName(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || u.Path == "" || u.Path == "/" {
		return locator
	}
	return path.Base(u.Path)
}

func rangeHeader(start, end int64) string {
	return fmt.Sprintf("bytes=%d-%d", start, end)
}

// contentRange is a parsed Content-Range header. First and Last are -1 for
// unsatisfied ranges ("bytes */N"); Total is -1 when unknown ("bytes a-b/*").
type contentRange struct {
	First, Last, Total int64
}

func parseContentRange(s string) (contentRange, error) {
	cr := contentRange{First: -1, Last: -1, Total: -1}
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "bytes ")
	if !ok {
		return cr, fmt.Errorf("malformed Content-Range %q", s)
	}
	span, total, ok := strings.Cut(rest, "/")
	if !ok {
		return cr, fmt.Errorf("malformed Content-Range %q", s)
	}

	if total != "*" {
		n, err := strconv.ParseInt(total, 10, 64)
		if err != nil || n < 0 {
			return cr, fmt.Errorf("malformed Content-Range total %q", s)
		}
		cr.Total = n
	}

	if span == "*" {
		if cr.Total < 0 {
			return cr, fmt.Errorf("malformed Content-Range %q", s)
		}
		return cr, nil
	}

	first, last, ok := strings.Cut(span, "-")
	if !ok {
		return cr, fmt.Errorf("malformed Content-Range %q", s)
	}
	var err error
	if cr.First, err = strconv.ParseInt(first, 10, 64); err != nil {
		return cr, fmt.Errorf("malformed Content-Range %q", s)
	}
	if cr.Last, err = strconv.ParseInt(last, 10, 64); err != nil {
		return cr, fmt.Errorf("malformed Content-Range %q", s)
	}
	if cr.First < 0 || cr.Last < cr.First || (cr.Total >= 0 && cr.Last >= cr.Total) {
		return cr, fmt.Errorf("malformed Content-Range %q", s)
	}
	return cr, nil
}
