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

package cfg

import (
	"runtime"
)

// DefaultWorkers is the number of transport workers used when not configured.
func DefaultWorkers() int64 {
	return int64(max(4, runtime.NumCPU()))
}

// DefaultScopes returns the OAuth2 scopes requested when none are configured.
func DefaultScopes() []string {
	return []string{DriveReadonlyScope, StorageReadonlyScope}
}

// IsRateLimited reports whether ranged requests go through a token bucket.
func IsRateLimited(c *TransportConfig) bool {
	return c.RequestsPerSecond > 0
}
