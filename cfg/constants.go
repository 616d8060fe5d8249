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

const (
	// DefaultCoverageTracker is the coverage tracker used by the byte-range cache
	// unless configured otherwise.
	DefaultCoverageTracker = "bitmap"

	// DriveReadonlyScope grants read access to file content in Google Drive.
	DriveReadonlyScope = "https://www.googleapis.com/auth/drive.readonly"
	// StorageReadonlyScope grants read access to Cloud Storage objects.
	StorageReadonlyScope = "https://www.googleapis.com/auth/devstorage.read_only"
)
