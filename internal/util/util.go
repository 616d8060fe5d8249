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

package util

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// WorkDirEnv, when set, is the directory relative paths in config are
// resolved against instead of the current working directory.
const WorkDirEnv = "DRIVESTREAM_WORKDIR"

const MiB = 1 << 20

// 1. Returns the same filepath in case of absolute path or empty filename.
// 2. For relative path starting with ~, it resolves with respect to home dir.
// 3. Any other relative path is resolved against WorkDirEnv if set, else the
// current working directory.
func GetResolvedPath(filePath string) (resolvedPath string, err error) {
	if filePath == "" || path.IsAbs(filePath) {
		resolvedPath = filePath
		return
	}

	if strings.HasPrefix(filePath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("fetch home dir: %w", err)
		}
		return filepath.Join(homeDir, filePath[2:]), nil
	}

	workDir := strings.TrimSpace(os.Getenv(WorkDirEnv))
	if workDir == "" {
		return filepath.Abs(filePath)
	}
	return filepath.Join(workDir, filePath), nil
}
