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

package auth

import (
	"fmt"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
)

type detectFunc func(*credentials.DetectOptions) (*auth.Credentials, error)

var detectCredentials detectFunc = credentials.DetectDefault

// GetCredentials detects Google credentials for the given scopes.
//
// A service account key file takes priority when keyFile is set. Otherwise
// Application Default Credentials are used, which includes the metadata
// server on Google Cloud.
func GetCredentials(keyFile string, scopes []string) (*auth.Credentials, error) {
	return getCredentials(keyFile, scopes, detectCredentials)
}

func getCredentials(keyFile string, scopes []string, detect detectFunc) (*auth.Credentials, error) {
	opts := &credentials.DetectOptions{
		CredentialsFile: keyFile,
		Scopes:          scopes,
	}

	creds, err := detect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect credentials: %w", err)
	}

	return creds, nil
}
