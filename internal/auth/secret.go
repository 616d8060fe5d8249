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
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
)

// SecretAccessor is the subset of the Secret Manager client used to read a
// bearer token.
type SecretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// newSecretAccessor is swapped out in tests.
var newSecretAccessor = func(ctx context.Context) (SecretAccessor, func() error, error) {
	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	return c, c.Close, nil
}

// tokenFromSecret reads the bearer token stored in the given secret version,
// e.g. projects/p/secrets/s/versions/latest.
func tokenFromSecret(ctx context.Context, client SecretAccessor, name string) (string, error) {
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("AccessSecretVersion(%q): %w", name, err)
	}

	token := strings.TrimSpace(string(resp.GetPayload().GetData()))
	if token == "" {
		return "", fmt.Errorf("secret %q holds an empty token", name)
	}
	return token, nil
}
