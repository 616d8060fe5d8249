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

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/drivestream/drivestream/cfg"
	"golang.org/x/oauth2"
)

// S3API is the subset of the S3 client used by S3Backend.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, c cfg.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("LoadDefaultConfig: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.UsePathStyle
	}), nil
}

// S3Backend retrieves byte ranges from s3://bucket/key locators. AWS
// credentials come from the client, so Request.Credential is ignored.
type S3Backend struct {
	client S3API
	opts   Options
}

func NewS3Backend(client S3API, opts Options) *S3Backend {
	return &S3Backend{client: client, opts: opts}
}

func (b *S3Backend) Name() string {
	return "s3"
}

func (b *S3Backend) Fetch(ctx context.Context, r *Request) *Response {
	resp := &Response{Transport: b.Name()}

	bucket, key, err := parseBucketLocator(r.Locator, SchemeS3)
	if err != nil {
		resp.Err = err
		return resp
	}

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(rangeHeader(r.Start, r.End)),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
			// Offset at or beyond the end of the object.
			resp.Status = http.StatusRequestedRangeNotSatisfiable
			return resp
		}
		resp.Status = s3Status(err)
		resp.Err = fmt.Errorf("GetObject %s: %w", r, err)
		return resp
	}
	defer out.Body.Close()
	resp.Status = http.StatusPartialContent

	resp.Body, err = readRange(ctx, out.Body, r.Len(), b.opts.Egress)
	if err != nil {
		resp.Body = nil
		resp.Err = fmt.Errorf("reading %s: %w", r, err)
	}
	return resp
}

func (b *S3Backend) Describe(ctx context.Context, locator string, _ oauth2.TokenSource) (Info, error) {
	bucket, key, err := parseBucketLocator(locator, SchemeS3)
	if err != nil {
		return Info{}, err
	}

	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Info{}, fmt.Errorf("HeadObject %s: %w", locator, err)
	}
	if out.ContentLength == nil {
		return Info{}, fmt.Errorf("HeadObject %s: no content length", locator)
	}
	return Info{Name: baseName(locator), Length: aws.ToInt64(out.ContentLength)}, nil
}

func s3Status(err error) int {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return http.StatusNotFound
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
