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


package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/drivestream/drivestream/cfg"
	"github.com/drivestream/drivestream/common"
	"github.com/drivestream/drivestream/internal/auth"
	"github.com/drivestream/drivestream/internal/logger"
	"github.com/drivestream/drivestream/internal/monitor"
	"github.com/drivestream/drivestream/internal/ratelimit"
	"github.com/drivestream/drivestream/internal/transport"
	"github.com/drivestream/drivestream/internal/workerpool"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// egressWindow is the window over which the egress bandwidth limit holds.
const egressWindow = 8 * time.Hour

// Environment holds what subcommands share once the configuration is
// resolved.
type Environment struct {
	Config     *cfg.Config
	Transport  transport.Transport
	Describer  transport.Describer
	Credential oauth2.TokenSource
	Metrics    common.MetricHandle
	// Shutdown releases the environment. May be nil.
	Shutdown common.ShutdownFn
}

// EnvFactory builds the Environment for a resolved configuration.
type EnvFactory func(ctx context.Context, c *cfg.Config) (*Environment, error)

func userAgent(c *cfg.Config) string {
	if c.Transport.UserAgent != "" {
		return c.Transport.UserAgent
	}
	if c.AppName != "" {
		return fmt.Sprintf("drivestream/%s (%s)", common.GetVersion(), c.AppName)
	}
	return fmt.Sprintf("drivestream/%s", common.GetVersion())
}

func newStorageClient(ctx context.Context, c *cfg.Config, cred oauth2.TokenSource) (*storage.Client, error) {
	opts := []option.ClientOption{option.WithUserAgent(userAgent(c))}
	if cred != nil {
		opts = append(opts, option.WithTokenSource(cred))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if c.Transport.GcsEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Transport.GcsEndpoint))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return client, nil
}

// newMux registers a backend for every supported scheme.
func newMux(ctx context.Context, c *cfg.Config, cred oauth2.TokenSource, opts transport.Options) (*transport.Mux, common.ShutdownFn, error) {
	mux := transport.NewMux()

	httpBackend := transport.NewHTTPBackend(&http.Client{}, opts)
	mux.Handle(transport.SchemeHTTP, httpBackend)
	mux.Handle(transport.SchemeHTTPS, httpBackend)

	gcsClient, err := newStorageClient(ctx, c, cred)
	if err != nil {
		return nil, nil, err
	}
	mux.Handle(transport.SchemeGCS, transport.NewGCSBackend(gcsClient, opts))
	closeGCS := func(context.Context) error { return gcsClient.Close() }

	s3Client, err := transport.NewS3Client(ctx, c.Transport.S3)
	if err != nil {
		// s3:// stays unrouted when the AWS config cannot be loaded.
		logger.Warnf("s3:// locators are disabled: %v", err)
	} else {
		mux.Handle(transport.SchemeS3, transport.NewS3Backend(s3Client, opts))
	}

	driveSvc, err := transport.NewDriveService(ctx, c.Transport.DriveEndpoint, nil)
	if err != nil {
		closeGCS(ctx)
		return nil, nil, err
	}
	mux.Handle(transport.SchemeDrive, transport.NewDriveBackend(driveSvc, opts))

	logger.Debugf("transport schemes: %v", mux.Schemes())
	return mux, closeGCS, nil
}

func egressThrottle(bytesPerSecond float64) (ratelimit.Throttle, error) {
	capacity, err := ratelimit.ChooseLimiterCapacity(bytesPerSecond, egressWindow)
	if err != nil {
		return nil, fmt.Errorf("egress bandwidth limit: %w", err)
	}
	return ratelimit.NewThrottle(bytesPerSecond, int(capacity)), nil
}

// NewEnvironment wires credentials, backends, the worker pool, throttles,
// metrics and tracing from c.
func NewEnvironment(ctx context.Context, c *cfg.Config) (*Environment, error) {
	cred, err := auth.GetTokenSource(ctx, c.Auth)
	if err != nil {
		return nil, fmt.Errorf("GetTokenSource: %w", err)
	}

	opts := transport.Options{UserAgent: userAgent(c)}
	if c.Transport.EgressBandwidthLimitBytesPerSecond > 0 {
		if opts.Egress, err = egressThrottle(c.Transport.EgressBandwidthLimitBytesPerSecond); err != nil {
			return nil, err
		}
	}

	mux, closeMux, err := newMux(ctx, c, cred, opts)
	if err != nil {
		return nil, err
	}

	pool, err := workerpool.NewStaticWorkerPoolForWorkers(c.Transport.Workers, c.Transport.QueueDepth)
	if err != nil {
		closeMux(ctx)
		return nil, fmt.Errorf("worker pool: %w", err)
	}

	var throttle ratelimit.Throttle
	if cfg.IsRateLimited(&c.Transport) {
		throttle = ratelimit.NewThrottle(c.Transport.RequestsPerSecond, int(c.Transport.Burst))
	}
	dispatcher := transport.NewDispatcher(mux, pool, throttle)

	metricsShutdown := monitor.SetupOTelMetricExporters(ctx, c)
	traceShutdown := monitor.SetupTracing(ctx, c)
	var metrics common.MetricHandle = common.NewNoopMetrics()
	if m, err := common.NewOTelMetrics(); err != nil {
		logger.Warnf("metrics are disabled: %v", err)
	} else {
		metrics = m
	}

	return &Environment{
		Config:     c,
		Transport:  dispatcher,
		Describer:  dispatcher,
		Credential: cred,
		Metrics:    metrics,
		Shutdown: common.JoinShutdownFunc(
			func(context.Context) error { pool.Stop(); return nil },
			closeMux,
			metricsShutdown,
			traceShutdown,
		),
	}, nil
}
