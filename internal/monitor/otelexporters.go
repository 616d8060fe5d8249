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

package monitor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/drivestream/drivestream/cfg"
	"github.com/drivestream/drivestream/common"
	"github.com/drivestream/drivestream/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "drivestream"

// SetupOTelMetricExporters installs the global meter provider. Metrics are
// served for Prometheus scraping when a port is configured; otherwise the
// provider has no reader and recording is discarded.
func SetupOTelMetricExporters(ctx context.Context, c *cfg.Config) common.ShutdownFn {
	opts, stopServer := setupPrometheus(c.Metrics.PrometheusPort)
	if len(opts) > 0 {
		// Resource detection may probe the GCE metadata server, so it is
		// skipped when nothing is exported.
		if res, err := getResource(ctx); err != nil {
			logger.Errorf("Error while fetching resource: %v", err)
		} else {
			opts = append(opts, metric.WithResource(res))
		}
	}

	meterProvider := metric.NewMeterProvider(opts...)
	otel.SetMeterProvider(meterProvider)

	return common.JoinShutdownFunc(stopServer, meterProvider.Shutdown)
}

func setupPrometheus(port int64) ([]metric.Option, common.ShutdownFn) {
	if port <= 0 {
		return nil, nil
	}
	exporter, err := prometheus.New(prometheus.WithoutUnits(), prometheus.WithoutCounterSuffixes(), prometheus.WithoutScopeInfo(), prometheus.WithoutTargetInfo())
	if err != nil {
		logger.Errorf("Error while creating prometheus exporter:%v", err)
		return nil, nil
	}
	server := serveMetrics(port)
	return []metric.Option{metric.WithReader(exporter)}, func(ctx context.Context) error {
		logger.Info("Shutting down Prometheus exporter.")
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("prometheus exporter shutdown: %w", err)
		}
		return nil
	}
}

func serveMetrics(port int64) *http.Server {
	logger.Infof("Serving metrics at localhost:%d/metrics", port)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	prometheusServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", port),
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go func() {
		if err := prometheusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Failed to start Prometheus server: %v", err)
		}
	}()
	return prometheusServer
}

func getResource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(ctx,
		// Adds cloud.* and host.* attributes when running on Google Cloud.
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(common.GetVersion()),
		),
	)
}
