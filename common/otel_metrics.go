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

package common

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// Attribute Keys
	// cacheHitKey specifies whether a stream read was served from the byte-range cache.
	cacheHitKey = attribute.Key("cache_hit")
	// transportKey specifies the transport that served a fetch, e.g. http or gcs.
	transportKey = attribute.Key("transport")
	// statusKey specifies whether a fetch succeeded.
	statusKey = attribute.Key("status")

	cacheHitOptionCache,
	transportOptionCache,
	transportStatusOptionCache sync.Map

	defaultLatencyDistribution = metric.WithExplicitBucketBoundaries(1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000)
)

type transportStatus struct {
	transport, status string
}

func loadOrStoreAttrOption[K comparable](mp *sync.Map, key K, attrSetGenFunc func() attribute.Set) metric.MeasurementOption {
	attrSet, ok := mp.Load(key)
	if ok {
		return attrSet.(metric.MeasurementOption)
	}
	v, _ := mp.LoadOrStore(key, metric.WithAttributeSet(attrSetGenFunc()))
	return v.(metric.MeasurementOption)
}

func cacheHitAttrOption(cacheHit string) metric.MeasurementOption {
	return loadOrStoreAttrOption(&cacheHitOptionCache, cacheHit,
		func() attribute.Set {
			return attribute.NewSet(cacheHitKey.String(cacheHit))
		})
}

func transportAttrOption(transport string) metric.MeasurementOption {
	return loadOrStoreAttrOption(&transportOptionCache, transport,
		func() attribute.Set {
			return attribute.NewSet(transportKey.String(transport))
		})
}

func transportStatusAttrOption(attr transportStatus) metric.MeasurementOption {
	return loadOrStoreAttrOption(&transportStatusOptionCache, attr,
		func() attribute.Set {
			return attribute.NewSet(transportKey.String(attr.transport), statusKey.String(attr.status))
		})
}

// otelMetrics maintains the list of all metrics computed by drivestream.
type otelMetrics struct {
	streamReadCount      metric.Int64Counter
	streamReadBytesCount metric.Int64Counter

	fetchRequestCount       metric.Int64Counter
	fetchDownloadBytesCount metric.Int64Counter
	fetchRequestLatency     metric.Float64Histogram
}

func (o *otelMetrics) StreamReadCount(ctx context.Context, inc int64, cacheHit string) {
	o.streamReadCount.Add(ctx, inc, cacheHitAttrOption(cacheHit))
}

func (o *otelMetrics) StreamReadBytesCount(ctx context.Context, inc int64, cacheHit string) {
	o.streamReadBytesCount.Add(ctx, inc, cacheHitAttrOption(cacheHit))
}

func (o *otelMetrics) FetchRequestCount(ctx context.Context, inc int64, transport string, status string) {
	o.fetchRequestCount.Add(ctx, inc, transportStatusAttrOption(transportStatus{transport: transport, status: status}))
}

func (o *otelMetrics) FetchDownloadBytesCount(ctx context.Context, inc int64, transport string) {
	o.fetchDownloadBytesCount.Add(ctx, inc, transportAttrOption(transport))
}

func (o *otelMetrics) FetchRequestLatency(ctx context.Context, latency time.Duration, transport string) {
	o.fetchRequestLatency.Record(ctx, float64(latency.Milliseconds()), transportAttrOption(transport))
}

// NewOTelMetrics builds a MetricHandle on top of the global meter provider.
func NewOTelMetrics() (*otelMetrics, error) {
	streamMeter := otel.Meter("stream")
	fetchMeter := otel.Meter("fetch")

	streamReadCount, err1 := streamMeter.Int64Counter("stream/read_count",
		metric.WithDescription("The cumulative number of stream reads along with cache hit - true/false."))
	streamReadBytesCount, err2 := streamMeter.Int64Counter("stream/read_bytes_count",
		metric.WithDescription("The cumulative number of bytes returned by stream reads along with cache hit - true/false."),
		metric.WithUnit("By"))

	fetchRequestCount, err3 := fetchMeter.Int64Counter("fetch/request_count",
		metric.WithDescription("The cumulative number of ranged requests along with the transport and outcome."))
	fetchDownloadBytesCount, err4 := fetchMeter.Int64Counter("fetch/download_bytes_count",
		metric.WithDescription("The cumulative number of bytes downloaded by ranged requests along with the transport."),
		metric.WithUnit("By"))
	fetchRequestLatency, err5 := fetchMeter.Float64Histogram("fetch/request_latencies",
		metric.WithDescription("The cumulative distribution of ranged request latencies along with the transport."),
		metric.WithUnit("ms"),
		defaultLatencyDistribution)

	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return nil, err
	}

	return &otelMetrics{
		streamReadCount:         streamReadCount,
		streamReadBytesCount:    streamReadBytesCount,
		fetchRequestCount:       fetchRequestCount,
		fetchDownloadBytesCount: fetchDownloadBytesCount,
		fetchRequestLatency:     fetchRequestLatency,
	}, nil
}
