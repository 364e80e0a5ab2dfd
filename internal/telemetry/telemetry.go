// Copyright 2025 Google LLC
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

// Package telemetry records file system operation counts, latencies and
// error categories behind a small pluggable Handle, the same pattern the
// teacher's common package uses for its otel/noop/mock metric handles.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// OpKey annotates the file system operation processed (mkdir, readdir,
	// write, ...).
	OpKey = "fs_op"
	// ErrorCategoryKey reduces error cardinality, mirroring the teacher's
	// FSErrCategoryKey grouping.
	ErrorCategoryKey = "fs_error_category"
)

// Handle records the operation counters a FileSystem emits.
type Handle interface {
	OpsCount(ctx context.Context, inc int64, op string)
	OpsLatency(ctx context.Context, latency time.Duration, op string)
	OpsErrorCount(ctx context.Context, inc int64, op, category string)
}

// ShutdownFunc is the signature for flushing and releasing telemetry
// resources. NewOTel does not return one: its handle records through the
// global otel meter provider.
type ShutdownFunc func(ctx context.Context) error

// NewNoop returns a Handle that records nothing, the default when no
// telemetry exporter is configured.
func NewNoop() Handle { return noopHandle{} }

type noopHandle struct{}

func (noopHandle) OpsCount(context.Context, int64, string)            {}
func (noopHandle) OpsLatency(context.Context, time.Duration, string)  {}
func (noopHandle) OpsErrorCount(context.Context, int64, string, string) {}

var defaultLatencyBuckets = metric.WithExplicitBucketBoundaries(
	1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100,
	130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000,
)

type otelHandle struct {
	opsCount      metric.Int64Counter
	opsLatency    metric.Float64Histogram
	opsErrorCount metric.Int64Counter

	opAttrSets    sync.Map // op string -> metric.MeasurementOption
	errAttrSets   sync.Map // [2]string{op,category} -> metric.MeasurementOption
}

// NewOTel builds a Handle backed by the global otel meter provider, under
// the instrumentation name "heapfs".
func NewOTel() (Handle, error) {
	meter := otel.Meter("heapfs")

	opsCount, err := meter.Int64Counter("fs/ops_count",
		metric.WithDescription("Cumulative number of file system operations processed."))
	if err != nil {
		return nil, err
	}
	opsLatency, err := meter.Float64Histogram("fs/ops_latency",
		metric.WithDescription("Distribution of file system operation latencies."),
		metric.WithUnit("us"), defaultLatencyBuckets)
	if err != nil {
		return nil, err
	}
	opsErrorCount, err := meter.Int64Counter("fs/ops_error_count",
		metric.WithDescription("Cumulative number of file system operation errors, by category."))
	if err != nil {
		return nil, err
	}

	return &otelHandle{opsCount: opsCount, opsLatency: opsLatency, opsErrorCount: opsErrorCount}, nil
}

func (h *otelHandle) opOption(op string) metric.MeasurementOption {
	if v, ok := h.opAttrSets.Load(op); ok {
		return v.(metric.MeasurementOption)
	}
	opt := metric.WithAttributeSet(attribute.NewSet(attribute.String(OpKey, op)))
	v, _ := h.opAttrSets.LoadOrStore(op, opt)
	return v.(metric.MeasurementOption)
}

func (h *otelHandle) errOption(op, category string) metric.MeasurementOption {
	key := op + "\x00" + category
	if v, ok := h.errAttrSets.Load(key); ok {
		return v.(metric.MeasurementOption)
	}
	opt := metric.WithAttributeSet(attribute.NewSet(
		attribute.String(OpKey, op), attribute.String(ErrorCategoryKey, category)))
	v, _ := h.errAttrSets.LoadOrStore(key, opt)
	return v.(metric.MeasurementOption)
}

func (h *otelHandle) OpsCount(ctx context.Context, inc int64, op string) {
	h.opsCount.Add(ctx, inc, h.opOption(op))
}

func (h *otelHandle) OpsLatency(ctx context.Context, latency time.Duration, op string) {
	h.opsLatency.Record(ctx, float64(latency.Microseconds()), h.opOption(op))
}

func (h *otelHandle) OpsErrorCount(ctx context.Context, inc int64, op, category string) {
	h.opsErrorCount.Add(ctx, inc, h.errOption(op, category))
}

// Observe is a small convenience for wrapping an operation: it times fn,
// records OpsCount/OpsLatency unconditionally, and records OpsErrorCount
// when fn (or the error classifier) reports a non-empty category.
func Observe(ctx context.Context, h Handle, op string, classify func(error) string, fn func() error) error {
	start := time.Now()
	err := fn()
	h.OpsCount(ctx, 1, op)
	h.OpsLatency(ctx, time.Since(start), op)
	if err != nil {
		if category := classify(err); category != "" {
			h.OpsErrorCount(ctx, 1, op, category)
		}
	}
	return err
}
