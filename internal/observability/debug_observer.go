// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DebugObserver provides detailed step-by-step debugging
type DebugObserver struct {
	*StandardObserver
	mu     sync.Mutex
	indent int
}

// NewDebugObserver creates a debug observer with step-by-step logging
func NewDebugObserver(logger *zap.Logger) *DebugObserver {
	d := &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, logger),
	}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step with indentation
func (d *DebugObserver) StartStep(component, step, filePath string) func(success bool, details string) {
	start := time.Now()
	d.mu.Lock()
	prefix := strings.Repeat("  ", d.indent)
	d.indent++
	d.mu.Unlock()

	d.logger.Debug(prefix+step, zap.String("component", component), zap.String("file_path", filePath))

	return func(success bool, details string) {
		d.mu.Lock()
		d.indent--
		prefix := strings.Repeat("  ", d.indent)
		d.mu.Unlock()

		msg := prefix + step + " completed"
		if !success {
			msg = prefix + step + " failed"
		}
		d.logger.Debug(msg,
			zap.String("component", component),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("details", details),
		)
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	d.logger.Debug("detail", zap.String("component", component), zap.String("detail", detail))
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.logger.Debug("metric", zap.String("component", component), zap.String("metric", metric), zap.Any("value", value))
}
