// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"time"

	"go.uber.org/zap"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level         ObservabilityLevel
	logger        *zap.Logger
	DebugObserver *DebugObserver // set when running with --debug
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component. A nil logger disables output.
func NewStandardObserver(level ObservabilityLevel, logger *zap.Logger) *StandardObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// Logger returns the underlying structured logger.
func (o *StandardObserver) Logger() *zap.Logger {
	if o == nil {
		return zap.NewNop()
	}
	return o.logger
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data. Successful operations are only logged at debug level.
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}

	fields := []zap.Field{
		zap.String("component", data.Component),
		zap.String("operation", data.Operation),
		zap.Bool("success", data.Success),
	}
	if data.FilePath != "" {
		fields = append(fields, zap.String("file_path", data.FilePath))
	}
	if data.DurationMs > 0 {
		fields = append(fields, zap.Int64("duration_ms", data.DurationMs))
	}
	if data.MatchCount > 0 {
		fields = append(fields, zap.Int("match_count", data.MatchCount))
	}
	if len(data.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", data.Metadata))
	}

	if data.Error != "" {
		o.logger.Warn(data.Operation, append(fields, zap.String("error", data.Error))...)
		return
	}
	if o.level == ObservabilityDebug {
		o.logger.Debug(data.Operation, fields...)
	}
}

// RecordSkipped reports a record or match that was dropped without aborting the run.
func (o *StandardObserver) RecordSkipped(component, record string, err error) {
	if o == nil {
		return
	}
	o.logger.Warn("skipped",
		zap.String("component", component),
		zap.String("record", record),
		zap.Error(err),
	)
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string
	Operation  string
	FilePath   string
	DurationMs int64
	Success    bool
	Error      string
	MatchCount int
	Metadata   map[string]interface{}
}
