// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorType represents different types of errors for handling strategies
type ErrorType int

const (
	ErrorTypeUnknown         ErrorType = iota
	ErrorTypeResourceMissing           // Vocabulary or input file not found
	ErrorTypePatternCompile            // Vocabulary produced an invalid pattern
	ErrorTypeRecordSkipped             // One record failed, the batch goes on
	ErrorTypeInvalidInput              // Bad input data or configuration
	ErrorTypeTimeout                   // Per-record deadline exceeded
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeResourceMissing:
		return "resource_missing"
	case ErrorTypePatternCompile:
		return "pattern_compile"
	case ErrorTypeRecordSkipped:
		return "record_skipped"
	case ErrorTypeInvalidInput:
		return "invalid_input"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original error
	Type     ErrorType
	Message  string
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		if e.Original != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Original)
		}
		return e.Message
	}
	if e.Original == nil {
		return e.Type.String()
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsFatal reports whether the error must stop the whole run rather than a single record.
func (e *ClassifiedError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeResourceMissing, ErrorTypePatternCompile, ErrorTypeInvalidInput:
		return true
	}
	return false
}

// ClassifyError categorizes an error for appropriate handling
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, fs.ErrNotExist) {
		return &ClassifiedError{Original: err, Type: ErrorTypeResourceMissing}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{Original: err, Type: ErrorTypeTimeout}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "not found") || strings.Contains(errStr, "does not exist"):
		return &ClassifiedError{Original: err, Type: ErrorTypeResourceMissing}
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "malformed"):
		return &ClassifiedError{Original: err, Type: ErrorTypeInvalidInput}
	}

	return &ClassifiedError{Original: err, Type: ErrorTypeUnknown}
}

// IsFatal reports whether err should abort processing. Unclassified errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	c := ClassifyError(err)
	return c.Type == ErrorTypeUnknown || c.IsFatal()
}

// TypeOf returns the classification of err, ErrorTypeUnknown for nil.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}
	return ClassifyError(err).Type
}

// NewResourceMissingError creates an error for a vocabulary or input that cannot be opened
func NewResourceMissingError(message string, original error) *ClassifiedError {
	return &ClassifiedError{Original: original, Type: ErrorTypeResourceMissing, Message: message}
}

// NewPatternCompileError creates an error for a vocabulary entry that does not compile
func NewPatternCompileError(message string, original error) *ClassifiedError {
	return &ClassifiedError{Original: original, Type: ErrorTypePatternCompile, Message: message}
}

// NewRecordSkippedError marks a single record as skipped
func NewRecordSkippedError(message string, original error) *ClassifiedError {
	return &ClassifiedError{Original: original, Type: ErrorTypeRecordSkipped, Message: message}
}

// NewInvalidInputError creates an error for malformed input or configuration
func NewInvalidInputError(message string, original error) *ClassifiedError {
	return &ClassifiedError{Original: original, Type: ErrorTypeInvalidInput, Message: message}
}

// NewTimeoutError creates an error for a record that ran out of time
func NewTimeoutError(message string, original error) *ClassifiedError {
	return &ClassifiedError{Original: original, Type: ErrorTypeTimeout, Message: message}
}
