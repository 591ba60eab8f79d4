// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"c19-miner/internal/observability"
	"c19-miner/internal/resilience"
)

// MaxTextFileSize bounds a single note file.
const MaxTextFileSize = 32 * 1024 * 1024

// PlainTextPreprocessor reads notes stored as text files
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".txt", ".text", ".nota"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, ptp.GetSupportedExtensions())
}

// Process reads the file content
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if ptp.observer != nil {
		finishTiming = ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)
		if ptp.observer.DebugObserver != nil {
			finishStep = ptp.observer.DebugObserver.StartStep("plaintext_preprocessor", "process_file", filePath)
		}
	}

	content, err := readTextFile(filePath)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		if finishStep != nil {
			finishStep(false, fmt.Sprintf("Failed to read text file: %v", err))
		}
		return nil, err
	}

	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          content,
		Format:        "Plain Text",
		PageCount:     1,
		ProcessorType: "plaintext",
	}
	result.countStats()

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"word_count": result.WordCount,
			"line_count": result.LineCount,
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Processed plain text file: %d words, %d lines", result.WordCount, result.LineCount))
	}
	return result, nil
}

// readTextFile reads a note, dropping a UTF-8 byte order mark and invalid bytes
func readTextFile(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)
	info, err := readableFile(cleanPath)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxTextFileSize {
		return "", resilience.NewInvalidInputError(fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), MaxTextFileSize), nil)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	content := strings.TrimPrefix(string(data), "\ufeff")
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}
	return content, nil
}
