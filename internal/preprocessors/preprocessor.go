// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"c19-miner/internal/observability"
	"c19-miner/internal/resilience"
)

// ProcessedContent represents note text extracted from a file
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format    string
	PageCount int
	WordCount int
	CharCount int
	LineCount int

	// Processing information
	ProcessorType string
}

// Preprocessor interface defines methods for turning files into note text
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts the note text from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// NewDefaultManager registers the preprocessors named in types ("txt", "pdf").
func NewDefaultManager(types []string, observer *observability.StandardObserver) (*PreprocessorManager, error) {
	pm := NewPreprocessorManager()
	for _, t := range types {
		var p Preprocessor
		switch strings.ToLower(t) {
		case "txt", "text", "plaintext":
			p = NewPlainTextPreprocessor()
		case "pdf":
			p = NewPDFPreprocessor()
		default:
			return nil, resilience.NewInvalidInputError(fmt.Sprintf("unknown preprocessor type %q", t), nil)
		}
		p.SetObserver(observer)
		pm.RegisterPreprocessor(p)
	}
	return pm, nil
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// CanProcess reports whether any registered preprocessor handles the file
func (pm *PreprocessorManager) CanProcess(filePath string) bool {
	return pm.GetPreprocessor(filePath) != nil
}

// ProcessFile extracts text with the first preprocessor that succeeds
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ProcessedContent, error) {
	var lastError error
	for _, p := range pm.preprocessors {
		if !p.CanProcess(filePath) {
			continue
		}
		result, err := p.Process(filePath)
		if err == nil {
			return result, nil
		}
		lastError = err
	}

	if lastError == nil {
		return nil, resilience.NewInvalidInputError(fmt.Sprintf("no preprocessor for %s", filepath.Base(filePath)), nil)
	}
	return nil, lastError
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// countStats fills word, char and line counts from Text
func (pc *ProcessedContent) countStats() {
	pc.WordCount = len(strings.Fields(pc.Text))
	pc.CharCount = len(pc.Text)
	pc.LineCount = strings.Count(pc.Text, "\n") + 1
}

func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// readableFile stats a regular file
func readableFile(filePath string) (os.FileInfo, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, resilience.NewResourceMissingError(fmt.Sprintf("failed to open %s", filePath), err)
	}
	if info.IsDir() {
		return nil, resilience.NewInvalidInputError(fmt.Sprintf("%s is a directory", filePath), nil)
	}
	return info, nil
}
