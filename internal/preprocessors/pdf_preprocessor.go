// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"path/filepath"
	"strings"

	"c19-miner/internal/observability"
	textextractpdftextlib "c19-miner/internal/preprocessors/text-extractors/text-extract-pdftextlib"
	"c19-miner/internal/resilience"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFPreprocessor reads the text layer of PDF notes. Scanned PDFs without a
// text layer yield an error; OCR is out of scope.
type PDFPreprocessor struct {
	observer  *observability.StandardObserver
	pdfConfig *model.Configuration
	MaxPages  int
}

// NewPDFPreprocessor creates a new PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	return &PDFPreprocessor{
		pdfConfig: model.NewDefaultConfiguration(),
		MaxPages:  textextractpdftextlib.DefaultMaxPages,
	}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process validates the PDF and extracts its text layer
func (pp *PDFPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)
	}
	fail := func(err error) (*ProcessedContent, error) {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return nil, err
	}

	if err := pp.validatePDFFile(filePath); err != nil {
		return fail(err)
	}

	extracted, err := textextractpdftextlib.ExtractText(filePath, pp.MaxPages)
	if err != nil {
		return fail(resilience.NewInvalidInputError(fmt.Sprintf("extracting text from %s", filepath.Base(filePath)), err))
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return fail(resilience.NewInvalidInputError(fmt.Sprintf("%s has no text layer", filepath.Base(filePath)), nil))
	}

	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      extracted.Filename,
		Text:          extracted.Text,
		Format:        "PDF",
		PageCount:     extracted.PageCount,
		ProcessorType: "pdf",
	}
	result.countStats()

	if pp.observer != nil && pp.observer.DebugObserver != nil && extracted.FailedPages > 0 {
		pp.observer.DebugObserver.LogDetail("pdf_preprocessor",
			fmt.Sprintf("%d of %d pages could not be read", extracted.FailedPages, extracted.PageCount))
	}
	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"page_count":   result.PageCount,
			"failed_pages": extracted.FailedPages,
			"word_count":   result.WordCount,
		})
	}
	return result, nil
}

// validatePDFFile checks the file structure with pdfcpu before extraction
func (pp *PDFPreprocessor) validatePDFFile(filePath string) error {
	if _, err := readableFile(filePath); err != nil {
		return err
	}
	if err := api.ValidateFile(filePath, pp.pdfConfig); err != nil {
		return resilience.NewInvalidInputError(fmt.Sprintf("invalid PDF file %s", filepath.Base(filePath)), err)
	}
	return nil
}
