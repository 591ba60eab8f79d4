// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages bounds extraction of very long scanned records.
const DefaultMaxPages = 50

// TextContent represents the extracted text layer of a PDF note
type TextContent struct {
	Filename    string
	Text        string
	PageCount   int
	FailedPages int
}

// ExtractText extracts the text layer of a PDF using ledongthuc/pdf. Pages are
// joined with a newline so windows may cross a page break like any line break.
func ExtractText(filePath string, maxPages int) (*TextContent, error) {
	content := &TextContent{
		Filename: filepath.Base(filePath),
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return content, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	content.PageCount = r.NumPage()
	if maxPages > 0 && content.PageCount > maxPages {
		content.PageCount = maxPages
	}

	type pageResult struct {
		pageNum int
		text    string
		err     error
	}

	// Pages are independent; collect them and reassemble in order
	resultChan := make(chan pageResult, content.PageCount)
	for i := 1; i <= content.PageCount; i++ {
		go func(pageNum int) {
			defer func() {
				if rec := recover(); rec != nil {
					resultChan <- pageResult{pageNum: pageNum, err: fmt.Errorf("page %d: %v", pageNum, rec)}
				}
			}()
			p := r.Page(pageNum)
			if p.V.IsNull() {
				resultChan <- pageResult{pageNum: pageNum, err: fmt.Errorf("page %d is null", pageNum)}
				return
			}
			text, err := extractTextWithProperSpacing(p)
			resultChan <- pageResult{pageNum: pageNum, text: text, err: err}
		}(i)
	}

	pageTexts := make(map[int]string, content.PageCount)
	for i := 0; i < content.PageCount; i++ {
		result := <-resultChan
		if result.err != nil {
			content.FailedPages++
			continue
		}
		pageTexts[result.pageNum] = result.text
	}

	var buf bytes.Buffer
	for i := 1; i <= content.PageCount; i++ {
		if text, exists := pageTexts[i]; exists {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(text)
		}
	}

	content.Text = joinHyphenatedLines(cleanTextPreservingStructure(buf.String()))
	return content, nil
}

// cleanTextPreservingStructure trims lines, drops blank ones and collapses inner spacing
func cleanTextPreservingStructure(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// joinHyphenatedLines rejoins words split across lines, as in "insuficien-\ncia".
func joinHyphenatedLines(text string) string {
	var buf strings.Builder
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i < len(lines)-1 && endsWithSplitWord(line) && startsWithLower(lines[i+1]) {
			buf.WriteString(strings.TrimSuffix(line, "-"))
			continue
		}
		buf.WriteString(line)
		if i < len(lines)-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func endsWithSplitWord(line string) bool {
	if len(line) < 2 || !strings.HasSuffix(line, "-") {
		return false
	}
	prev := []rune(line[:len(line)-1])
	return unicode.IsLetter(prev[len(prev)-1])
}

func startsWithLower(line string) bool {
	for _, r := range line {
		return unicode.IsLower(r)
	}
	return false
}

// extractTextWithProperSpacing extracts text using row-based positioning for better spacing
func extractTextWithProperSpacing(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	// PDF coordinates grow upwards, so the top row has the largest Y
	sort.SliceStable(sortedRows, func(i, j int) bool {
		return getAverageY(sortedRows[i].Content) > getAverageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := reconstructRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

// getAverageY calculates the average Y coordinate for text elements in a row
func getAverageY(textElements []pdf.Text) float64 {
	if len(textElements) == 0 {
		return 0
	}
	var totalY float64
	for _, element := range textElements {
		totalY += element.Y
	}
	return totalY / float64(len(textElements))
}

// reconstructRowText rebuilds a row left to right, inserting a space where glyphs are far apart
func reconstructRowText(textElements []pdf.Text) string {
	if len(textElements) == 0 {
		return ""
	}

	sortedElements := make([]pdf.Text, len(textElements))
	copy(sortedElements, textElements)
	sort.SliceStable(sortedElements, func(i, j int) bool {
		return sortedElements[i].X < sortedElements[j].X
	})

	var buf bytes.Buffer
	for i, element := range sortedElements {
		buf.WriteString(element.S)
		if i == len(sortedElements)-1 {
			break
		}

		gap := sortedElements[i+1].X - (element.X + element.W)
		fontSize := element.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}
