// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"c19-miner/internal/formatters"
	"c19-miner/internal/formatters/shared"
	"c19-miner/internal/miner"
)

// Headers of the mention table. Verbose output prepends one column per record attribute.
var Headers = []string{"categoría", "clave", "descripción", "mención", "referencia"}

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "One row per mention for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(clues *miner.ClueSet, options formatters.FormatterOptions) (string, error) {
	if clues == nil {
		return "", fmt.Errorf("no clue set to format")
	}

	var meta []miner.MetaField
	if options.Verbose {
		meta = clues.MetaFields()
	}

	headers := make([]string, 0, len(meta)+len(Headers))
	for _, m := range meta {
		headers = append(headers, f.escapeCSVField(m.Key))
	}
	for _, h := range Headers {
		headers = append(headers, f.escapeCSVField(h))
	}

	// Start with header row
	csvRows := []string{strings.Join(headers, ",")}
	for _, r := range shared.ConvertToRows(clues) {
		csvRows = append(csvRows, f.createCSVRow(r, meta))
	}
	return strings.Join(csvRows, "\n"), nil
}

// createCSVRow creates a CSV row for a mention
func (f *Formatter) createCSVRow(r shared.MentionRow, meta []miner.MetaField) string {
	row := make([]string, 0, len(meta)+len(Headers))
	for _, m := range meta {
		row = append(row, f.escapeCSVField(m.Value))
	}
	row = append(row,
		f.escapeCSVField(r.Category),
		f.escapeCSVField(r.Key),
		f.escapeCSVField(r.Description),
		f.escapeCSVField(r.Mention),
		f.escapeCSVField(r.Reference),
	)
	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes fields a spreadsheet would evaluate as a formula
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	firstChar := field[0]
	if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' {
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
