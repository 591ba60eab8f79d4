// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"c19-miner/internal/formatters"
	"c19-miner/internal/formatters/shared"
	"c19-miner/internal/miner"

	"github.com/fatih/color"
)

// keyWidth fits a Wikidata id such as Q84263196
const keyWidth = 10

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable mentions grouped by category, with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(clues *miner.ClueSet, options formatters.FormatterOptions) (string, error) {
	if clues == nil {
		return "", fmt.Errorf("no clue set to format")
	}
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder
	if options.Verbose || options.ShowText {
		f.appendRecord(&builder, clues, options)
	}

	summaries := shared.Summarize(clues)
	total := 0
	for _, s := range summaries {
		total += s.Count
		f.appendCategory(&builder, s, options)
	}

	if len(summaries) == 0 {
		builder.WriteString("No categories checked.\n")
		return builder.String(), nil
	}
	summary := fmt.Sprintf("%d mentions in %d categories\n", total, len(summaries))
	builder.WriteString(f.paint("white", options, "%s", summary))
	return builder.String(), nil
}

// appendRecord prints record attributes and, when asked, the note itself
func (f *Formatter) appendRecord(builder *strings.Builder, clues *miner.ClueSet, options formatters.FormatterOptions) {
	for _, m := range clues.MetaFields() {
		builder.WriteString(f.paint("cyan", options, "%s: ", m.Key))
		builder.WriteString(m.Value)
		builder.WriteString("\n")
	}
	if options.ShowText {
		builder.WriteString(f.paint("cyan", options, "%s: ", miner.FieldText))
		builder.WriteString(singleLine(clues.Text()))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
}

// appendCategory adds one category block to the string builder
func (f *Formatter) appendCategory(builder *strings.Builder, s shared.CategorySummary, options formatters.FormatterOptions) {
	countColor := "yellow"
	if s.Count == 0 {
		countColor = "green"
	}
	builder.WriteString(f.paint("white", options, "== %s ", s.Name))
	builder.WriteString(f.paint(countColor, options, "(%d)", s.Count))
	builder.WriteString(f.paint("white", options, " ==\n"))

	if s.Count == 0 {
		builder.WriteString("  no mentions\n\n")
		return
	}

	for _, r := range s.Rows {
		builder.WriteString("  ")
		if s.Kind == miner.KindKeyed {
			builder.WriteString(f.paint("magenta", options, "%-*s", keyWidth, r.Key))
			builder.WriteString(" ")
			builder.WriteString(f.paint("blue", options, "%s", r.Description))
			builder.WriteString(": ")
		}
		builder.WriteString(singleLine(r.Mention))
		builder.WriteString("\n")

		if options.Verbose && r.Reference != "" {
			builder.WriteString(strings.Repeat(" ", keyWidth+3))
			builder.WriteString(f.paint("cyan", options, "%s", r.Reference))
			builder.WriteString("\n")
		}
	}
	builder.WriteString("\n")
}

// paint formats with the named color unless colors are off
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

// singleLine keeps each mention on one output line
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\t", " ")
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
