// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"c19-miner/internal/formatters"
	"c19-miner/internal/miner"
)

// Formatter writes the clue set wire format
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Clue set JSON, the format read back by the report command"
}

func (f *Formatter) FileExtension() string {
	return ".JSON"
}

// Format keeps the clue set's key order and leaves non-ASCII text unescaped.
// Pretty output is indented with two spaces.
func (f *Formatter) Format(clues *miner.ClueSet, options formatters.FormatterOptions) (string, error) {
	if clues == nil {
		return "", fmt.Errorf("no clue set to format")
	}
	raw, err := clues.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	if options.Compact {
		return string(raw), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return out.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
