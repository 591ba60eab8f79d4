// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package textnorm prepares note text for matching: Unicode normalization,
// Spanish lowercasing and optional token segmentation.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Options controls Normalize.
type Options struct {
	// NFC composes accents so "í" written as i + combining acute still matches vocabularies.
	NFC bool `yaml:"nfc"`
	// Tokenize separates punctuation from words with single spaces.
	Tokenize bool `yaml:"tokenize"`
	// Sentences puts every sentence on its own line before lowercasing.
	Sentences bool `yaml:"split_sentences"`
}

// DefaultOptions returns NFC on, tokenization off.
func DefaultOptions() Options {
	return Options{NFC: true}
}

// IsWord reports whether r belongs to the word class: letters, numbers and underscore.
func IsWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Lower lowercases text with Spanish casing rules.
func Lower(text string) string {
	// cases.Caser keeps state, so one per call.
	return cases.Lower(language.Spanish).String(text)
}

// Normalize returns the text the matcher scans. Line breaks are kept.
func Normalize(text string, opts Options) string {
	if opts.NFC {
		text = norm.NFC.String(text)
	}
	if opts.Sentences {
		text = SplitSentences(text)
	}
	text = Lower(text)
	if opts.Tokenize {
		text = Tokenize(text)
	}
	return text
}

// Tokenize puts a single space between tokens on every line. Punctuation becomes its own
// token except hyphens inside words and dots or commas between digits.
func Tokenize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = tokenizeLine(line)
	}
	return strings.Join(lines, "\n")
}

func tokenizeLine(line string) string {
	runes := []rune(strings.TrimRight(line, "\r"))
	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case IsWord(r):
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		case keepsJoined(runes, i):
			cur.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return strings.Join(tokens, " ")
}

func keepsJoined(runes []rune, i int) bool {
	if i == 0 || i == len(runes)-1 {
		return false
	}
	prev, next := runes[i-1], runes[i+1]
	switch runes[i] {
	case '-':
		return IsWord(prev) && IsWord(next)
	case '.', ',':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	}
	return false
}
