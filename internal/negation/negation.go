// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package negation drops findings written inside a fixed set of Spanish negation
// phrases such as "sin fiebre" or "niega diabetes". Only literal phrases inside
// the mention window are recognised; negation scope is not analysed.
package negation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"c19-miner/internal/resilience"
	"c19-miner/internal/textnorm"
)

// TermPlaceholder marks where the matched term goes in a frame template.
const TermPlaceholder = "{term}"

// DefaultFrames are the phrases checked for every clinical category.
var DefaultFrames = []string{
	"sin {term}",
	"niega {term}",
	"sin compañía de {term}",
	"ni {term}",
}

// SuffixFrame catches a negation cue glued to the end of the term by OCR.
const SuffixFrame = "{term}nega"

// Frame is a parsed template.
type Frame struct {
	Prefix string
	Suffix string
}

// ParseFrame parses a template containing TermPlaceholder exactly once.
func ParseFrame(template string) (Frame, error) {
	if strings.Count(template, TermPlaceholder) != 1 {
		return Frame{}, resilience.NewInvalidInputError(
			fmt.Sprintf("negation frame %q must contain %s exactly once", template, TermPlaceholder), nil)
	}
	prefix, suffix, _ := strings.Cut(template, TermPlaceholder)
	if prefix == "" && suffix == "" {
		return Frame{}, resilience.NewInvalidInputError(fmt.Sprintf("negation frame %q is empty", template), nil)
	}
	return Frame{Prefix: prefix, Suffix: suffix}, nil
}

// Phrase builds the frame around term.
func (f Frame) Phrase(term string) string {
	return f.Prefix + term + f.Suffix
}

// Filter decides whether a mention is negated. It is immutable and safe for concurrent use.
type Filter struct {
	frames []Frame
}

// NewFilter builds a filter from templates.
func NewFilter(templates []string) (*Filter, error) {
	f := &Filter{}
	for _, t := range templates {
		frame, err := ParseFrame(textnorm.Lower(t))
		if err != nil {
			return nil, err
		}
		f.frames = append(f.frames, frame)
	}
	return f, nil
}

// Default returns the filter with DefaultFrames, plus SuffixFrame when withSuffix is set.
func Default(withSuffix bool) *Filter {
	templates := DefaultFrames
	if withSuffix {
		templates = append(append([]string(nil), DefaultFrames...), SuffixFrame)
	}
	f, err := NewFilter(templates)
	if err != nil {
		panic(err)
	}
	return f
}

// Phrases lists the negation phrases for term in frame order.
func (f *Filter) Phrases(term string) []string {
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		out = append(out, fr.Phrase(term))
	}
	return out
}

// IsNegated reports whether any frame around term occurs in context starting on a word boundary.
func (f *Filter) IsNegated(context, term string) bool {
	if f == nil || term == "" {
		return false
	}
	for _, fr := range f.frames {
		if containsAtBoundary(context, fr.Phrase(term)) {
			return true
		}
	}
	return false
}

func containsAtBoundary(s, phrase string) bool {
	first, _ := utf8.DecodeRuneInString(phrase)
	firstWord := textnorm.IsWord(first)

	for offset := 0; offset <= len(s)-len(phrase); {
		i := strings.Index(s[offset:], phrase)
		if i < 0 {
			return false
		}
		i += offset

		prevWord := false
		if i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(s[:i])
			prevWord = textnorm.IsWord(prev)
		}
		if prevWord != firstWord {
			return true
		}

		_, size := utf8.DecodeRuneInString(s[i:])
		offset = i + size
	}
	return false
}
