// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector finds vocabulary terms in normalized text together with the
// window of words around them.
//
// A match behaves like the pattern ((\w+\W+){0,W}\bTERM\b(\W+\w+){0,W}) under
// left-to-right, non-overlapping iteration, with \w covering Unicode letters,
// numbers and underscore.
package detector

import (
	"fmt"
	"strings"

	"c19-miner/internal/resilience"
	"c19-miner/internal/textnorm"
	"c19-miner/internal/vocabulary"
)

// Strategy selects how a vocabulary is turned into matchers.
type Strategy string

const (
	// StrategyPerEntry scans once per (key, form) pair. Every match belongs to exactly one entry.
	StrategyPerEntry Strategy = "per_entry"
	// StrategyAlternation scans once with all forms. The first listed form wins at a position.
	StrategyAlternation Strategy = "alternation"
)

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPerEntry, StrategyAlternation:
		return Strategy(s), nil
	}
	return "", resilience.NewInvalidInputError(fmt.Sprintf("unknown matching strategy %q", s), nil)
}

// Options configures Compile. Window has no default and must be set by the caller.
type Options struct {
	Window   int
	Strategy Strategy
	// Escape quotes regex metacharacters in surface forms. Forms flagged as
	// patterns in the vocabulary are never quoted.
	Escape bool
	// Normalize is what the scanned text went through. Literal forms are
	// tokenized the same way.
	Normalize textnorm.Options
}

// Match is one term occurrence and its window.
type Match struct {
	Key string
	// Description is the term as it appears in the scanned text.
	Description string
	// Context is the flattened window wrapped in ellipsis markers.
	Context string

	Start, End         int // window span in the scanned text
	TermStart, TermEnd int
}

// Span returns the raw window text.
func (m Match) Span(text string) string {
	return text[m.Start:m.End]
}

// ContextInfo splits a window around its term.
type ContextInfo struct {
	BeforeText string
	Term       string
	AfterText  string
}

// ContextOf returns the parts of the window of m within text.
func (m Match) ContextOf(text string) ContextInfo {
	return ContextInfo{
		BeforeText: text[m.Start:m.TermStart],
		Term:       text[m.TermStart:m.TermEnd],
		AfterText:  text[m.TermEnd:m.End],
	}
}

// FormatContext renders a window the way mentions carry it.
func FormatContext(span string) string {
	return "..." + strings.ReplaceAll(span, "\n", " ") + "..."
}

// Matcher is a compiled vocabulary. It is immutable and safe for concurrent use.
type Matcher struct {
	vocabulary string
	strategy   Strategy
	extractor  *ContextExtractor
	passes     []*termSet
}

// Compile builds a matcher for v. Compilation failures name the vocabulary.
func Compile(v *vocabulary.Vocabulary, opts Options) (*Matcher, error) {
	if opts.Window < 0 {
		return nil, resilience.NewInvalidInputError(fmt.Sprintf("vocabulary %q: window must not be negative, got %d", v.Name(), opts.Window), nil)
	}
	if _, err := ParseStrategy(string(opts.Strategy)); err != nil {
		return nil, err
	}

	formOpts := textnorm.Options{NFC: true, Tokenize: opts.Normalize.Tokenize}
	pairs := v.Pairs()
	alts := make([]alternative, 0, len(pairs))
	for _, p := range pairs {
		alt := alternative{key: p.Key, form: p.Form, pattern: p.Pattern || !opts.Escape}
		if !alt.pattern {
			// The scanned text is lowercased and composed, so literal forms must be too.
			alt.form = textnorm.Normalize(alt.form, formOpts)
		}
		alts = append(alts, alt)
	}

	m := &Matcher{
		vocabulary: v.Name(),
		strategy:   opts.Strategy,
		extractor:  NewContextExtractor(opts.Window),
	}

	var groups [][]alternative
	if opts.Strategy == StrategyPerEntry {
		for _, alt := range alts {
			groups = append(groups, []alternative{alt})
		}
	} else if len(alts) > 0 {
		groups = append(groups, alts)
	}

	for _, g := range groups {
		ts, err := compileTermSet(v.Name(), g)
		if err != nil {
			return nil, resilience.NewPatternCompileError("pattern compile failed", err)
		}
		m.passes = append(m.passes, ts)
	}
	return m, nil
}

// Vocabulary returns the name of the compiled vocabulary.
func (m *Matcher) Vocabulary() string { return m.vocabulary }

// Strategy returns the strategy the matcher was compiled with.
func (m *Matcher) Strategy() Strategy { return m.strategy }

// Window returns the window size in units.
func (m *Matcher) Window() int { return m.extractor.Window }

// Scan returns a lazy iterator over the matches in text.
func (m *Matcher) Scan(text string) *Iterator {
	return &Iterator{
		matcher: m,
		text:    text,
		seg:     segment(text),
		memo:    make(map[int]termHit),
	}
}

// All collects every match in text.
func (m *Matcher) All(text string) []Match {
	var out []Match
	it := m.Scan(text)
	for {
		match, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, match)
	}
}

// PatternCompileError reports a vocabulary whose forms do not compile.
type PatternCompileError struct {
	Vocabulary string
	Form       string
	Err        error
}

func (e *PatternCompileError) Error() string {
	if e.Form == "" {
		return fmt.Sprintf("vocabulary %q does not compile: %v", e.Vocabulary, e.Err)
	}
	return fmt.Sprintf("vocabulary %q: form %q does not compile: %v", e.Vocabulary, e.Form, e.Err)
}

func (e *PatternCompileError) Unwrap() error { return e.Err }
