// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package miner turns a note into a ClueSet: one entry per checked category,
// holding the non-negated mentions found by that category's vocabulary.
package miner

import (
	"errors"
	"fmt"

	"c19-miner/internal/detector"
	"c19-miner/internal/resilience"
	"c19-miner/internal/textnorm"
)

// Options configures an Engine.
type Options struct {
	Detector  detector.Options
	Normalize textnorm.Options
	Hooks     Hooks
}

// Hooks observe per-match outcomes. All fields are optional and must be safe
// for concurrent use when the engine is shared between workers.
type Hooks struct {
	OnMention func(category string)
	OnNegated func(category string, m detector.Match)
	OnSkip    func(category string, m detector.Match, err error)
}

type compiledCategory struct {
	Category
	matcher *detector.Matcher
}

// Engine holds compiled categories. It is immutable and shared by many miners.
type Engine struct {
	categories []*compiledCategory
	normalize  textnorm.Options
	hooks      Hooks
}

// NewEngine compiles every category. A pattern that does not compile is fatal
// and names its vocabulary.
func NewEngine(categories []Category, opts Options) (*Engine, error) {
	e := &Engine{normalize: opts.Normalize, hooks: opts.Hooks}
	seen := make(map[string]bool, len(categories))

	for i := range categories {
		c := categories[i]
		if c.Vocabulary == nil {
			return nil, resilience.NewResourceMissingError(fmt.Sprintf("category %q has no vocabulary", c.Name), nil)
		}
		if seen[c.Name] {
			return nil, resilience.NewInvalidInputError(fmt.Sprintf("duplicate category %q", c.Name), nil)
		}
		seen[c.Name] = true

		dopts := opts.Detector
		dopts.Normalize = opts.Normalize
		if c.Strategy != "" {
			dopts.Strategy = c.Strategy
		}
		m, err := detector.Compile(c.Vocabulary, dopts)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}
		e.categories = append(e.categories, &compiledCategory{Category: c, matcher: m})
	}
	return e, nil
}

// Categories returns category names in configuration order.
func (e *Engine) Categories() []string {
	names := make([]string, 0, len(e.categories))
	for _, c := range e.categories {
		names = append(names, c.Name)
	}
	return names
}

// Category returns the descriptor of a category.
func (e *Engine) Category(name string) (Category, bool) {
	if c := e.lookup(name); c != nil {
		return c.Category, true
	}
	return Category{}, false
}

func (e *Engine) lookup(name string) *compiledCategory {
	for _, c := range e.categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ErrUnknownCategory is returned when a check names a category the engine lacks.
var ErrUnknownCategory = errors.New("unknown category")

// Miner mines one note. It is not safe for concurrent use.
type Miner struct {
	engine     *Engine
	normalized string
	clues      *ClueSet
}

// New normalizes text once and seeds the clue set with it.
func New(text string, engine *Engine) *Miner {
	return &Miner{
		engine:     engine,
		normalized: textnorm.Normalize(text, engine.normalize),
		clues:      NewClueSet(text),
	}
}

// Normalized returns the text the checks scan.
func (m *Miner) Normalized() string { return m.normalized }

// Clues returns the clue set built so far.
func (m *Miner) Clues() *ClueSet { return m.clues }

func (m *Miner) CheckCovid19() error       { return m.Check(CategoryCovid19) }
func (m *Miner) CheckSymptoms() error      { return m.Check(CategorySymptoms) }
func (m *Miner) CheckComorbidities() error { return m.Check(CategoryComorbidities) }
func (m *Miner) CheckSampling() error      { return m.Check(CategorySampling) }
func (m *Miner) CheckDecease() error       { return m.Check(CategoryDecease) }

// Check scans one category and replaces its entry in the clue set.
func (m *Miner) Check(name string) error {
	c := m.engine.lookup(name)
	if c == nil {
		return fmt.Errorf("%w %q", ErrUnknownCategory, name)
	}
	m.clues.Set(m.scan(c))
	return nil
}

// CheckAll runs every engine category in order.
func (m *Miner) CheckAll() error {
	for _, c := range m.engine.categories {
		m.clues.Set(m.scan(c))
	}
	return nil
}

func (m *Miner) scan(c *compiledCategory) *CategoryResult {
	agg := newAggregator(&c.Category)
	hooks := m.engine.hooks

	it := c.matcher.Scan(m.normalized)
	for match, ok := it.Next(); ok; match, ok = it.Next() {
		negated, err := m.accept(c, agg, match)
		switch {
		case err != nil:
			if hooks.OnSkip != nil {
				hooks.OnSkip(c.Name, match, err)
			}
		case negated:
			if hooks.OnNegated != nil {
				hooks.OnNegated(c.Name, match)
			}
		default:
			if hooks.OnMention != nil {
				hooks.OnMention(c.Name)
			}
		}
	}
	return agg.result
}

// accept filters and aggregates one match. A failure skips only this match.
func (m *Miner) accept(c *compiledCategory, agg *aggregator, match detector.Match) (negated bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("match at %d: %v", match.TermStart, r)
		}
	}()

	if err := validMatch(match, len(m.normalized)); err != nil {
		return false, err
	}
	if c.Kind == KindKeyed && match.Key == "" {
		return false, fmt.Errorf("match %q at %d has no concept key", match.Description, match.TermStart)
	}
	if c.Negation.IsNegated(match.Context, match.Description) {
		return true, nil
	}
	agg.add(match)
	return false, nil
}

func validMatch(match detector.Match, n int) error {
	if match.Start < 0 || match.Start > match.TermStart || match.TermStart >= match.TermEnd ||
		match.TermEnd > match.End || match.End > n {
		return fmt.Errorf("malformed window [%d,%d) around [%d,%d)", match.Start, match.End, match.TermStart, match.TermEnd)
	}
	return nil
}
