// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package miner

import (
	"fmt"
	"strings"

	"c19-miner/internal/detector"
	"c19-miner/internal/negation"
	"c19-miner/internal/resilience"
	"c19-miner/internal/vocabulary"
)

// Category names as they appear in the wire format.
const (
	CategoryCovid19       = "COVID-19"
	CategorySymptoms      = "síntomas"
	CategoryComorbidities = "comorbilidades"
	CategorySampling      = "muestreos"
	CategoryDecease       = "defunciones"
)

// Kind tells whether a category groups mentions by concept.
type Kind string

const (
	KindKeyed Kind = "keyed"
	KindFlat  Kind = "flat"
)

// Wikidata reference defaults.
const (
	DefaultReferenceField = "wikidata"
	DefaultReferenceURL   = "https://www.wikidata.org/wiki/{key}"
)

// Category describes one check. Vocabularies are loaded by the caller.
type Category struct {
	Name       string
	Kind       Kind
	Vocabulary *vocabulary.Vocabulary
	// Negation drops mentions inside negation frames. Nil disables filtering.
	Negation *negation.Filter

	ReferenceField string
	// ReferenceURL is a template; "{key}" is replaced by the concept key.
	// Without the placeholder the key is appended.
	ReferenceURL string

	// Strategy overrides the engine strategy when set.
	Strategy detector.Strategy
}

// Reference builds the external reference for key.
func (c Category) Reference(key string) string {
	if c.ReferenceURL == "" {
		return ""
	}
	if strings.Contains(c.ReferenceURL, "{key}") {
		return strings.ReplaceAll(c.ReferenceURL, "{key}", key)
	}
	return c.ReferenceURL + key
}

// CategorySpec is the configuration form of a Category.
type CategorySpec struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	// Vocabulary is a file path or builtin:<name>. Empty selects the builtin
	// vocabulary of a standard category.
	Vocabulary     string `yaml:"vocabulary,omitempty"`
	Negation       bool   `yaml:"negation"`
	NegationSuffix bool   `yaml:"negation_suffix,omitempty"`
	ReferenceField string `yaml:"reference_field,omitempty"`
	ReferenceURL   string `yaml:"reference_url,omitempty"`
	Strategy       string `yaml:"strategy,omitempty"`
}

var builtinVocabularies = map[string]string{
	CategoryCovid19:       vocabulary.BuiltinPrefix + "covid19.tsv",
	CategorySymptoms:      vocabulary.BuiltinPrefix + "sintomas.tsv",
	CategoryComorbidities: vocabulary.BuiltinPrefix + "comorbilidades.tsv",
	CategorySampling:      vocabulary.BuiltinPrefix + "muestras.txt",
	CategoryDecease:       vocabulary.BuiltinPrefix + "defunciones.txt",
}

// DefaultVocabulary returns the builtin source of a standard category.
func DefaultVocabulary(category string) (string, bool) {
	src, ok := builtinVocabularies[category]
	return src, ok
}

// DefaultCategorySpecs returns the five standard categories. Clinical findings are
// negation filtered; sampling and decease are not. Flat cue lists scan per entry.
func DefaultCategorySpecs() []CategorySpec {
	keyed := func(name string, suffix bool) CategorySpec {
		return CategorySpec{
			Name:           name,
			Kind:           KindKeyed,
			Negation:       true,
			NegationSuffix: suffix,
			ReferenceField: DefaultReferenceField,
			ReferenceURL:   DefaultReferenceURL,
		}
	}
	return []CategorySpec{
		keyed(CategoryCovid19, false),
		keyed(CategorySymptoms, true),
		keyed(CategoryComorbidities, true),
		{Name: CategorySampling, Kind: KindFlat, Strategy: string(detector.StrategyPerEntry)},
		{Name: CategoryDecease, Kind: KindFlat, Strategy: string(detector.StrategyPerEntry)},
	}
}

// ValidateSpecs checks names, kinds and strategies without loading anything.
func ValidateSpecs(specs []CategorySpec) error {
	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return resilience.NewInvalidInputError(fmt.Sprintf("category %d has no name", i), nil)
		}
		if s.Name == FieldText {
			return resilience.NewInvalidInputError(fmt.Sprintf("category name %q is reserved", s.Name), nil)
		}
		if seen[s.Name] {
			return resilience.NewInvalidInputError(fmt.Sprintf("duplicate category %q", s.Name), nil)
		}
		seen[s.Name] = true

		if s.Kind != KindKeyed && s.Kind != KindFlat {
			return resilience.NewInvalidInputError(fmt.Sprintf("category %q: unknown kind %q", s.Name, s.Kind), nil)
		}
		if s.Strategy != "" {
			if _, err := detector.ParseStrategy(s.Strategy); err != nil {
				return fmt.Errorf("category %q: %w", s.Name, err)
			}
		}
		if s.Vocabulary == "" {
			if _, ok := DefaultVocabulary(s.Name); !ok {
				return resilience.NewInvalidInputError(fmt.Sprintf("category %q needs a vocabulary", s.Name), nil)
			}
		}
	}
	return nil
}

// LoadCategories loads the vocabulary of every spec. frames replaces the default
// negation frames when not empty. A missing vocabulary is fatal.
func LoadCategories(specs []CategorySpec, frames []string) ([]Category, error) {
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(specs))
	for _, s := range specs {
		source := s.Vocabulary
		if source == "" {
			source, _ = DefaultVocabulary(s.Name)
		}

		v, err := vocabulary.Load(s.Name, source, s.Kind == KindKeyed)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", s.Name, err)
		}

		c := Category{
			Name:           s.Name,
			Kind:           s.Kind,
			Vocabulary:     v,
			ReferenceField: s.ReferenceField,
			ReferenceURL:   s.ReferenceURL,
			Strategy:       detector.Strategy(s.Strategy),
		}
		if s.Negation {
			if c.Negation, err = buildFilter(frames, s.NegationSuffix); err != nil {
				return nil, fmt.Errorf("category %q: %w", s.Name, err)
			}
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func buildFilter(frames []string, suffix bool) (*negation.Filter, error) {
	if len(frames) == 0 {
		return negation.Default(suffix), nil
	}
	templates := append([]string(nil), frames...)
	if suffix {
		templates = append(templates, negation.SuffixFrame)
	}
	return negation.NewFilter(templates)
}
