// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package vocabulary holds the controlled term lists the miner matches against:
// ordered (concept key, surface form) pairs for keyed categories and plain cue
// words for flat ones.
package vocabulary

import "strings"

// PatternPrefix marks a surface form that is an intentional pattern and must not be escaped.
const PatternPrefix = "re:"

// Pair is one (concept key, surface form) row.
type Pair struct {
	Key  string
	Form string
	// Pattern is set when the form was written as a raw pattern in the source file.
	Pattern bool
}

// Vocabulary is an ordered, immutable set of pairs. It is safe for concurrent use.
type Vocabulary struct {
	name   string
	pairs  []Pair
	keys   []string
	forms  map[string][]string
	byForm map[string]string
}

// New builds a vocabulary from ordered pairs. Rows with an empty form are dropped.
func New(name string, pairs []Pair) *Vocabulary {
	v := &Vocabulary{
		name:   name,
		pairs:  make([]Pair, 0, len(pairs)),
		forms:  make(map[string][]string),
		byForm: make(map[string]string),
	}
	for _, p := range pairs {
		if p.Form == "" {
			continue
		}
		if strings.HasPrefix(p.Form, PatternPrefix) {
			p.Form = strings.TrimPrefix(p.Form, PatternPrefix)
			p.Pattern = true
		}
		v.pairs = append(v.pairs, p)
		if _, seen := v.forms[p.Key]; !seen {
			v.keys = append(v.keys, p.Key)
		}
		v.forms[p.Key] = append(v.forms[p.Key], p.Form)
		if _, dup := v.byForm[p.Form]; !dup {
			v.byForm[p.Form] = p.Key
		}
	}
	return v
}

// NewCues builds a flat vocabulary where every cue word is its own key.
func NewCues(name string, cues []string) *Vocabulary {
	pairs := make([]Pair, 0, len(cues))
	for _, c := range cues {
		pairs = append(pairs, Pair{Key: c, Form: c})
	}
	return New(name, pairs)
}

// Name returns the vocabulary name used in error messages.
func (v *Vocabulary) Name() string { return v.name }

// Len returns the number of pairs.
func (v *Vocabulary) Len() int { return len(v.pairs) }

// Pairs returns a copy of the ordered pairs.
func (v *Vocabulary) Pairs() []Pair {
	out := make([]Pair, len(v.pairs))
	copy(out, v.pairs)
	return out
}

// Keys returns concept keys in first-seen order.
func (v *Vocabulary) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Forms returns the surface forms of key in file order.
func (v *Vocabulary) Forms(key string) []string {
	forms := v.forms[key]
	out := make([]string, len(forms))
	copy(out, forms)
	return out
}

// KeyFor resolves a surface form to the first key that lists it.
func (v *Vocabulary) KeyFor(form string) (string, bool) {
	key, ok := v.byForm[form]
	return key, ok
}
