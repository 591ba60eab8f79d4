// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"c19-miner/internal/textnorm"
)

const (
	wordClass    = `[\p{L}\p{N}_]`
	nonWordClass = `[^\p{L}\p{N}_]`

	// maxAlternatives keeps a single compiled alternation under the regexp program size limit.
	maxAlternatives = 256
)

// alternative is one surface form and the concept it resolves to.
type alternative struct {
	key     string
	form    string
	pattern bool
}

// termHit is the outcome of matching a term set at one position.
type termHit struct {
	alt int
	end int
	ok  bool
}

// block is a run of consecutive alternatives tried as one unit. Blocks are
// tried in order so the first listed alternative wins at a given position.
type block interface {
	matchAt(seg *segmentation, pos int) termHit
}

// termSet is the compiled form of a list of alternatives.
type termSet struct {
	alts   []alternative
	blocks []block
}

// literalBlock matches escaped surface forms. Alternatives are split by the class
// of their first character, since only one class can start a term at a position.
// The trailing boundary is encoded in the pattern itself and the term end is
// taken from the alternative's group.
type literalBlock struct {
	wordInitial  *groupedRegexp
	otherInitial *groupedRegexp
}

type groupedRegexp struct {
	re *regexp.Regexp
	// groups[i] is the alternative index of capture group i, -1 when unused.
	groups []int
}

// patternBlock matches one raw pattern. The plain form gives the preferred end.
// When that end is not a word boundary, the bounded forms let the regexp pick
// an end that is: endWord for terms ending in a word character, endOther for
// terms ending in anything else. The term end is capture group 1 in both.
// As a last resort shorter boundary ends are tried with the whole form.
type patternBlock struct {
	alt      int
	re       *regexp.Regexp
	endWord  *regexp.Regexp
	endOther *regexp.Regexp
	whole    *regexp.Regexp
}

func compileTermSet(vocabularyName string, alts []alternative) (*termSet, error) {
	ts := &termSet{alts: alts}

	var pending []int
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		b, err := compileLiteralBlock(alts, pending)
		if err != nil {
			return &PatternCompileError{Vocabulary: vocabularyName, Err: err}
		}
		ts.blocks = append(ts.blocks, b)
		pending = pending[:0]
		return nil
	}

	for i, alt := range alts {
		if !alt.pattern {
			pending = append(pending, i)
			if len(pending) == maxAlternatives {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		b, err := compilePatternBlock(i, alt.form)
		if err != nil {
			return nil, &PatternCompileError{Vocabulary: vocabularyName, Form: alt.form, Err: err}
		}
		ts.blocks = append(ts.blocks, b)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return ts, nil
}

func compilePatternBlock(alt int, form string) (*patternBlock, error) {
	re, err := regexp.Compile(`\A(?:` + form + `)`)
	if err != nil {
		return nil, err
	}
	b := &patternBlock{alt: alt, re: re}
	if b.endWord, err = regexp.Compile(`\A(` + form + `)(?:` + nonWordClass + `|\z)`); err != nil {
		return nil, err
	}
	if b.endOther, err = regexp.Compile(`\A(` + form + `)` + wordClass); err != nil {
		return nil, err
	}
	if b.whole, err = regexp.Compile(`\A(?:` + form + `)\z`); err != nil {
		return nil, err
	}
	return b, nil
}

func compileLiteralBlock(alts []alternative, indexes []int) (*literalBlock, error) {
	var wordIdx, otherIdx []int
	for _, i := range indexes {
		first, _ := utf8.DecodeRuneInString(alts[i].form)
		if textnorm.IsWord(first) {
			wordIdx = append(wordIdx, i)
		} else {
			otherIdx = append(otherIdx, i)
		}
	}

	b := &literalBlock{}
	var err error
	if b.wordInitial, err = compileGrouped(alts, wordIdx); err != nil {
		return nil, err
	}
	if b.otherInitial, err = compileGrouped(alts, otherIdx); err != nil {
		return nil, err
	}
	return b, nil
}

func compileGrouped(alts []alternative, indexes []int) (*groupedRegexp, error) {
	if len(indexes) == 0 {
		return nil, nil
	}

	parts := make([]string, 0, len(indexes))
	for _, i := range indexes {
		form := alts[i].form
		last, _ := utf8.DecodeLastRuneInString(form)
		boundary := `(?:` + nonWordClass + `|\z)`
		if !textnorm.IsWord(last) {
			boundary = wordClass
		}
		parts = append(parts, fmt.Sprintf("(?P<t%d>%s)%s", i, regexp.QuoteMeta(form), boundary))
	}

	re, err := regexp.Compile(`\A(?:` + strings.Join(parts, "|") + `)`)
	if err != nil {
		return nil, err
	}

	names := re.SubexpNames()
	groups := make([]int, len(names))
	for g, name := range names {
		groups[g] = -1
		var alt int
		if _, scanErr := fmt.Sscanf(name, "t%d", &alt); scanErr == nil {
			groups[g] = alt
		}
	}
	return &groupedRegexp{re: re, groups: groups}, nil
}

func (b *literalBlock) matchAt(seg *segmentation, pos int) termHit {
	g := b.wordInitial
	if seg.wordBefore(pos) {
		g = b.otherInitial
	}
	if g == nil {
		return termHit{}
	}

	loc := g.re.FindStringSubmatchIndex(seg.text[pos:])
	if loc == nil {
		return termHit{}
	}
	for grp := 1; grp < len(g.groups); grp++ {
		if g.groups[grp] >= 0 && loc[2*grp] >= 0 {
			return termHit{alt: g.groups[grp], end: pos + loc[2*grp+1], ok: true}
		}
	}
	return termHit{}
}

func (b *patternBlock) matchAt(seg *segmentation, pos int) termHit {
	if !seg.boundary(pos) {
		return termHit{}
	}
	rest := seg.text[pos:]
	loc := b.re.FindStringIndex(rest)
	if loc == nil {
		return termHit{}
	}
	if end := pos + loc[1]; loc[1] > 0 && seg.boundary(end) {
		return termHit{alt: b.alt, end: end, ok: true}
	}

	if loc := b.endWord.FindStringSubmatchIndex(rest); loc != nil && loc[3] > 0 && seg.wordBefore(pos+loc[3]) {
		return termHit{alt: b.alt, end: pos + loc[3], ok: true}
	}
	if loc := b.endOther.FindStringSubmatchIndex(rest); loc != nil && loc[3] > 0 && !seg.wordBefore(pos+loc[3]) {
		return termHit{alt: b.alt, end: pos + loc[3], ok: true}
	}
	for end := loc[1] - 1; end > 0; end-- {
		if seg.boundary(pos+end) && b.whole.MatchString(rest[:end]) {
			return termHit{alt: b.alt, end: pos + end, ok: true}
		}
	}
	return termHit{}
}

// matchAt returns the first alternative, in list order, that matches at pos
// as a whole term.
func (ts *termSet) matchAt(seg *segmentation, pos int) termHit {
	for _, b := range ts.blocks {
		if hit := b.matchAt(seg, pos); hit.ok {
			return hit
		}
	}
	return termHit{}
}
