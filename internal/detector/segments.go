// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"unicode/utf8"

	"c19-miner/internal/textnorm"
)

// run is a maximal stretch of word or non-word characters.
type run struct {
	start, end int
	word       bool
}

// segmentation splits a text into alternating word and non-word runs.
type segmentation struct {
	text string
	runs []run
	// at maps a byte offset to the index of the run containing it.
	at []int32
}

func segment(text string) *segmentation {
	seg := &segmentation{text: text, at: make([]int32, len(text))}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		word := textnorm.IsWord(r)

		if n := len(seg.runs); n > 0 && seg.runs[n-1].word == word {
			seg.runs[n-1].end = i + size
		} else {
			seg.runs = append(seg.runs, run{start: i, end: i + size, word: word})
		}
		idx := int32(len(seg.runs) - 1)
		for j := i; j < i+size; j++ {
			seg.at[j] = idx
		}
		i += size
	}
	return seg
}

func (s *segmentation) len() int { return len(s.text) }

// wordAt reports whether the character starting at pos is a word character.
func (s *segmentation) wordAt(pos int) bool {
	if pos < 0 || pos >= len(s.text) {
		return false
	}
	return s.runs[s.at[pos]].word
}

// wordBefore reports whether the character ending at pos is a word character.
func (s *segmentation) wordBefore(pos int) bool {
	if pos <= 0 || pos > len(s.text) {
		return false
	}
	return s.runs[s.at[pos-1]].word
}

// boundary is the \b assertion with Unicode word classes.
func (s *segmentation) boundary(pos int) bool {
	return s.wordBefore(pos) != s.wordAt(pos)
}

// runEnd returns the end of the run containing pos.
func (s *segmentation) runEnd(pos int) int {
	return s.runs[s.at[pos]].end
}
