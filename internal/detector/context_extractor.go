// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

// ContextExtractor measures the word window around a term. A unit before the
// term is a whole word followed by its whole run of separators; a unit after
// the term is a whole run of separators followed by a whole word.
type ContextExtractor struct {
	// Window is the maximum number of units on each side.
	Window int
}

// NewContextExtractor creates a context extractor for the given window size
func NewContextExtractor(window int) *ContextExtractor {
	return &ContextExtractor{Window: window}
}

// leadingStops returns the positions reachable from start by consuming
// 0, 1, ... up to Window leading units. stops[u] is the position after u units.
func (ce *ContextExtractor) leadingStops(seg *segmentation, start int, stops []int) []int {
	stops = append(stops[:0], start)
	pos := start
	for len(stops)-1 < ce.Window {
		if !seg.wordAt(pos) {
			break
		}
		wordEnd := seg.runEnd(pos)
		if wordEnd >= seg.len() {
			break
		}
		pos = seg.runEnd(wordEnd)
		stops = append(stops, pos)
	}
	return stops
}

// trailingEnd consumes up to Window trailing units after a term ending at end.
func (ce *ContextExtractor) trailingEnd(seg *segmentation, end int) int {
	pos := end
	for i := 0; i < ce.Window; i++ {
		if pos >= seg.len() || seg.wordAt(pos) {
			break
		}
		sepEnd := seg.runEnd(pos)
		if sepEnd >= seg.len() {
			break
		}
		pos = seg.runEnd(sepEnd)
	}
	return pos
}
