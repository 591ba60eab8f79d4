// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

// Iterator yields matches lazily. Per-entry matchers yield every match of the
// first entry, then the second, and so on. An iterator is not safe for
// concurrent use; Reset restarts it and yields the same sequence again.
type Iterator struct {
	matcher *Matcher
	text    string
	seg     *segmentation

	pass  int
	pos   int
	memo  map[int]termHit
	stops []int
}

// Next returns the next match, or false when the text is exhausted.
func (it *Iterator) Next() (Match, bool) {
	for it.pass < len(it.matcher.passes) {
		if m, ok := it.find(it.matcher.passes[it.pass]); ok {
			it.pos = m.End
			return m, true
		}
		it.pass++
		it.pos = 0
		clear(it.memo)
	}
	return Match{}, false
}

// Reset rewinds the iterator to the start of the text.
func (it *Iterator) Reset() {
	it.pass = 0
	it.pos = 0
	clear(it.memo)
}

// find returns the leftmost match at or after it.pos. From each candidate start
// the leading window takes as many units as still reach a term.
func (it *Iterator) find(ts *termSet) (Match, bool) {
	seg := it.seg
	ce := it.matcher.extractor

	for start := it.pos; start < seg.len(); start = seg.runEnd(start) {
		it.stops = ce.leadingStops(seg, start, it.stops)

		for u := len(it.stops) - 1; u >= 0; u-- {
			termStart := it.stops[u]
			hit := it.termAt(ts, termStart)
			if !hit.ok {
				continue
			}

			end := ce.trailingEnd(seg, hit.end)
			alt := ts.alts[hit.alt]
			return Match{
				Key:         alt.key,
				Description: it.text[termStart:hit.end],
				Context:     FormatContext(it.text[start:end]),
				Start:       start,
				End:         end,
				TermStart:   termStart,
				TermEnd:     hit.end,
			}, true
		}
	}
	return Match{}, false
}

func (it *Iterator) termAt(ts *termSet, pos int) termHit {
	if pos >= it.seg.len() {
		return termHit{}
	}
	if hit, ok := it.memo[pos]; ok {
		return hit
	}
	hit := ts.matchAt(it.seg, pos)
	it.memo[pos] = hit
	return hit
}
