// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"errors"
	"testing"

	"c19-miner/internal/resilience"
	"c19-miner/internal/textnorm"
	"c19-miner/internal/vocabulary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, pairs []vocabulary.Pair, opts Options) *Matcher {
	t.Helper()
	m, err := Compile(vocabulary.New("test", pairs), opts)
	require.NoError(t, err)
	return m
}

func contexts(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Context)
	}
	return out
}

var diseases = []vocabulary.Pair{
	{Key: "Q1", Form: "covid-19"},
	{Key: "Q2", Form: "neumonía"},
}

func TestScan_DiseaseScenario(t *testing.T) {
	text := "paciente con sospecha de covid-19 el día de hoy"

	for _, strategy := range []Strategy{StrategyAlternation, StrategyPerEntry} {
		t.Run(string(strategy), func(t *testing.T) {
			m := compile(t, diseases, Options{Window: 5, Strategy: strategy, Escape: true})

			matches := m.All(text)
			require.Len(t, matches, 1)
			assert.Equal(t, "Q1", matches[0].Key)
			assert.Equal(t, "covid-19", matches[0].Description)
			assert.Equal(t, "...paciente con sospecha de covid-19 el día de hoy...", matches[0].Context)
		})
	}
}

func TestScan_WindowSize(t *testing.T) {
	text := "paciente con sospecha de covid-19 el día de hoy"

	tests := []struct {
		window int
		want   string
	}{
		{0, "...covid-19..."},
		{1, "...de covid-19 el..."},
		{2, "...sospecha de covid-19 el día..."},
		{6, "...paciente con sospecha de covid-19 el día de hoy..."},
	}

	for _, tt := range tests {
		m := compile(t, diseases, Options{Window: tt.window, Strategy: StrategyAlternation, Escape: true})
		matches := m.All(text)
		require.Len(t, matches, 1, "window %d", tt.window)
		assert.Equal(t, tt.want, matches[0].Context, "window %d", tt.window)
	}
}

func TestScan_ConsumedTermNotReportedAgain(t *testing.T) {
	m := compile(t, []vocabulary.Pair{{Key: "Q38933", Form: "fiebre"}}, Options{Window: 5, Strategy: StrategyAlternation, Escape: true})

	matches := m.All("fiebre y fiebre alta")
	require.Len(t, matches, 1)
	assert.Equal(t, "...fiebre y fiebre alta...", matches[0].Context)
	assert.Equal(t, 9, matches[0].TermStart)
}

func TestScan_OrderPreserved(t *testing.T) {
	m := compile(t, []vocabulary.Pair{{Key: "Q38933", Form: "fiebre"}}, Options{Window: 2, Strategy: StrategyPerEntry, Escape: true})

	matches := m.All("fiebre uno dos tres cuatro cinco seis siete fiebre")
	require.Len(t, matches, 2)
	assert.Equal(t, []string{"...fiebre uno dos...", "...seis siete fiebre..."}, contexts(matches))
	assert.Less(t, matches[0].TermStart, matches[1].TermStart)
}

func TestScan_FlattensNewlines(t *testing.T) {
	m := compile(t, []vocabulary.Pair{{Key: "Q38933", Form: "fiebre"}}, Options{Window: 5, Strategy: StrategyAlternation, Escape: true})

	matches := m.All("paciente con\nfiebre alta")
	require.Len(t, matches, 1)
	assert.Equal(t, "...paciente con fiebre alta...", matches[0].Context)
}

func TestScan_TrailingPunctuation(t *testing.T) {
	m := compile(t, []vocabulary.Pair{{Key: "Q35805", Form: "tos"}}, Options{Window: 5, Strategy: StrategyAlternation, Escape: true})

	matches := m.All("fiebre,   tos.")
	require.Len(t, matches, 1)
	assert.Equal(t, "...fiebre,   tos...", matches[0].Context)
}

func TestScan_UnicodeWordBoundaries(t *testing.T) {
	m := compile(t, []vocabulary.Pair{{Key: "X", Form: "ni"}, {Key: "Y", Form: "niño"}}, Options{Window: 1, Strategy: StrategyPerEntry, Escape: true})

	matches := m.All("el niño tose")
	require.Len(t, matches, 1)
	assert.Equal(t, "Y", matches[0].Key)
	assert.Equal(t, "...el niño tose...", matches[0].Context)
}

func TestScan_FormsAreLowercased(t *testing.T) {
	m := compile(t, []vocabulary.Pair{{Key: "Q1", Form: "COVID-19"}}, Options{Window: 1, Strategy: StrategyAlternation, Escape: true})

	matches := m.All("caso covid-19 confirmado")
	require.Len(t, matches, 1)
	assert.Equal(t, "covid-19", matches[0].Description)
}

func TestScan_TieBreak(t *testing.T) {
	text := "tos seca"

	shortFirst := []vocabulary.Pair{{Key: "A", Form: "tos"}, {Key: "B", Form: "tos seca"}}
	longFirst := []vocabulary.Pair{{Key: "B", Form: "tos seca"}, {Key: "A", Form: "tos"}}

	m := compile(t, shortFirst, Options{Window: 5, Strategy: StrategyAlternation, Escape: true})
	matches := m.All(text)
	require.Len(t, matches, 1)
	assert.Equal(t, "A", matches[0].Key)
	assert.Equal(t, "tos", matches[0].Description)

	m = compile(t, longFirst, Options{Window: 5, Strategy: StrategyAlternation, Escape: true})
	matches = m.All(text)
	require.Len(t, matches, 1)
	assert.Equal(t, "B", matches[0].Key)
	assert.Equal(t, "tos seca", matches[0].Description)

	// Per-entry scans are independent, so both entries report.
	m = compile(t, shortFirst, Options{Window: 5, Strategy: StrategyPerEntry, Escape: true})
	matches = m.All(text)
	require.Len(t, matches, 2)
	assert.Equal(t, "A", matches[0].Key)
	assert.Equal(t, "B", matches[1].Key)
}

func TestScan_PerEntryOrder(t *testing.T) {
	pairs := []vocabulary.Pair{{Key: "Q35805", Form: "tos"}, {Key: "Q38933", Form: "fiebre"}}
	m := compile(t, pairs, Options{Window: 0, Strategy: StrategyPerEntry, Escape: true})

	matches := m.All("fiebre y tos")
	require.Len(t, matches, 2)
	assert.Equal(t, "Q35805", matches[0].Key)
	assert.Equal(t, "Q38933", matches[1].Key)
}

func TestScan_Escaping(t *testing.T) {
	pairs := []vocabulary.Pair{{Key: "Q", Form: "c.v"}}
	text := "valor cxv normal"

	escaped := compile(t, pairs, Options{Window: 1, Strategy: StrategyAlternation, Escape: true})
	assert.Empty(t, escaped.All(text))

	raw := compile(t, pairs, Options{Window: 1, Strategy: StrategyAlternation, Escape: false})
	matches := raw.All(text)
	require.Len(t, matches, 1)
	assert.Equal(t, "cxv", matches[0].Description)
}

func TestScan_PatternEntries(t *testing.T) {
	pairs := []vocabulary.Pair{{Key: "Q1", Form: "re:covid-?19"}, {Key: "Q2", Form: "neumonía"}}
	m := compile(t, pairs, Options{Window: 0, Strategy: StrategyAlternation, Escape: true})

	matches := m.All("covid19, covid-19 y neumonía")
	require.Len(t, matches, 3)
	assert.Equal(t, []string{"covid19", "covid-19", "neumonía"}, []string{matches[0].Description, matches[1].Description, matches[2].Description})
	assert.Equal(t, "Q2", matches[2].Key)
}

func TestScan_PatternBacktracksToBoundary(t *testing.T) {
	pairs := []vocabulary.Pair{{Key: "Q86", Form: "re:dolor( de cabeza)?"}}
	m := compile(t, pairs, Options{Window: 2, Strategy: StrategyAlternation, Escape: true})

	matches := m.All("dolor de cabezas intenso")
	require.Len(t, matches, 1)
	assert.Equal(t, "dolor", matches[0].Description)
	assert.Equal(t, "...dolor de cabezas...", matches[0].Context)

	matches = m.All("dolor de cabeza intenso")
	require.Len(t, matches, 1)
	assert.Equal(t, "dolor de cabeza", matches[0].Description)
}

func TestScan_PatternEndingInPunctuation(t *testing.T) {
	pairs := []vocabulary.Pair{{Key: "Q", Form: `re:pcr(\+)?`}}
	m := compile(t, pairs, Options{Window: 0, Strategy: StrategyPerEntry, Escape: true})

	// "pcr+" ends on a boundary only when a word follows; otherwise the term is "pcr".
	matches := m.All("pcr+x y pcr+ negativa")
	require.Len(t, matches, 2)
	assert.Equal(t, "pcr+", matches[0].Description)
	assert.Equal(t, "pcr", matches[1].Description)
}

func TestScan_TokenizedForms(t *testing.T) {
	norm := textnorm.Options{NFC: true, Tokenize: true}
	pairs := []vocabulary.Pair{{Key: "Q84263196", Form: "Covid (SARS) positivo"}}
	text := textnorm.Normalize("Paciente COVID (SARS) positivo, aislado", norm)

	plain := compile(t, pairs, Options{Window: 0, Strategy: StrategyAlternation, Escape: true})
	assert.Empty(t, plain.All(text))

	m := compile(t, pairs, Options{Window: 0, Strategy: StrategyAlternation, Escape: true, Normalize: norm})
	matches := m.All(text)
	require.Len(t, matches, 1)
	assert.Equal(t, "covid ( sars ) positivo", matches[0].Description)
}

func TestScan_NoMatches(t *testing.T) {
	m := compile(t, diseases, Options{Window: 5, Strategy: StrategyAlternation, Escape: true})
	assert.Empty(t, m.All("paciente estable sin datos relevantes"))
	assert.Empty(t, m.All(""))
}

func TestIterator_Restartable(t *testing.T) {
	m := compile(t, []vocabulary.Pair{{Key: "Q38933", Form: "fiebre"}}, Options{Window: 1, Strategy: StrategyAlternation, Escape: true})
	it := m.Scan("fiebre hoy. ayer fiebre")

	var first []Match
	for match, ok := it.Next(); ok; match, ok = it.Next() {
		first = append(first, match)
	}
	it.Reset()
	var second []Match
	for match, ok := it.Next(); ok; match, ok = it.Next() {
		second = append(second, match)
	}

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestMatch_ContextOf(t *testing.T) {
	text := "con fiebre alta"
	m := compile(t, []vocabulary.Pair{{Key: "Q38933", Form: "fiebre"}}, Options{Window: 1, Strategy: StrategyAlternation, Escape: true})

	matches := m.All(text)
	require.Len(t, matches, 1)
	assert.Equal(t, ContextInfo{BeforeText: "con ", Term: "fiebre", AfterText: " alta"}, matches[0].ContextOf(text))
	assert.Equal(t, text, matches[0].Span(text))
}

func TestCompile_Errors(t *testing.T) {
	v := vocabulary.New("síntomas", []vocabulary.Pair{{Key: "Q1", Form: "fiebre("}})

	_, err := Compile(v, Options{Window: 5, Strategy: StrategyAlternation, Escape: false})
	require.Error(t, err)

	var pce *PatternCompileError
	require.True(t, errors.As(err, &pce))
	assert.Equal(t, "síntomas", pce.Vocabulary)
	assert.Equal(t, "fiebre(", pce.Form)
	assert.Equal(t, resilience.ErrorTypePatternCompile, resilience.TypeOf(err))
	assert.Contains(t, err.Error(), "síntomas")

	_, err = Compile(v, Options{Window: 5, Strategy: StrategyAlternation, Escape: true})
	assert.NoError(t, err)

	_, err = Compile(v, Options{Window: -1, Strategy: StrategyAlternation, Escape: true})
	assert.Equal(t, resilience.ErrorTypeInvalidInput, resilience.TypeOf(err))

	_, err = Compile(v, Options{Window: 5, Strategy: "fastest", Escape: true})
	assert.Equal(t, resilience.ErrorTypeInvalidInput, resilience.TypeOf(err))
}

func TestCompile_LargeVocabulary(t *testing.T) {
	var pairs []vocabulary.Pair
	for i := 0; i < 3*maxAlternatives; i++ {
		pairs = append(pairs, vocabulary.Pair{Key: "K", Form: "término" + string(rune('a'+i%26)) + string(rune('a'+i/26%26))})
	}
	pairs = append(pairs, vocabulary.Pair{Key: "LAST", Form: "disnea"})

	m := compile(t, pairs, Options{Window: 1, Strategy: StrategyAlternation, Escape: true})
	matches := m.All("refiere disnea leve")
	require.Len(t, matches, 1)
	assert.Equal(t, "LAST", matches[0].Key)
}
