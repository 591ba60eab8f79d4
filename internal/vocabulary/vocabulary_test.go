// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package vocabulary

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"c19-miner/internal/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPairs(t *testing.T) {
	input := "id\tname\r\nQ1\tcovid-19\n\nQ2\tneumonía\nQ1\tsars-cov-2\n"

	pairs, err := ReadPairs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Key: "Q1", Form: "covid-19"},
		{Key: "Q2", Form: "neumonía"},
		{Key: "Q1", Form: "sars-cov-2"},
	}, pairs)
}

func TestReadPairs_ColumnOrder(t *testing.T) {
	pairs, err := ReadPairs(strings.NewReader("name\tnotes\tid\nfiebre\tx\tQ38933\n"))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Key: "Q38933", Form: "fiebre"}}, pairs)
}

func TestReadPairs_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no header", ""},
		{"bad header", "key\tform\nQ1\tx\n"},
		{"short row", "id\tname\nQ1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPairs(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, resilience.ErrorTypeInvalidInput, resilience.TypeOf(err))
		})
	}
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("\ufeffprueba pcr\r\n\nhisopado\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"prueba pcr", "hisopado"}, lines)
}

func TestLoad_Builtins(t *testing.T) {
	tests := []struct {
		source string
		keyed  bool
	}{
		{"builtin:covid19.tsv", true},
		{"builtin:sintomas.tsv", true},
		{"builtin:comorbilidades.tsv", true},
		{"builtin:muestras.txt", false},
		{"builtin:defunciones.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			v, err := Load("test", tt.source, tt.keyed)
			require.NoError(t, err)
			assert.Greater(t, v.Len(), 0)
		})
	}

	assert.Contains(t, Builtins(), "sintomas.tsv")
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enf.tsv")
	require.NoError(t, os.WriteFile(path, []byte("id\tname\nQ1\tcovid-19\nQ2\tneumonía\n"), 0600))

	v, err := Load("enfermedades", path, true)
	require.NoError(t, err)
	assert.Equal(t, "enfermedades", v.Name())
	assert.Equal(t, []string{"Q1", "Q2"}, v.Keys())
}

func TestLoad_Missing(t *testing.T) {
	for _, source := range []string{"", "builtin:nope.tsv", filepath.Join(t.TempDir(), "nope.tsv")} {
		_, err := Load("x", source, true)
		require.Error(t, err, source)
		assert.True(t, errors.Is(err, fs.ErrNotExist), source)
		assert.Equal(t, resilience.ErrorTypeResourceMissing, resilience.TypeOf(err), source)
	}
}

func TestVocabulary_Lookups(t *testing.T) {
	v := New("síntomas", []Pair{
		{Key: "Q38933", Form: "fiebre"},
		{Key: "Q35805", Form: "tos"},
		{Key: "Q38933", Form: "febril"},
		{Key: "Q35805", Form: ""},
		{Key: "Q9", Form: "re:tos\\s+seca"},
	})

	assert.Equal(t, 4, v.Len())
	assert.Equal(t, []string{"Q38933", "Q35805", "Q9"}, v.Keys())
	assert.Equal(t, []string{"fiebre", "febril"}, v.Forms("Q38933"))

	key, ok := v.KeyFor("febril")
	assert.True(t, ok)
	assert.Equal(t, "Q38933", key)

	_, ok = v.KeyFor("disnea")
	assert.False(t, ok)

	last := v.Pairs()[3]
	assert.True(t, last.Pattern)
	assert.Equal(t, "tos\\s+seca", last.Form)
}

func TestNewCues(t *testing.T) {
	v := NewCues("muestreos", []string{"prueba pcr", "hisopado"})
	assert.Equal(t, []string{"prueba pcr", "hisopado"}, v.Keys())
	assert.Equal(t, []string{"prueba pcr"}, v.Forms("prueba pcr"))
}
