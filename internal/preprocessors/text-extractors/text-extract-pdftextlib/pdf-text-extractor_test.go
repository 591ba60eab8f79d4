// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTextPreservingStructure(t *testing.T) {
	in := "  Paciente\tcon   fiebre \n\n   \n refiere  tos  "
	assert.Equal(t, "Paciente con fiebre\nrefiere tos", cleanTextPreservingStructure(in))
}

func TestJoinHyphenatedLines(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"insuficien-\ncia respiratoria", "insuficiencia respiratoria"},
		{"covid-\n19 positivo", "covid-\n19 positivo"},
		{"Antecedentes:\nDM2 e HAS", "Antecedentes:\nDM2 e HAS"},
		{"termina en guion -\nsigue", "termina en guion -\nsigue"},
		{"MAYÚS-\nCULAS", "MAYÚS-\nCULAS"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinHyphenatedLines(tt.in), tt.in)
	}
}

func TestReconstructRowText(t *testing.T) {
	row := []pdf.Text{
		{S: "fiebre", X: 40, W: 30, FontSize: 10},
		{S: "con", X: 0, W: 18, FontSize: 10},
		{S: "alta", X: 70.5, W: 20, FontSize: 10},
	}
	// "con" ends at 18, far from "fiebre"; "alta" starts right after "fiebre"
	assert.Equal(t, "con fiebrealta", reconstructRowText(row))
	assert.Equal(t, "", reconstructRowText(nil))
}

func TestGetAverageY(t *testing.T) {
	assert.Equal(t, 0.0, getAverageY(nil))
	assert.Equal(t, 15.0, getAverageY([]pdf.Text{{Y: 10}, {Y: 20}}))
}

func TestExtractText_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0600))

	content, err := ExtractText(path, DefaultMaxPages)
	assert.Error(t, err)
	assert.Equal(t, "x.pdf", content.Filename)
}
