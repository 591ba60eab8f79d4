// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package miner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleClues() *ClueSet {
	c := NewClueSet("T° <38 & tos")
	c.SetMeta("NHC", "1234")
	c.SetMeta("Nombre", "ANA")
	c.Set(&CategoryResult{
		Name:           CategorySymptoms,
		Kind:           KindKeyed,
		ReferenceField: DefaultReferenceField,
		Buckets: []Bucket{
			{Key: "Q35805", Mentions: []Mention{{Description: "tos", Context: "...& tos...", Reference: "https://www.wikidata.org/wiki/Q35805"}}},
			{Key: "Q38933", Mentions: []Mention{{Description: "fiebre", Context: "...fiebre...", Reference: "https://www.wikidata.org/wiki/Q38933"}}},
		},
	})
	c.Set(&CategoryResult{Name: CategoryDecease, Kind: KindFlat, Mentions: []Mention{}})
	return c
}

func TestClueSet_MarshalKeepsOrder(t *testing.T) {
	data, err := json.Marshal(sampleClues())
	require.NoError(t, err)

	want := `{"texto":"T° <38 & tos","NHC":"1234","Nombre":"ANA",` +
		`"síntomas":{"Q35805":[{"descripción":"tos","mención":"...& tos...","wikidata":"https://www.wikidata.org/wiki/Q35805"}],` +
		`"Q38933":[{"descripción":"fiebre","mención":"...fiebre...","wikidata":"https://www.wikidata.org/wiki/Q38933"}]},` +
		`"defunciones":[]}`
	assert.Equal(t, want, string(data))
}

func TestClueSet_UnmarshalRestores(t *testing.T) {
	data, err := json.Marshal(sampleClues())
	require.NoError(t, err)

	var got ClueSet
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "T° <38 & tos", got.Text())
	assert.Equal(t, []MetaField{{Key: "NHC", Value: "1234"}, {Key: "Nombre", Value: "ANA"}}, got.MetaFields())
	assert.Equal(t, []string{CategorySymptoms, CategoryDecease}, got.Categories())

	symptoms, ok := got.Category(CategorySymptoms)
	require.True(t, ok)
	assert.Equal(t, KindKeyed, symptoms.Kind)
	assert.Equal(t, DefaultReferenceField, symptoms.ReferenceField)
	assert.Equal(t, []string{"Q35805", "Q38933"}, symptoms.Keys())

	again, err := json.Marshal(&got)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestClueSet_UnmarshalErrors(t *testing.T) {
	var c ClueSet
	assert.Error(t, json.Unmarshal([]byte(`[]`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"síntomas":{"Q1":"x"}}`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"muestreos":[1]}`), &c))
}

func TestClueSet_SetReplacesInPlace(t *testing.T) {
	c := sampleClues()
	c.Set(&CategoryResult{Name: CategorySymptoms, Kind: KindKeyed})
	c.SetMeta("NHC", "999")

	assert.Equal(t, []string{CategorySymptoms, CategoryDecease}, c.Categories())
	symptoms, _ := c.Category(CategorySymptoms)
	assert.Equal(t, 0, symptoms.Count())

	nhc, ok := c.Meta("NHC")
	assert.True(t, ok)
	assert.Equal(t, "999", nhc)
	_, ok = c.Meta("Fecha de Ingreso")
	assert.False(t, ok)
}
