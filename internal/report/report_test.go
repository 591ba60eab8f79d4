// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"c19-miner/internal/miner"
	"c19-miner/internal/records"
	"c19-miner/internal/vocabulary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	symptomCols = []Column{{Key: "Q38933", Name: "fiebre"}, {Key: "Q35805", Name: "tos"}, {Key: "Q188008", Name: "disnea"}}
	comorbCols  = []Column{{Key: "Q12206", Name: "diabetes"}, {Key: "Q41861", Name: "hipertensión"}}
)

func keyed(name string, buckets ...miner.Bucket) *miner.CategoryResult {
	return &miner.CategoryResult{Name: name, Kind: miner.KindKeyed, ReferenceField: "wikidata", Buckets: buckets}
}

func bucket(key string, pairs ...string) miner.Bucket {
	b := miner.Bucket{Key: key}
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Mentions = append(b.Mentions, miner.Mention{Description: pairs[i], Context: pairs[i+1]})
	}
	return b
}

func register(nhc string, covid bool) *miner.ClueSet {
	clues := miner.NewClueSet("nota " + nhc)
	clues.SetMeta(records.MetaNHC, nhc)
	clues.SetMeta(records.MetaName, "ALEX")
	clues.SetMeta(records.MetaSurname1, "MOLINA")
	clues.SetMeta(records.MetaSurname2, "VILLEGAS")
	clues.SetMeta(records.MetaAdmission, "30/03/20 15:46:20")

	if covid {
		clues.Set(keyed(miner.CategoryCovid19, bucket("Q84263196", "covid-19", "sospecha de covid-19 hoy", "covid 19", "covid 19 confirmado")))
	} else {
		clues.Set(keyed(miner.CategoryCovid19))
	}
	clues.Set(keyed(miner.CategorySymptoms,
		bucket("Q38933", "fiebre", "con fiebre alta", "fiebre", "fiebre de 39"),
		bucket("Q35805", "tos", "tos seca")))
	clues.Set(keyed(miner.CategoryComorbidities, bucket("Q12206", "diabetes", "diabetes tipo 2")))
	clues.Set(&miner.CategoryResult{Name: miner.CategorySampling, Kind: miner.KindFlat, Mentions: []miner.Mention{{Context: "prueba pcr"}}})
	clues.Set(&miner.CategoryResult{Name: miner.CategoryDecease, Kind: miner.KindFlat})
	return clues
}

func TestGenerator_Add(t *testing.T) {
	g := NewGenerator(Options{SymptomColumns: symptomCols, ComorbidityColumns: comorbCols})
	rep := &Report{SymptomColumns: symptomCols, ComorbidityColumns: comorbCols}
	require.True(t, g.Add(rep, register("507314", true)))

	require.Equal(t, 1, rep.Len())
	assert.Equal(t, SummaryRow{
		NHC:           "507314",
		Name:          "ALEX",
		Surname1:      "MOLINA",
		Surname2:      "VILLEGAS",
		AdmissionDate: "30/03/20 15:46:20",
		Service:       "Urgencias",
		Symptoms:      "fiebre\ntos",
		Diagnosis:     "COVID-19",
		Comorbidities: "diabetes",
	}, rep.Summary[0])
	assert.Equal(t, EvidenceRow{
		Symptoms:      "con fiebre alta\nfiebre de 39\ntos seca",
		Diagnosis:     "sospecha de covid-19 hoy\ncovid 19 confirmado",
		Comorbidities: "diabetes tipo 2",
		Sampling:      "prueba pcr",
	}, rep.Evidence[0])
	assert.Equal(t, []bool{true, true, false}, rep.Symptoms[0])
	assert.Equal(t, []bool{true, false}, rep.Comorbidities[0])
}

func TestGenerator_UncheckedCategories(t *testing.T) {
	g := NewGenerator(Options{SymptomColumns: symptomCols, DiagnosisNames: map[string]string{}})
	rep := &Report{}

	clues := miner.NewClueSet("x")
	clues.Set(keyed(miner.CategoryCovid19, bucket("Q999", "sars-cov-2", "sars-cov-2 positivo")))
	require.True(t, g.Add(rep, clues))

	assert.Equal(t, "sars-cov-2", rep.Summary[0].Diagnosis)
	assert.Empty(t, rep.Summary[0].NHC)
	assert.Empty(t, rep.Evidence[0].Sampling)
	assert.Equal(t, []bool{false, false, false}, rep.Symptoms[0])
}

func writeRegister(t *testing.T, dir, name string, clues *miner.ClueSet) {
	t.Helper()
	data, err := clues.MarshalJSON()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0600))
}

func TestGenerator_Build(t *testing.T) {
	dir := t.TempDir()
	writeRegister(t, dir, "NHC_2_300320.JSON", register("2", false))
	writeRegister(t, dir, "NHC_10_300320.JSON", register("10", true))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NHC_11_300320.JSON"), []byte("{"), 0600))

	refs, err := records.ExtractionRefs(dir)
	require.NoError(t, err)
	refs = append(refs, records.ParsedRef(register("99", true)))

	all := NewGenerator(Options{SymptomColumns: symptomCols, ComorbidityColumns: comorbCols}).Build(refs)
	assert.Equal(t, 3, all.Len())
	assert.Equal(t, 1, all.Skipped)
	assert.Equal(t, "2", all.Summary[0].NHC)
	assert.Equal(t, "10", all.Summary[1].NHC)
	assert.Equal(t, "99", all.Summary[2].NHC)

	onlyCovid := NewGenerator(Options{OnlyCovid: true, SymptomColumns: symptomCols}).Build(refs)
	assert.Equal(t, 2, onlyCovid.Len())
	assert.Equal(t, 1, onlyCovid.Filtered)
	assert.Equal(t, "10", onlyCovid.Summary[0].NHC)
}

func TestPictorialStacked(t *testing.T) {
	matrix := [][]bool{
		{true, false, true},
		{true, true, false},
		{false, false, true},
		{true, false, false},
	}
	assert.Equal(t, []ChartPoint{{"fiebre", 3}, {"disnea", 2}}, PictorialStacked(symptomCols, matrix, 2))
	assert.Equal(t, []ChartPoint{{"fiebre", 3}, {"disnea", 2}, {"tos", 1}}, PictorialStacked(symptomCols, matrix, 0))
	assert.Equal(t, []ChartPoint{{"fiebre", 0}, {"tos", 0}}, PictorialStacked(symptomCols[:2], nil, 5))
}

func TestWriteChartData(t *testing.T) {
	path := filepath.Join(t.TempDir(), SymptomsChartFile)
	require.NoError(t, WriteChartData(path, []ChartPoint{{"tos", 4}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []map[string]interface{}{{"name": "tos", "value": 4.0}}, back)

	empty := filepath.Join(t.TempDir(), "vacio.JSON")
	require.NoError(t, WriteChartData(empty, nil))
	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestWriteXLSX(t *testing.T) {
	g := NewGenerator(Options{SymptomColumns: symptomCols, ComorbidityColumns: comorbCols})
	rep := g.Build([]records.RegisterRef{records.ParsedRef(register("507314", true))})

	path := filepath.Join(t.TempDir(), FileName(time.Date(2020, 5, 13, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, "informe_de_covid_20200513_093000.xlsx", filepath.Base(path))
	require.NoError(t, rep.WriteXLSX(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetEvidence, SheetSymptoms, SheetComorbidities}, f.GetSheetList())

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, summaryHeaders, rows[0])
	assert.Equal(t, "507314", rows[1][0])
	assert.Equal(t, "fiebre\ntos", rows[1][6])

	rows, err = f.GetRows(SheetSymptoms)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"fiebre", "tos", "disnea"}, {"TRUE", "TRUE", "FALSE"}}, rows)

	rows, err = f.GetRows(SheetEvidence)
	require.NoError(t, err)
	assert.Equal(t, "prueba pcr", rows[1][3])
}

func TestColumnsFromVocabulary(t *testing.T) {
	v, err := vocabulary.Load("sintomas_columnas", vocabulary.BuiltinPrefix+"sintomas_columnas.tsv", true)
	require.NoError(t, err)
	cols := ColumnsFromVocabulary(v)
	require.NotEmpty(t, cols)
	assert.Equal(t, Column{Key: "Q38933", Name: "fiebre"}, cols[0])
	assert.Nil(t, ColumnsFromVocabulary(nil))
}
