// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"strings"

	"c19-miner/internal/miner"
	"c19-miner/internal/observability"
	"c19-miner/internal/records"
	"c19-miner/internal/resilience"
	"c19-miner/internal/vocabulary"
)

// DefaultService fills the "Servicio" column; every register comes from the
// emergency room export.
const DefaultService = "Urgencias"

// DefaultDiagnosisNames maps COVID-19 concept keys to the name shown in the summary.
var DefaultDiagnosisNames = map[string]string{
	"Q84263196": "COVID-19",
}

// Column is one boolean column of a matrix sheet
type Column struct {
	Key  string
	Name string
}

// ColumnsFromVocabulary takes one column per key, named after its first form.
func ColumnsFromVocabulary(v *vocabulary.Vocabulary) []Column {
	if v == nil {
		return nil
	}
	keys := v.Keys()
	cols := make([]Column, 0, len(keys))
	for _, k := range keys {
		name := k
		if forms := v.Forms(k); len(forms) > 0 {
			name = forms[0]
		}
		cols = append(cols, Column{Key: k, Name: name})
	}
	return cols
}

// Options configure a Generator
type Options struct {
	OnlyCovid          bool
	Service            string
	DiagnosisNames     map[string]string
	SymptomColumns     []Column
	ComorbidityColumns []Column
	Observer           *observability.StandardObserver
}

// SummaryRow is one line of the "Concentrado" sheet
type SummaryRow struct {
	NHC           string
	Name          string
	Surname1      string
	Surname2      string
	AdmissionDate string
	Service       string
	Symptoms      string
	Diagnosis     string
	Comorbidities string
}

// EvidenceRow is one line of the "Evidencia" sheet
type EvidenceRow struct {
	Symptoms      string
	Diagnosis     string
	Comorbidities string
	Sampling      string
	Decease       string
}

// Report holds the rows of every sheet, one entry per included register
type Report struct {
	Summary            []SummaryRow
	Evidence           []EvidenceRow
	SymptomColumns     []Column
	ComorbidityColumns []Column
	Symptoms           [][]bool
	Comorbidities      [][]bool
	Skipped            int
	Filtered           int
}

// Len returns the number of registers in the report
func (r *Report) Len() int { return len(r.Summary) }

// Generator turns extraction results into report rows
type Generator struct {
	opts Options
}

// NewGenerator creates a report generator
func NewGenerator(opts Options) *Generator {
	if opts.Service == "" {
		opts.Service = DefaultService
	}
	if opts.DiagnosisNames == nil {
		opts.DiagnosisNames = DefaultDiagnosisNames
	}
	return &Generator{opts: opts}
}

// Build resolves every register once and adds it to the report. Registers
// that cannot be read are skipped and counted; the report goes on.
func (g *Generator) Build(refs []records.RegisterRef) *Report {
	var finishTiming func(bool, map[string]interface{})
	if g.opts.Observer != nil {
		finishTiming = g.opts.Observer.StartTiming("report", "build", "")
	}

	rep := &Report{
		SymptomColumns:     g.opts.SymptomColumns,
		ComorbidityColumns: g.opts.ComorbidityColumns,
	}
	for _, ref := range refs {
		clues, err := ref.Resolve()
		if err != nil {
			rep.Skipped++
			g.opts.Observer.RecordSkipped("report", ref.Label(), resilience.NewRecordSkippedError("unreadable register", err))
			continue
		}
		if !g.Add(rep, clues) {
			rep.Filtered++
		}
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"registers": rep.Len(),
			"skipped":   rep.Skipped,
			"filtered":  rep.Filtered,
		})
	}
	return rep
}

// Add appends one register. It returns false when the only-COVID filter drops it.
func (g *Generator) Add(rep *Report, clues *miner.ClueSet) bool {
	covid := categoryOf(clues, miner.CategoryCovid19)
	if g.opts.OnlyCovid && covid.Count() == 0 {
		return false
	}
	symptoms := categoryOf(clues, miner.CategorySymptoms)
	comorbs := categoryOf(clues, miner.CategoryComorbidities)

	meta := func(key string) string {
		v, _ := clues.Meta(key)
		return v
	}

	rep.Summary = append(rep.Summary, SummaryRow{
		NHC:           meta(records.MetaNHC),
		Name:          meta(records.MetaName),
		Surname1:      meta(records.MetaSurname1),
		Surname2:      meta(records.MetaSurname2),
		AdmissionDate: meta(records.MetaAdmission),
		Service:       g.opts.Service,
		Symptoms:      joinLines(descriptions(symptoms)),
		Diagnosis:     joinLines(g.diagnoses(covid)),
		Comorbidities: joinLines(descriptions(comorbs)),
	})
	rep.Evidence = append(rep.Evidence, EvidenceRow{
		Symptoms:      joinLines(contexts(symptoms)),
		Diagnosis:     joinLines(contexts(covid)),
		Comorbidities: joinLines(contexts(comorbs)),
		Sampling:      joinLines(contexts(categoryOf(clues, miner.CategorySampling))),
		Decease:       joinLines(contexts(categoryOf(clues, miner.CategoryDecease))),
	})
	rep.Symptoms = append(rep.Symptoms, presence(symptoms, g.opts.SymptomColumns))
	rep.Comorbidities = append(rep.Comorbidities, presence(comorbs, g.opts.ComorbidityColumns))
	return true
}

// diagnoses lists one display name per distinct COVID-19 concept
func (g *Generator) diagnoses(covid *miner.CategoryResult) []string {
	var out []string
	for _, b := range covid.Buckets {
		name, ok := g.opts.DiagnosisNames[b.Key]
		if !ok && len(b.Mentions) > 0 {
			name = b.Mentions[0].Description
		}
		if name == "" {
			name = b.Key
		}
		out = appendUnique(out, name)
	}
	return out
}

// categoryOf returns an empty result for a category the register never checked
func categoryOf(clues *miner.ClueSet, name string) *miner.CategoryResult {
	if r, ok := clues.Category(name); ok {
		return r
	}
	return &miner.CategoryResult{Name: name}
}

// descriptions lists the distinct descriptions of a keyed category in first-seen order
func descriptions(r *miner.CategoryResult) []string {
	var out []string
	for _, b := range r.Buckets {
		for _, m := range b.Mentions {
			out = appendUnique(out, m.Description)
		}
	}
	return out
}

func contexts(r *miner.CategoryResult) []string {
	var out []string
	for _, b := range r.Buckets {
		for _, m := range b.Mentions {
			out = append(out, m.Context)
		}
	}
	for _, m := range r.Mentions {
		out = append(out, m.Context)
	}
	return out
}

func presence(r *miner.CategoryResult, cols []Column) []bool {
	row := make([]bool, len(cols))
	for i, c := range cols {
		_, row[i] = r.Bucket(c.Key)
	}
	return row
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
