// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook
const (
	SheetSummary       = "Concentrado"
	SheetEvidence      = "Evidencia"
	SheetSymptoms      = "síntomas"
	SheetComorbidities = "Comorbilidad"
)

var (
	summaryHeaders = []string{
		"NHC", "Nombre (s)", "Apellido paterno", "Apellido Materno", "Fecha de Ingreso",
		"Servicio", "Síntomas", "Diagnóstico COVID-19", "Comorbilidad",
	}
	evidenceHeaders = []string{
		"Menciones Síntomas", "Menciones Diagnóstico", "Menciones Comorbilidad",
		"Menciones Pruebas", "Menciones Defunción",
	}
)

// FileName names a workbook after its creation time
func FileName(now time.Time) string {
	return "informe_de_covid_" + now.Format("20060102_150405") + ".xlsx"
}

// Workbook lays the report out on four sheets. The caller closes the file.
func (r *Report) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		f.Close()
		return nil, err
	}

	summary := make([][]interface{}, len(r.Summary))
	for i, s := range r.Summary {
		summary[i] = []interface{}{
			s.NHC, s.Name, s.Surname1, s.Surname2, s.AdmissionDate,
			s.Service, s.Symptoms, s.Diagnosis, s.Comorbidities,
		}
	}
	evidence := make([][]interface{}, len(r.Evidence))
	for i, e := range r.Evidence {
		evidence[i] = []interface{}{e.Symptoms, e.Diagnosis, e.Comorbidities, e.Sampling, e.Decease}
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
		width   float64
	}{
		{SheetSummary, summaryHeaders, summary, 30},
		{SheetEvidence, evidenceHeaders, evidence, 40},
		{SheetSymptoms, columnNames(r.SymptomColumns), boolRows(r.Symptoms), 0},
		{SheetComorbidities, columnNames(r.ComorbidityColumns), boolRows(r.Comorbidities), 0},
	}
	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.name); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := writeSheet(f, s.name, s.headers, s.rows, header, wrap, s.width); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteXLSX saves the workbook to path
func (r *Report) WriteXLSX(path string) error {
	f, err := r.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle, wrapStyle int, width float64) error {
	if len(headers) == 0 {
		return nil
	}
	// Column style first so the bold header row is not overwritten
	if width > 0 {
		last, err := excelize.ColumnNumberToName(len(headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, width); err != nil {
			return err
		}
		if err := f.SetColStyle(sheet, "A:"+last, wrapStyle); err != nil {
			return err
		}
	}

	head := make([]interface{}, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func boolRows(matrix [][]bool) [][]interface{} {
	rows := make([][]interface{}, len(matrix))
	for i, row := range matrix {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		rows[i] = cells
	}
	return rows
}
