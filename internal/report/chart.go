// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Chart data file names
const (
	SymptomsChartFile      = "am_symptoms.JSON"
	ComorbiditiesChartFile = "am_comorbs.JSON"
)

// ChartPoint is one bar of a pictorial stacked chart
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// PictorialStacked counts the true cells of every column and keeps the topN
// largest. Ties keep column order; topN <= 0 keeps every column.
func PictorialStacked(cols []Column, matrix [][]bool, topN int) []ChartPoint {
	points := make([]ChartPoint, len(cols))
	for i, c := range cols {
		points[i].Name = c.Name
	}
	for _, row := range matrix {
		for i, v := range row {
			if v && i < len(points) {
				points[i].Value++
			}
		}
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	if topN > 0 && len(points) > topN {
		points = points[:topN]
	}
	return points
}

// SymptomChart returns the chart data of the symptoms sheet
func (r *Report) SymptomChart(topN int) []ChartPoint {
	return PictorialStacked(r.SymptomColumns, r.Symptoms, topN)
}

// ComorbidityChart returns the chart data of the comorbidities sheet
func (r *Report) ComorbidityChart(topN int) []ChartPoint {
	return PictorialStacked(r.ComorbidityColumns, r.Comorbidities, topN)
}

// WriteChartData stores points as a JSON array
func WriteChartData(path string, points []ChartPoint) error {
	if points == nil {
		points = []ChartPoint{}
	}
	data, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing chart data %s: %w", path, err)
	}
	return nil
}
