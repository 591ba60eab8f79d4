// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"c19-miner/internal/miner"
)

// MentionRow is one mention flattened out of a clue set, for tabular output
type MentionRow struct {
	Category    string
	Key         string
	Description string
	Mention     string
	Reference   string
}

// CategorySummary is the per-category view used by the text formatter
type CategorySummary struct {
	Name   string
	Kind   miner.Kind
	Count  int
	Keys   []string
	Rows   []MentionRow
	RefTag string
}

// ConvertToRows flattens every mention in category order, then key order, then text order.
func ConvertToRows(clues *miner.ClueSet) []MentionRow {
	var rows []MentionRow
	for _, s := range Summarize(clues) {
		rows = append(rows, s.Rows...)
	}
	return rows
}

// Summarize returns one summary per category, in clue set order.
func Summarize(clues *miner.ClueSet) []CategorySummary {
	if clues == nil {
		return nil
	}
	var out []CategorySummary
	for _, name := range clues.Categories() {
		result, ok := clues.Category(name)
		if !ok {
			continue
		}
		s := CategorySummary{
			Name:   result.Name,
			Kind:   result.Kind,
			Count:  result.Count(),
			RefTag: result.ReferenceField,
		}
		if result.Kind == miner.KindKeyed {
			for _, b := range result.Buckets {
				s.Keys = append(s.Keys, b.Key)
				for _, m := range b.Mentions {
					s.Rows = append(s.Rows, MentionRow{
						Category:    result.Name,
						Key:         b.Key,
						Description: m.Description,
						Mention:     m.Context,
						Reference:   m.Reference,
					})
				}
			}
		} else {
			for _, m := range result.Mentions {
				s.Rows = append(s.Rows, MentionRow{Category: result.Name, Mention: m.Context})
			}
		}
		out = append(out, s)
	}
	return out
}
