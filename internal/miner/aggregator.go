// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package miner

import "c19-miner/internal/detector"

// aggregator groups accepted matches of one category.
type aggregator struct {
	category *Category
	result   *CategoryResult
	buckets  map[string]int
}

func newAggregator(c *Category) *aggregator {
	r := &CategoryResult{Name: c.Name, Kind: c.Kind}
	if c.Kind == KindKeyed {
		r.ReferenceField = c.ReferenceField
		r.Buckets = []Bucket{}
	} else {
		r.Mentions = []Mention{}
	}
	return &aggregator{category: c, result: r, buckets: make(map[string]int)}
}

func (a *aggregator) add(m detector.Match) {
	if a.category.Kind == KindFlat {
		a.result.Mentions = append(a.result.Mentions, Mention{Context: m.Context})
		return
	}

	mention := Mention{
		Description: m.Description,
		Context:     m.Context,
		Reference:   a.category.Reference(m.Key),
	}
	i, ok := a.buckets[m.Key]
	if !ok {
		i = len(a.result.Buckets)
		a.buckets[m.Key] = i
		a.result.Buckets = append(a.result.Buckets, Bucket{Key: m.Key})
	}
	a.result.Buckets[i].Mentions = append(a.result.Buckets[i].Mentions, mention)
}
