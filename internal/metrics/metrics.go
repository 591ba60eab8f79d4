// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the prometheus counters of a mining run. Each Metrics
// owns its registry so runs and tests never share counters.
package metrics

import (
	"fmt"

	"c19-miner/internal/detector"
	"c19-miner/internal/miner"
	"c19-miner/internal/resilience"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "c19miner"

// DefaultDurationBuckets cover a single note up to a slow PDF.
var DefaultDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30}

// Metrics groups the counters of one run.
type Metrics struct {
	registry *prometheus.Registry

	RecordsProcessed prometheus.Counter
	RecordsSkipped   *prometheus.CounterVec
	Mentions         *prometheus.CounterVec
	MentionsNegated  *prometheus.CounterVec
	MatchesSkipped   *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	RecordDuration   prometheus.Histogram
}

// New registers all counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Records mined successfully.",
		}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Records skipped, by reason.",
		}, []string{"reason"}),
		Mentions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mentions_total",
			Help:      "Mentions kept, by category.",
		}, []string{"category"}),
		MentionsNegated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mentions_negated_total",
			Help:      "Mentions dropped by the negation filter, by category.",
		}, []string{"category"}),
		MatchesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_skipped_total",
			Help:      "Matches dropped because they could not be processed, by category.",
		}, []string{"category"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Clue set cache lookups, by result.",
		}, []string{"result"}),
		RecordDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "record_duration_seconds",
			Help:      "Time spent mining one record.",
			Buckets:   DefaultDurationBuckets,
		}),
	}

	m.registry.MustRegister(
		m.RecordsProcessed,
		m.RecordsSkipped,
		m.Mentions,
		m.MentionsNegated,
		m.MatchesSkipped,
		m.CacheLookups,
		m.RecordDuration,
	)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Hooks returns miner hooks that count mentions. Counters are safe for concurrent use.
func (m *Metrics) Hooks() miner.Hooks {
	return miner.Hooks{
		OnMention: func(category string) {
			m.Mentions.WithLabelValues(category).Inc()
		},
		OnNegated: func(category string, _ detector.Match) {
			m.MentionsNegated.WithLabelValues(category).Inc()
		},
		OnSkip: func(category string, _ detector.Match, _ error) {
			m.MatchesSkipped.WithLabelValues(category).Inc()
		},
	}
}

// RecordSkipped counts a skipped record under the error's classification.
func (m *Metrics) RecordSkipped(err error) {
	m.RecordsSkipped.WithLabelValues(resilience.TypeOf(err).String()).Inc()
}

// CacheHit counts a cache lookup.
func (m *Metrics) CacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// WriteToTextfile writes the text exposition format to path.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
