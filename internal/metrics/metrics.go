// Package metrics exposes Prometheus collectors for the pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction outcome labels.
const (
	OutcomeScraped    = "scraped"
	OutcomeNoContent  = "no_content"
	OutcomeFailed     = "failed"
	OutcomeBotBlocked = "bot_blocked"
)

// Enrichment outcome labels.
const (
	OutcomePersisted = "persisted"
	OutcomeSkipped   = "skipped"
)

var (
	pagesTotal       *prometheus.CounterVec
	botBlocksTotal   *prometheus.CounterVec
	enrichmentsTotal *prometheus.CounterVec
	activeFetches    prometheus.Gauge
	activeAnalyses   prometheus.Gauge

	once sync.Once
)

// Init registers the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobradar_pages_total",
				Help: "Posting pages processed, labeled by source and outcome.",
			},
			[]string{"source", "outcome"},
		)
		botBlocksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobradar_bot_blocks_total",
				Help: "Batches aborted by anti-automation detection, labeled by source.",
			},
			[]string{"source"},
		)
		enrichmentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobradar_enrichments_total",
				Help: "Enrichment items reaching a terminal outcome, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		activeFetches = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jobradar_active_fetches",
				Help: "Detail fetches currently in flight.",
			},
		)
		activeAnalyses = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jobradar_active_analyses",
				Help: "Enrichment workers currently processing an item.",
			},
		)
	})
}

// PageProcessed records one posting page reaching an extraction outcome.
func PageProcessed(source, outcome string) {
	if pagesTotal != nil {
		pagesTotal.WithLabelValues(source, outcome).Inc()
	}
}

// BotBlocked records a batch-level anti-automation abort.
func BotBlocked(source string) {
	if botBlocksTotal != nil {
		botBlocksTotal.WithLabelValues(source).Inc()
	}
}

// EnrichmentDone records one enrichment item reaching a terminal outcome.
func EnrichmentDone(outcome string) {
	if enrichmentsTotal != nil {
		enrichmentsTotal.WithLabelValues(outcome).Inc()
	}
}

// FetchStarted and FetchFinished track the in-flight fetch gauge.
func FetchStarted() {
	if activeFetches != nil {
		activeFetches.Inc()
	}
}

// FetchFinished decrements the in-flight fetch gauge.
func FetchFinished() {
	if activeFetches != nil {
		activeFetches.Dec()
	}
}

// AnalysisStarted increments the active enrichment gauge.
func AnalysisStarted() {
	if activeAnalyses != nil {
		activeAnalyses.Inc()
	}
}

// AnalysisFinished decrements the active enrichment gauge.
func AnalysisFinished() {
	if activeAnalyses != nil {
		activeAnalyses.Dec()
	}
}
