// Package metrics provides Prometheus metrics for the quote core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Requoting decision outcomes.
const (
	DecisionAdopted = "adopted"
	DecisionReused  = "reused"
)

// Metrics holds all Prometheus metrics of the quote core. It is constructed
// once and injected; tests pass their own registry to avoid duplicate
// registration.
type Metrics struct {
	QuotesCreatedTotal     *prometheus.CounterVec
	QuotesUpdatedTotal     prometheus.Counter
	GuidelineBreachesTotal *prometheus.CounterVec
	RequoteDecisionsTotal  *prometheus.CounterVec
	AgreementBlocksTotal   prometheus.Counter
	QuotesPurgedTotal      prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		QuotesCreatedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotecore_quotes_created_total",
				Help: "Total number of quote revisions created by channel",
			},
			[]string{"channel"},
		),
		QuotesUpdatedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "quotecore_quotes_updated_total",
				Help: "Total number of quote update requests",
			},
		),
		GuidelineBreachesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotecore_guideline_breaches_total",
				Help: "Total number of guideline breaches by breach code",
			},
			[]string{"code"},
		),
		RequoteDecisionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotecore_requote_decisions_total",
				Help: "Price-reuse decisions: reused (old price kept) or adopted (new price taken)",
			},
			[]string{"decision"},
		),
		AgreementBlocksTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "quotecore_agreement_blocks_total",
				Help: "Quotes blocked because an agreement already covers the risk",
			},
		),
		QuotesPurgedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "quotecore_quotes_purged_total",
				Help: "Master quotes purged under retention policy",
			},
		),
	}
}
