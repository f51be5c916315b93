// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seogen"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	generations      *prom.CounterVec
	expressionErrors *prom.CounterVec
	translations     *prom.CounterVec
	bulkDuration     *prom.HistogramVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		generations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generated entities by page type, mode and outcome",
		}, []string{"page_type", "mode", "outcome"}),
		expressionErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "expression_errors_total",
			Help:      "Variable expressions that evaluated to the error sentinel",
		}, []string{"page_type"}),
		translations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation attempts by target language and outcome",
		}, []string{"language", "outcome"}),
		bulkDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "bulk_duration_seconds",
			Help:      "Wall-clock duration of bulk generation runs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"page_type"}),
	}
	reg.MustRegister(pr.generations, pr.expressionErrors, pr.translations, pr.bulkDuration)
	return pr
}

func (p *PrometheusRecorder) IncGeneration(pageType, mode, outcome string) {
	p.generations.WithLabelValues(pageType, mode, outcome).Inc()
}

func (p *PrometheusRecorder) IncExpressionError(pageType string) {
	p.expressionErrors.WithLabelValues(pageType).Inc()
}

func (p *PrometheusRecorder) IncTranslation(language, outcome string) {
	p.translations.WithLabelValues(language, outcome).Inc()
}

func (p *PrometheusRecorder) ObserveBulkDuration(pageType string, d time.Duration) {
	p.bulkDuration.WithLabelValues(pageType).Observe(d.Seconds())
}

// Handler serves the metrics gathered by reg.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
