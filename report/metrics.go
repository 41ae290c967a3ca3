package report

import (
	"github.com/dhamidi/mappificator/mapping"
	"github.com/dhamidi/mappificator/naming"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics mirrors the run reports as prometheus collectors on a private
// registry, so that a run can be dumped to a node exporter textfile.
type Metrics struct {
	RunID string

	registry *prometheus.Registry
	coverage *prometheus.GaugeVec
	gaps     *prometheus.GaugeVec
	names    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	runID := uuid.NewString()
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"run_id": runID}
	factory := promauto.With(reg)

	return &Metrics{
		RunID:    runID,
		registry: reg,
		coverage: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "mappificator",
			Name:        "coverage_ratio",
			Help:        "Fraction of symbols carrying a name after a stage",
			ConstLabels: labels,
		}, []string{"stage", "category"}),
		gaps: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "mappificator",
			Name:        "gaps",
			Help:        "Soft gaps found during the run",
			ConstLabels: labels,
		}, []string{"kind"}),
		names: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "mappificator",
			Name:        "parameter_names_total",
			Help:        "Parameter names assigned, by source",
			ConstLabels: labels,
		}, []string{"source"}),
	}
}

func (m *Metrics) ObserveCoverage(c Coverage) {
	for _, cat := range []mapping.Category{mapping.CategoryFields, mapping.CategoryMethods, mapping.CategoryParams} {
		m.coverage.WithLabelValues(c.Stage, string(cat)).Set(c.Ratio(cat).Percent() / 100)
	}
}

func (m *Metrics) ObserveGaps(g *Gaps) {
	for kind, n := range g.Counts() {
		m.gaps.WithLabelValues(kind).Set(float64(n))
	}
}

func (m *Metrics) ObserveNaming(r *naming.Report) {
	for source, n := range r.Sources {
		m.names.WithLabelValues(string(source)).Add(float64(n))
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteFile writes every metric in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
