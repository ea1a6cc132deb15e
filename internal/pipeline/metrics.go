package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lenslate/lenslate/internal/common"
	"github.com/lenslate/lenslate/internal/filter"
)

// metrics holds the engine's prometheus instruments. Nil when no registerer
// was configured.
type metrics struct {
	linesProcessed prometheus.Counter
	linesFiltered  *prometheus.CounterVec
	stageSeconds   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		linesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lenslate",
			Name:      "lines_processed_total",
			Help:      "Recognized lines received by the pipeline.",
		}),
		linesFiltered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lenslate",
			Name:      "lines_filtered_total",
			Help:      "Lines dropped by the noise filter, by reason.",
		}, []string{"reason"}),
		stageSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lenslate",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage wall time per photo.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"stage"}),
	}
}

func (e *Engine) countFiltered(total int, dropped map[filter.DropReason]int) {
	if e.metrics == nil {
		return
	}
	e.metrics.linesProcessed.Add(float64(total))
	for reason, n := range dropped {
		e.metrics.linesFiltered.WithLabelValues(reason.String()).Add(float64(n))
	}
}

func (e *Engine) observeStages(timings *common.StageTimings) {
	if e.metrics == nil {
		return
	}
	for stage, d := range timings.Map() {
		e.metrics.stageSeconds.WithLabelValues(stage).Observe(d.Seconds())
	}
}
