package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "doxybuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg               *prom.Registry
	stageDuration     *prom.HistogramVec
	buildDuration     prom.Histogram
	stageResults      *prom.CounterVec
	buildOutcome      *prom.CounterVec
	filesSynced       *prom.CounterVec
	layoutEntries     *prom.GaugeVec
	generatorDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs metrics and registers them on reg. A nil
// reg gets a private registry, available through Registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.filesSynced = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "sync_files_total",
		Help:      "Files considered by the staging synchronizer, by category and action",
	}, []string{"category", "action"})
	pr.layoutEntries = prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "layout_entries",
		Help:      "Navigation entries injected into the layout by the last build",
	}, []string{"kind"})
	pr.generatorDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "generator_duration_seconds",
		Help:      "Wall time of the external documentation generator",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"result"})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.filesSynced, pr.layoutEntries, pr.generatorDuration)
	return pr
}

// Registry returns the registry the recorder's collectors live in.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.reg
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddFilesSynced(category string, copied, skipped int) {
	if p == nil || p.filesSynced == nil {
		return
	}
	p.filesSynced.WithLabelValues(category, "copied").Add(float64(copied))
	p.filesSynced.WithLabelValues(category, "skipped").Add(float64(skipped))
}

func (p *PrometheusRecorder) SetLayoutEntries(kind string, n int) {
	if p == nil || p.layoutEntries == nil {
		return
	}
	p.layoutEntries.WithLabelValues(kind).Set(float64(n))
}

func (p *PrometheusRecorder) ObserveGeneratorDuration(d time.Duration, success bool) {
	if p == nil || p.generatorDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.generatorDuration.WithLabelValues(res).Observe(d.Seconds())
}
