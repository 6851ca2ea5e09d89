// Package metrics counts solver activity with Prometheus counters.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Solve kinds.
const (
	KindNeff   = "neff"
	KindCutoff = "cutoff"
)

// Solve results.
const (
	ResultFound     = "found"
	ResultNotFound  = "not_found"
	ResultNotGuided = "not_guided"
	ResultError     = "error"
)

// Recorder holds the solver counters. A nil *Recorder records nothing.
type Recorder struct {
	gatherer    prometheus.Gatherer
	evaluations prometheus.Counter
	solves      *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
}

// NewRecorder registers the solver counters on reg.
func NewRecorder(reg *prometheus.Registry) (*Recorder, error) {
	r := &Recorder{
		gatherer: reg,
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fibermodes_chareq_evaluations_total",
			Help: "Characteristic equation evaluations.",
		}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibermodes_solves_total",
			Help: "Completed neff and cutoff solves by result.",
		}, []string{"kind", "result"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibermodes_cache_hits_total",
			Help: "Solves answered from the per-fiber cache.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{r.evaluations, r.solves, r.cacheHits} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return r, nil
}

// Evaluation counts one characteristic equation evaluation.
func (r *Recorder) Evaluation() {
	if r == nil {
		return
	}
	r.evaluations.Inc()
}

// Solve counts a finished solve.
func (r *Recorder) Solve(kind, result string) {
	if r == nil {
		return
	}
	r.solves.WithLabelValues(kind, result).Inc()
}

// CacheHit counts a cached answer.
func (r *Recorder) CacheHit(kind string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(kind).Inc()
}

// WriteText writes every gathered family in the text exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	if r == nil {
		return nil
	}
	mfs, err := r.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
