// Copyright 2025 The go-cta Authors. SPDX-License-Identifier: Apache-2.0

package transform

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the work done by launches. A nil *Metrics records nothing.
type Metrics struct {
	Launches      prometheus.Counter
	CTAs          prometheus.Counter
	Items         prometheus.Counter
	LaunchSeconds prometheus.Histogram
}

// NewMetrics creates the launch metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Launches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cta", Subsystem: "lbs",
			Name: "launches_total",
			Help: "Number of load-balanced transforms launched.",
		}),
		CTAs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cta", Subsystem: "lbs",
			Name: "ctas_total",
			Help: "Number of CTAs run.",
		}),
		Items: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cta", Subsystem: "lbs",
			Name: "items_total",
			Help: "Number of output items produced.",
		}),
		LaunchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cta", Subsystem: "lbs",
			Name:    "launch_seconds",
			Help:    "Wall time of one launch, partitioning included.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{m.Launches, m.CTAs, m.Items, m.LaunchSeconds} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "registering load-balanced transform metrics")
		}
	}
	return m, nil
}

func (m *Metrics) observe(numCTAs, items int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Launches.Inc()
	m.CTAs.Add(float64(numCTAs))
	m.Items.Add(float64(items))
	m.LaunchSeconds.Observe(elapsed.Seconds())
}
