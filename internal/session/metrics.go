package session

//
// metrics.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	active        prometheus.Gauge
	created       prometheus.Counter
	deleted       prometheus.Counter
	expired       prometheus.Counter
	sweepDuration prometheus.Histogram
}

// newMetrics create session metrics; when reg is nil metrics are not registered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of live sessions.",
		}),
		created: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_sessions_created_total",
			Help: "Total number of created sessions.",
		}),
		deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_sessions_deleted_total",
			Help: "Total number of sessions deleted by logout.",
		}),
		expired: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_sessions_expired_total",
			Help: "Total number of sessions removed by expiration sweep.",
		}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_session_sweep_duration_seconds",
			Help:    "Duration of expiration sweep pass.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
	}
}
