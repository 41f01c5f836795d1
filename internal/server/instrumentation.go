package server

//
// instrumentation.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "gochat"

//nolint:gochecknoglobals
var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5}

// newPromMiddleware create middleware collecting http metrics labeled by matched
// route pattern; nothing is registered when reg is nil.
func newPromMiddleware(name string, buckets []float64, reg prometheus.Registerer) func(http.Handler) http.Handler {
	if buckets == nil {
		buckets = defaultBuckets
	}

	if reg != nil {
		reg = prometheus.WrapRegistererWith(prometheus.Labels{"handler": name}, reg)
	}

	factory := promauto.With(reg)
	labels := []string{"method", "code", "route"}
	byRoute := promhttp.WithLabelFromCtx("route", routePattern)

	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_total",
		Help:      "Number of handled HTTP requests.",
	}, labels)
	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests.",
		Buckets:   buckets,
	}, labels)
	responseSize := factory.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: metricsNamespace,
		Name:      "http_response_size_bytes",
		Help:      "Size of HTTP responses.",
	}, []string{"method", "code"})
	inFlight := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "http_in_flight_requests",
		Help:      "Number of requests currently served.",
	})

	return func(next http.Handler) http.Handler {
		handler := promhttp.InstrumentHandlerInFlight(inFlight, next)
		handler = promhttp.InstrumentHandlerResponseSize(responseSize, handler)
		handler = promhttp.InstrumentHandlerDuration(duration, handler, byRoute)

		return promhttp.InstrumentHandlerCounter(requests, handler, byRoute)
	}
}

// routePattern return chi pattern that served request (resolved after routing).
func routePattern(ctx context.Context) string {
	if rctx := chi.RouteContext(ctx); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return "unmatched"
}

func newMetricsHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{DisableCompression: true}),
	)
}
