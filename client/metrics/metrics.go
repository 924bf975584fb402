// Package metrics instruments outgoing requests with Prometheus collectors.
package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRoundTripper wraps next so that every request updates three collectors
// registered with reg:
//
//	<namespace>_http_client_in_flight_requests
//	<namespace>_http_client_requests_total{code,method}
//	<namespace>_http_client_request_duration_seconds{code,method}
//
// Collectors already registered under the same names are reused, so
// several clients may share one registry.
func NewRoundTripper(reg prometheus.Registerer, namespace string, next http.RoundTripper) (http.RoundTripper, error) {
	if reg == nil {
		return nil, errors.New("registerer must not be nil")
	}
	if next == nil {
		next = http.DefaultTransport
	}

	inFlight, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http_client",
		Name:      "in_flight_requests",
		Help:      "Number of requests currently in flight.",
	}))
	if err != nil {
		return nil, err
	}

	counter, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http_client",
		Name:      "requests_total",
		Help:      "Number of requests by status code and method.",
	}, []string{"code", "method"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http_client",
		Name:      "request_duration_seconds",
		Help:      "Request latency by status code and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code", "method"}))
	if err != nil {
		return nil, err
	}

	return promhttp.InstrumentRoundTripperInFlight(inFlight,
		promhttp.InstrumentRoundTripperCounter(counter,
			promhttp.InstrumentRoundTripperDuration(duration, next),
		),
	), nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("registering collector: %w", err)
	}

	return c, nil
}
