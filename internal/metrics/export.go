package metrics

import (
	"errors"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically, for the node exporter textfile collector.
func WriteTextfile(reg *prom.Registry, path string) error {
	if reg == nil {
		return errors.New("metrics: nil registry")
	}
	return prom.WriteToTextfile(path, reg)
}
