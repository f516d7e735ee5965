package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	. "hstin/ndprobe/helper"
)

// Metrics holds the Prometheus counters for the probe driver.
type Metrics struct {
	FilesProbed    *prometheus.CounterVec // labels: type={cube,grib}
	FileErrors     *prometheus.CounterVec // labels: type={cube,grib}
	MatchesEmitted prometheus.Counter
}

// NewMetrics creates and registers the driver metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesProbed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndprobe",
			Name:      "files_probed_total",
			Help:      "Forecast files successfully probed.",
		}, []string{"type"}),
		FileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndprobe",
			Name:      "file_errors_total",
			Help:      "Forecast files that failed to probe.",
		}, []string{"type"}),
		MatchesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ndprobe",
			Name:      "matches_emitted_total",
			Help:      "Matches appended to probe results.",
		}),
	}
	prometheus.MustRegister(m.FilesProbed, m.FileErrors, m.MatchesEmitted)
	return m
}

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine next to the API server.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	Log.Info().Msg("metrics listening on " + addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		Log.Error().Err(err).Msg("metrics listener failed")
	}
}
