// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is private to the process so tests do not collide with the global default.
var Registry = prometheus.NewRegistry()

var (
	BlocksRendered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockpress",
		Name:      "blocks_rendered_total",
		Help:      "Content blocks rendered, by component kind and outcome.",
	}, []string{"kind", "outcome"})

	StrapiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockpress",
		Name:      "strapi_requests_total",
		Help:      "Requests sent to the Strapi content API, by response status.",
	}, []string{"status"})
)

func init() {
	Registry.MustRegister(
		BlocksRendered,
		StrapiRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Block outcomes.
const (
	OutcomeOK          = "ok"
	OutcomePlaceholder = "placeholder"
	OutcomeFailed      = "failed"
)

// KindUnknown replaces component names outside the known set so the label stays bounded.
const KindUnknown = "unknown"

func ObserveBlock(kind, outcome string) {
	BlocksRendered.WithLabelValues(kind, outcome).Inc()
}

// ObserveStrapi counts one upstream call. A zero status means the request never got a response.
func ObserveStrapi(status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	StrapiRequests.WithLabelValues(label).Inc()
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
