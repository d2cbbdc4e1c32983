package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the coordinator exposes on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	OpenConnections  prometheus.Gauge
	OnlineIdentities prometheus.Gauge
	MessagesCreated  prometheus.Counter
	EventsBroadcast  prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		OpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hivechat_open_connections",
			Help: "Live websocket connections.",
		}),
		OnlineIdentities: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hivechat_online_identities",
			Help: "Identities with at least one live connection.",
		}),
		MessagesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "hivechat_messages_created_total",
			Help: "Messages durably created.",
		}),
		EventsBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Name: "hivechat_events_broadcast_total",
			Help: "Frames fanned out to websocket clients.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
