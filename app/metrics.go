package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	renderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatops",
		Name:      "markdown_renders_total",
		Help:      "Message bodies turned into HTML, by detected content type.",
	}, []string{"content_type"})

	extractTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatops",
		Name:      "markdown_extracts_total",
		Help:      "HTML bodies turned back into text, by output format.",
	}, []string{"format"})

	messageTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatops",
		Name:      "messages_total",
		Help:      "Answered chat messages, by persona.",
	}, []string{"persona"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		renderTotal,
		extractTotal,
		messageTotal,
	)
}

func metricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
