package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keywinf/relay-stack/common/middleware"
	"github.com/keywinf/relay-stack/relay/internal/handlers"
)

// NewRouter wires HTTP routes for the relay service. The relay has no data
// plane over HTTP; this surface exists for probes and scraping only.
func NewRouter(h *handlers.HealthHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)
	mux.Handle("/metrics", promhttp.Handler())
	return middleware.RequestID(mux)
}
