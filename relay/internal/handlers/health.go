package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/keywinf/relay-stack/common/messaging"
)

// HealthHandler serves liveness and readiness probes for the relay.
type HealthHandler struct {
	broker messaging.Client
}

// NewHealthHandler constructs a new handler over the broker connection.
func NewHealthHandler(broker messaging.Client) *HealthHandler {
	return &HealthHandler{broker: broker}
}

// HealthResponse is the probe body.
type HealthResponse struct {
	Status string                  `json:"status"`
	Broker messaging.HealthStatus `json:"broker,omitempty"`
}

// Health handles GET /healthz. The process being up is the liveness signal.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz. The relay is ready when its broker connection
// is usable; a relay that cannot publish should not receive traffic.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	status := messaging.CheckClientHealth(r.Context(), h.broker)
	if !status.Connected {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Broker: status})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Broker: status})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
}
