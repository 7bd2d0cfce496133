// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/profilebridge/pkg/metrics"
)

// Caller runs a named host entry point with JSON object arguments.
type Caller interface {
	Call(ctx context.Context, name string, args []byte) error
}

// Server wires HTTP routes for the host call surface.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	callsHandler  *CallsHandler
	host          http.Handler
}

// NewServer creates a new API server with all handlers. host serves the
// websocket endpoint and may be nil when no websocket transport is used.
func NewServer(caller Caller, statsProvider StatsProvider, host http.Handler) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		callsHandler:  NewCallsHandler(caller),
		host:          host,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/calls", MetricsMiddleware(s.callsHandler.HandleListCalls, "calls"))
	mux.HandleFunc("/calls/", MetricsMiddleware(s.callsHandler.HandlePostCall, "call"))
	if s.host != nil {
		mux.Handle("/host", s.host)
	}
}

type ackResponse struct {
	Status string `json:"status"`
	Call   string `json:"call"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
