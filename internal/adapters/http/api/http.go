// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/fishery/pkg/metrics"
)

// DefaultBasePath is where the fish endpoint is mounted when none is given.
const DefaultBasePath = "/fish"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	FishDependencies
	HealthChecker
}

// Server wires HTTP routes for the business API.
type Server struct {
	basePath      string
	fishHandler   *FishHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers. An empty basePath
// mounts the fish endpoint at DefaultBasePath.
func NewServer(deps Dependencies, statsProvider StatsProvider, basePath string) *Server {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &Server{
		basePath:      basePath,
		fishHandler:   NewFishHandler(deps),
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(statsProvider, basePath),
	}
}

// BasePath returns the path the fish endpoint is mounted at.
func (s *Server) BasePath() string {
	return s.basePath
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc(s.basePath, RequestIDMiddleware(MetricsMiddleware(s.fishHandler.ServeHTTP, "fish")))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
