package api

import (
	"maps"
	"net/http"
)

// StatsProvider reports service state for the /stats route.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the provider's stats plus the fish endpoint's path.
type StatsHandler struct {
	provider StatsProvider
	basePath string
}

// NewStatsHandler creates a stats handler for the endpoint mounted at basePath.
func NewStatsHandler(provider StatsProvider, basePath string) *StatsHandler {
	return &StatsHandler{provider: provider, basePath: basePath}
}

// HandleStats answers GET and HEAD.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}
	stats := map[string]interface{}{}
	if h.provider != nil {
		maps.Copy(stats, h.provider.GetStats())
	}
	stats["basePath"] = h.basePath
	writeJSON(w, http.StatusOK, stats)
}
