package api

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/nerrad567/gray-logic-toolkit/internal/compare"
	"github.com/nerrad567/gray-logic-toolkit/internal/registry"
)

// serviceInfo describes one registry entry.
type serviceInfo struct {
	Type     string `json:"type"`
	Key      string `json:"key,omitempty"`
	Instance string `json:"instance"`
}

// handleListServices returns the registered services ordered by type, then
// key.
func (s *Server) handleListServices(w http.ResponseWriter, _ *http.Request) {
	entries := s.services.Entries()
	slices.SortStableFunc(entries, compare.Chain(
		compare.By(registry.Entry.TypeName, compare.Natural),
		compare.By(func(e registry.Entry) string { return e.Key }, compare.Natural),
	))

	out := make([]serviceInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, serviceInfo{
			Type:     e.TypeName(),
			Key:      e.Key,
			Instance: fmt.Sprintf("%T", e.Instance),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"services": out,
		"count":    len(out),
	})
}
