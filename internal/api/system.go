package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds each dependency check in GET /health.
const healthCheckTimeout = 2 * time.Second

// healthChecker is satisfied by every checked infrastructure client.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

// handleHealth reports server health. The database is required; MQTT and
// InfluxDB only degrade the status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "ok",
		Version:    s.version,
		Components: make(map[string]string),
	}
	status := http.StatusOK

	check := func(name string, c healthChecker, required bool) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := c.HealthCheck(ctx); err != nil {
			resp.Components[name] = err.Error()
			if required {
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
			} else if resp.Status == "ok" {
				resp.Status = "degraded"
			}
			return
		}
		resp.Components[name] = "ok"
	}

	if s.db != nil {
		check("database", s.db, true)
	}
	if s.mqtt != nil {
		check("mqtt", s.mqtt, false)
	}
	if s.influx != nil {
		check("influxdb", s.influx, false)
	}

	writeJSON(w, status, resp)
}
