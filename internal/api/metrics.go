package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	MQTT          ConnMetrics      `json:"mqtt"`
	InfluxDB      ConnMetrics      `json:"influxdb"`
	Settings      SettingsMetrics  `json:"settings"`
	Services      ServiceMetrics   `json:"services"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
	PendingTickets   int `json:"pending_tickets"`
}

// ConnMetrics reports an optional external connection.
type ConnMetrics struct {
	Configured bool `json:"configured"`
	Connected  bool `json:"connected"`
}

// SettingsMetrics contains settings service statistics.
type SettingsMetrics struct {
	Total         int            `json:"total"`
	SchemaVersion int            `json:"schema_version"`
	BySource      map[string]int `json:"by_source"`
	ByWireKind    map[string]int `json:"by_wire_kind"`
}

// ServiceMetrics contains service registry statistics.
type ServiceMetrics struct {
	Registered int `json:"registered"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	// Collect runtime stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
			PendingTickets:   s.tickets.pending(),
		},
		Services: ServiceMetrics{
			Registered: s.services.Len(),
		},
	}

	if s.mqtt != nil {
		metrics.MQTT = ConnMetrics{Configured: true, Connected: s.mqtt.IsConnected()}
	}
	if s.influx != nil {
		metrics.InfluxDB = ConnMetrics{Configured: true, Connected: s.influx.IsConnected()}
	}

	list := s.settings.List()
	metrics.Settings = SettingsMetrics{
		Total:         len(list),
		SchemaVersion: s.settings.Schema().Version,
		BySource:      make(map[string]int),
		ByWireKind:    make(map[string]int),
	}
	for _, v := range list {
		metrics.Settings.BySource[v.Source]++
		metrics.Settings.ByWireKind[v.Wire.String()]++
	}

	// Database stats (if available)
	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
