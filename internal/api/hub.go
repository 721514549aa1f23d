package api

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-toolkit/internal/auth"
	"github.com/nerrad567/gray-logic-toolkit/internal/eventargs"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
	"github.com/nerrad567/gray-logic-toolkit/internal/settings"
)

// WebSocket channels.
const (
	// EventSettingChanged carries one settingEvent per stored change.
	EventSettingChanged = "setting.changed"

	// EventSettingsReloaded carries a reloadEvent after a schema swap.
	EventSettingsReloaded = "settings.reloaded"
)

// channelPermissions lists the channels a client may subscribe to and the
// permission each requires.
var channelPermissions = map[string]auth.Permission{
	EventSettingChanged:   auth.PermSettingsRead,
	EventSettingsReloaded: auth.PermSettingsRead,
}

// settingEvent is the payload of EventSettingChanged.
type settingEvent struct {
	ID        string      `json:"id"`
	Value     float64     `json:"value"`
	Previous  float64     `json:"previous"`
	Unit      string      `json:"unit,omitempty"`
	Wire      remap.Kind  `json:"wire"`
	WireValue remap.Value `json:"wire_value"`
	Source    string      `json:"source"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func newSettingEvent(e eventargs.Changed[settings.Setting]) settingEvent {
	cur := e.Current
	return settingEvent{
		ID:        cur.ID,
		Value:     cur.Value,
		Previous:  e.Previous.Value,
		Unit:      cur.Unit,
		Wire:      cur.Wire,
		WireValue: cur.WireValue,
		Source:    cur.Source,
		UpdatedAt: cur.UpdatedAt,
	}
}

// reloadEvent is the payload of EventSettingsReloaded.
type reloadEvent struct {
	Version  int      `json:"version"`
	Settings []string `json:"settings"`
}

// subscription narrows a channel to setting IDs matching any of its glob
// patterns. No patterns means every setting.
type subscription struct {
	patterns []string
}

func (s subscription) matches(settingID string) bool {
	if len(s.patterns) == 0 || settingID == "" {
		return true
	}
	for _, p := range s.patterns {
		if ok, _ := path.Match(p, settingID); ok {
			return true
		}
	}
	return false
}

// validPatterns reports whether every pattern is a well-formed glob.
func validPatterns(patterns []string) bool {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return false
		}
	}
	return true
}

// Hub fans setting events out to WebSocket clients.
type Hub struct {
	cfg      config.WebSocketConfig
	logger   *logging.Logger
	snapshot func() []settings.Setting

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// NewHub creates a hub. snapshot supplies the current settings returned
// to clients when they subscribe to EventSettingChanged; it may be nil.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger, snapshot func() []settings.Setting) *Hub {
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		snapshot: snapshot,
		clients:  make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "user_id", client.userID, "clients", n)
}

// Unregister removes a client. Only the call that removes it closes its
// send channel.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "user_id", client.userID, "clients", n)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastChange sends a stored setting change to subscribers whose
// filters match the setting.
func (h *Hub) BroadcastChange(e eventargs.Changed[settings.Setting]) {
	h.Broadcast(EventSettingChanged, e.Current.ID, newSettingEvent(e))
}

// BroadcastReload announces a newly installed schema.
func (h *Hub) BroadcastReload(schema *settings.Schema) {
	ids := make([]string, 0, len(schema.Settings))
	for _, d := range schema.Settings {
		ids = append(ids, d.ID)
	}
	h.Broadcast(EventSettingsReloaded, "", reloadEvent{Version: schema.Version, Settings: ids})
}

// Broadcast sends payload on channel to every subscribed client. An empty
// settingID reaches all subscribers regardless of their filters.
func (h *Hub) Broadcast(channel, settingID string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal websocket event", "channel", channel, "error", err)
		return
	}

	// Client locks are taken only after the hub lock is released.
	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		if client.wants(channel, settingID) {
			client.trySend(data)
			sent++
		}
	}
	if sent > 0 {
		h.logger.Debug("websocket event sent", "channel", channel, "setting_id", settingID, "recipients", sent)
	}
}

// matchingSettings returns the current settings a subscription covers.
func (h *Hub) matchingSettings(sub subscription) []settings.Setting {
	if h.snapshot == nil {
		return nil
	}
	all := h.snapshot()
	out := make([]settings.Setting, 0, len(all))
	for _, v := range all {
		if sub.matches(v.ID) {
			out = append(out, v)
		}
	}
	return out
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}
