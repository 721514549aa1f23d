package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-toolkit/internal/auth"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-toolkit/internal/settings"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// wsSendBufferSize is the per-client outbound queue length.
	wsSendBufferSize = 256
)

// WSMessage is the envelope for every WebSocket frame in either direction.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe messages.
// Settings optionally narrows the channels to setting IDs matching any of
// the glob patterns, e.g. "zone*.setpoint".
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
	Settings []string `json:"settings,omitempty"`
}

// subscribeResponse acknowledges a subscription. Snapshot holds the
// current value of every matching setting when EventSettingChanged was
// requested, so a client starts from a consistent view.
type subscribeResponse struct {
	Subscribed []string           `json:"subscribed"`
	Settings   []string           `json:"settings,omitempty"`
	Snapshot   []settings.Setting `json:"snapshot,omitempty"`
}

// WSClient is one authenticated WebSocket connection.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	userID string
	role   auth.Role

	mu            sync.RWMutex
	subscriptions map[string]subscription
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS middleware.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// handleWebSocket upgrades a request carrying a ticket from
// POST /auth/ws-ticket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeUnauthorized(w, "ticket query parameter is required")
		return
	}
	entry, ok := s.tickets.consume(ticket)
	if !ok {
		writeUnauthorized(w, "invalid or expired ticket")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "user_id", entry.userID, "error", err)
		return
	}

	client := &WSClient{
		hub:           s.hub,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		userID:        entry.userID,
		role:          entry.role,
		subscriptions: make(map[string]subscription),
	}
	s.hub.Register(client)

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// keepAlive is how long a connection may stay silent before it is dropped.
func keepAlive(cfg config.WebSocketConfig) time.Duration {
	return time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
}

func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // a failed deadline surfaces as a read error
	c.conn.SetReadDeadline(time.Now().Add(keepAlive(cfg)))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(keepAlive(cfg)))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "user_id", c.userID, "error", err)
			}
			return
		}
		// Application messages count as liveness too.
		//nolint:errcheck // a failed deadline surfaces as a read error
		c.conn.SetReadDeadline(time.Now().Add(keepAlive(cfg)))
		c.handleMessage(message)
	}
}

func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				//nolint:errcheck // the connection is closing anyway
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // a failed deadline surfaces as a write error
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // a failed deadline surfaces as a write error
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		c.handleSubscribe(msg)
	case WSTypeUnsubscribe:
		c.handleUnsubscribe(msg)
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	default:
		c.sendError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// decodeSubscription re-reads the generic payload of msg.
func decodeSubscription(msg WSMessage) (WSSubscribePayload, bool) {
	var sub WSSubscribePayload
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return sub, false
	}
	if err := json.Unmarshal(raw, &sub); err != nil {
		return sub, false
	}
	return sub, len(sub.Channels) > 0
}

func (c *WSClient) handleSubscribe(msg WSMessage) {
	sub, ok := decodeSubscription(msg)
	if !ok {
		c.sendError(msg.ID, "subscribe needs at least one channel")
		return
	}
	if !validPatterns(sub.Settings) {
		c.sendError(msg.ID, "invalid setting pattern")
		return
	}
	for _, ch := range sub.Channels {
		perm, known := channelPermissions[ch]
		if !known {
			c.sendError(msg.ID, "unknown channel: "+ch)
			return
		}
		if !auth.HasPermission(c.role, perm) {
			c.sendError(msg.ID, "not permitted to subscribe to "+ch)
			return
		}
	}

	filter := subscription{patterns: sub.Settings}
	resp := subscribeResponse{Subscribed: sub.Channels, Settings: sub.Settings}

	c.mu.Lock()
	for _, ch := range sub.Channels {
		c.subscriptions[ch] = filter
		if ch == EventSettingChanged {
			resp.Snapshot = c.hub.matchingSettings(filter)
		}
	}
	c.mu.Unlock()

	c.hub.logger.Info("websocket client subscribed", "user_id", c.userID, "channels", sub.Channels, "settings", sub.Settings)
	c.reply(msg.ID, WSTypeResponse, resp)
}

func (c *WSClient) handleUnsubscribe(msg WSMessage) {
	sub, ok := decodeSubscription(msg)
	if !ok {
		c.sendError(msg.ID, "unsubscribe needs at least one channel")
		return
	}

	c.mu.Lock()
	for _, ch := range sub.Channels {
		delete(c.subscriptions, ch)
	}
	c.mu.Unlock()

	c.reply(msg.ID, WSTypeResponse, map[string]any{"unsubscribed": sub.Channels})
}

// wants reports whether the client should receive an event on channel
// for settingID.
func (c *WSClient) wants(channel, settingID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sub, ok := c.subscriptions[channel]
	return ok && sub.matches(settingID)
}

// trySend queues data without blocking. Slow clients lose the message;
// a client closed mid-broadcast is ignored.
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // send on a channel closed by Unregister
	}()

	select {
	case c.send <- data:
	default:
	}
}

func (c *WSClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.trySend(data)
}

func (c *WSClient) sendError(id, message string) {
	c.reply(id, WSTypeError, map[string]string{"message": message})
}
