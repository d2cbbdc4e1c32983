package realtime

import (
	"encoding/json"
	"sync"

	"hivechat/internal/metrics"
	"hivechat/internal/nlog"
)

// Hub owns the live connection table and the per-channel rooms. Every
// mutation of those tables goes through the hub mutex, so concurrent
// connects, disconnects and room joins from different connections are
// applied one at a time. Inbound frames are routed through an explicit
// dispatch table keyed by event name.
type Hub struct {
	logger   nlog.Logger
	metrics  *metrics.Metrics
	presence *PresenceRegistry
	typing   *TypingCoordinator

	mu      sync.Mutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	handlers map[string]func(*Client, json.RawMessage)
}

func NewHub(presence *PresenceRegistry, typing *TypingCoordinator, m *metrics.Metrics, logger nlog.Logger) *Hub {
	h := &Hub{
		logger:   logger,
		metrics:  m,
		presence: presence,
		typing:   typing,
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
	}
	h.handlers = map[string]func(*Client, json.RawMessage){
		EventPresenceJoin: h.handlePresenceJoin,
		EventChannelJoin:  h.handleChannelJoin,
		EventTyping:       h.handleTyping,
	}
	return h
}

func (h *Hub) Logf(format string, v ...any) {
	h.logger.Logf(format, v...)
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.metrics.OpenConnections.Inc()
	h.Logf("Client %s connected", c.id)
}

// Unregister drops the client from the connection table and from every
// room it joined. If the client had announced an identity, one presence
// connection is released and the new snapshot goes out to everyone.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for channelID, room := range h.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, channelID)
		}
	}
	close(c.send)
	h.mu.Unlock()

	h.metrics.OpenConnections.Dec()

	if c.externalID != "" && h.presence.MarkDisconnected(c.externalID) {
		h.broadcastPresence()
	}
	h.Logf("Client %s disconnected", c.id)
}

// Subscribe adds the connection to a channel's room. Subscribing twice is
// a no-op; there is no explicit unsubscribe, disconnect covers it.
func (h *Hub) Subscribe(c *Client, channelID string) {
	if channelID == "" {
		return
	}

	h.mu.Lock()
	room, ok := h.rooms[channelID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[channelID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()

	h.Logf("Client %s joined room %s", c.id, channelID)
}

// Publish delivers an event to every connection subscribed to the channel,
// and nobody else. Delivery is best effort: a slow client loses the frame.
func (h *Hub) Publish(channelID, event string, payload any) {
	h.publishExcept(channelID, nil, event, payload)
}

// PublishAll delivers an event to every live connection.
func (h *Hub) PublishAll(event string, payload any) {
	raw, err := encodeFrame(event, payload)
	if err != nil {
		h.Logf("Could not encode %s frame {%v}", event, err)
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		if c.trySend(raw) {
			h.metrics.EventsBroadcast.Inc()
		}
	}
	h.mu.Unlock()
}

func (h *Hub) publishExcept(channelID string, skip *Client, event string, payload any) {
	raw, err := encodeFrame(event, payload)
	if err != nil {
		h.Logf("Could not encode %s frame {%v}", event, err)
		return
	}

	h.mu.Lock()
	for c := range h.rooms[channelID] {
		if c == skip {
			continue
		}
		if c.trySend(raw) {
			h.metrics.EventsBroadcast.Inc()
		}
	}
	h.mu.Unlock()
}

// Dispatch routes one inbound frame through the handler table. Unknown
// events are dropped; a client cannot crash the hub with a bad frame.
func (h *Hub) Dispatch(c *Client, frame Frame) {
	handler, ok := h.handlers[frame.Event]
	if !ok {
		h.Logf("Client %s sent unknown event %q", c.id, frame.Event)
		return
	}
	handler(c, frame.Payload)
}

func (h *Hub) handlePresenceJoin(c *Client, payload json.RawMessage) {
	var p presenceJoinPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.ExternalID == "" {
		return
	}

	c.externalID = p.ExternalID
	c.name = p.Name

	if h.presence.MarkConnected(p.ExternalID, p.Name) {
		h.broadcastPresence()
	}
}

func (h *Hub) handleChannelJoin(c *Client, payload json.RawMessage) {
	var p channelJoinPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	h.Subscribe(c, p.ChannelID)
}

func (h *Hub) handleTyping(c *Client, payload json.RawMessage) {
	var p typingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	if p.ChannelID == "" || p.ExternalID == "" {
		return
	}

	if !h.typing.Set(p.ChannelID, p.ExternalID, p.Name, p.IsTyping) {
		return
	}

	// The sender already knows it is typing.
	h.publishExcept(p.ChannelID, c, EventTypingUpdate, p)
}

func (h *Hub) broadcastPresence() {
	snapshot := h.presence.Snapshot()
	h.metrics.OnlineIdentities.Set(float64(len(snapshot)))
	h.PublishAll(EventPresenceUpdate, snapshot)
}

func encodeFrame(event string, payload any) ([]byte, error) {
	return json.Marshal(struct {
		Event   string `json:"event"`
		Payload any    `json:"payload"`
	}{event, payload})
}
