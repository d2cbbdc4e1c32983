package realtime

import "encoding/json"

// Server to client events.
const (
	EventChannelNew          = "channel:new"
	EventChannelMemberUpdate = "channel:memberUpdate"
	EventPresenceUpdate      = "presence:update"
	EventMessageNew          = "message:new"
	EventMessageUpdated      = "message:updated"
	EventTypingUpdate        = "typing:update"
)

// Client to server events.
const (
	EventPresenceJoin = "presence:join"
	EventChannelJoin  = "channel:join"
	EventTyping       = "typing"
)

// Frame is the wire format on the event channel, both directions.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type presenceJoinPayload struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
}

type channelJoinPayload struct {
	ChannelID string `json:"channelId"`
}

type typingPayload struct {
	ChannelID  string `json:"channelId"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	IsTyping   bool   `json:"isTyping"`
}
