package net

import (
	"encoding/json"

	"CanvasBoard/internal/realtime"
)

// Envelope types exchanged between hub and clients.
const (
	TypeBroadcast = "broadcast"
	TypeTrack     = "track"
	TypePresence  = "presence"
)

// NetworkMessage is one websocket frame. Broadcasts carry an event name and an opaque
// payload; presence frames carry the whole member list of the room.
type NetworkMessage struct {
	Type     string          `json:"type"`
	Event    string          `json:"event,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Meta     *realtime.Meta  `json:"meta,omitempty"`
	Presence []realtime.Meta `json:"presence,omitempty"`
}
