// Package realtime keeps boards in step between collaborators. Each room is one
// pub/sub channel carrying cursor positions and whole-board snapshots; the last
// snapshot received wins.
package realtime

import (
	"context"
	"encoding/json"

	"CanvasBoard/internal/state"
)

// Event names on a room channel.
const (
	EventCursor      = "cursor"
	EventCursorLeave = "cursor_leave"
	EventElements    = "elements"
)

type CursorMessage struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type LeaveMessage struct {
	ID string `json:"id"`
}

// ElementsMessage carries a full board snapshot. Revision increases with every
// snapshot a sender publishes. Connections is always sent; a message without the
// key leaves the receiver's connections as they are.
type ElementsMessage struct {
	SenderID    string              `json:"senderId"`
	Revision    uint64              `json:"revision"`
	Elements    []state.Element     `json:"elements"`
	Connections *[]state.Connection `json:"connections"`
}

// Meta is what a member publishes into the room presence set.
type Meta struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Handler func(payload json.RawMessage)

// Channel is a joined room. Broadcasts are never delivered back to their sender.
type Channel interface {
	Send(event string, payload any) error
	On(event string, h Handler)
	Track(meta Meta) error
	Presence() []Meta
	OnPresence(func([]Meta))
	Leave() error
}

// PubSub joins rooms.
type PubSub interface {
	Join(ctx context.Context, room, key string) (Channel, error)
}

// Document is the board state a Syncer replicates.
type Document interface {
	Revision() uint64
	Snapshot() ([]state.Element, []state.Connection)
	ApplyRemote(els []state.Element, conns []state.Connection)
}
