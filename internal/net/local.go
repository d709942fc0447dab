package net

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"

	"CanvasBoard/internal/realtime"
)

// LocalBus is an in-process PubSub with the same delivery rules as the Hub.
// Delivery is synchronous on the sender's goroutine.
type LocalBus struct {
	mu    sync.Mutex
	rooms map[string][]*localChannel
}

func NewLocalBus() *LocalBus {
	return &LocalBus{rooms: make(map[string][]*localChannel)}
}

func (b *LocalBus) Join(_ context.Context, roomID, _ string) (realtime.Channel, error) {
	c := &localChannel{bus: b, room: roomID, handlers: make(map[string][]realtime.Handler)}
	b.mu.Lock()
	b.rooms[roomID] = append(b.rooms[roomID], c)
	b.mu.Unlock()
	return c, nil
}

func (b *LocalBus) members(roomID string) []*localChannel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*localChannel(nil), b.rooms[roomID]...)
}

func (b *LocalBus) presence(roomID string) []realtime.Meta {
	var out []realtime.Meta
	for _, c := range b.members(roomID) {
		c.mu.Lock()
		if c.meta != nil {
			out = append(out, *c.meta)
		}
		c.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (b *LocalBus) pushPresence(roomID string) {
	all := b.presence(roomID)
	for _, c := range b.members(roomID) {
		c.mu.Lock()
		fns := slices.Clone(c.onPres)
		c.mu.Unlock()
		for _, fn := range fns {
			fn(all)
		}
	}
}

type localChannel struct {
	bus  *LocalBus
	room string

	mu       sync.Mutex
	handlers map[string][]realtime.Handler
	onPres   []func([]realtime.Meta)
	meta     *realtime.Meta
	left     bool
}

func (c *localChannel) Send(event string, payload any) error {
	c.mu.Lock()
	left := c.left
	c.mu.Unlock()
	if left {
		return fmt.Errorf("send %s: channel closed", event)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event, err)
	}
	for _, m := range c.bus.members(c.room) {
		if m == c {
			continue
		}
		m.mu.Lock()
		hs := append([]realtime.Handler(nil), m.handlers[event]...)
		m.mu.Unlock()
		for _, h := range hs {
			h(raw)
		}
	}
	return nil
}

func (c *localChannel) On(event string, h realtime.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

func (c *localChannel) OnPresence(fn func([]realtime.Meta)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPres = append(c.onPres, fn)
}

func (c *localChannel) Track(meta realtime.Meta) error {
	c.mu.Lock()
	c.meta = &meta
	c.mu.Unlock()
	c.bus.pushPresence(c.room)
	return nil
}

func (c *localChannel) Presence() []realtime.Meta { return c.bus.presence(c.room) }

func (c *localChannel) Leave() error {
	b := c.bus
	b.mu.Lock()
	members := b.rooms[c.room]
	for i, m := range members {
		if m == c {
			b.rooms[c.room] = append(members[:i:i], members[i+1:]...)
			break
		}
	}
	if len(b.rooms[c.room]) == 0 {
		delete(b.rooms, c.room)
	}
	b.mu.Unlock()
	c.mu.Lock()
	c.left = true
	c.mu.Unlock()
	b.pushPresence(c.room)
	return nil
}
