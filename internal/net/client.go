package net

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"CanvasBoard/internal/realtime"
)

// Dialer joins rooms on a remote hub.
type Dialer struct {
	// Addr is the host:port of the hub.
	Addr string
	// OnClose is called once when a joined channel loses its connection.
	OnClose func(err error)
}

// Join connects to the hub and returns the room channel.
func (d *Dialer) Join(ctx context.Context, roomID, key string) (realtime.Channel, error) {
	u := url.URL{Scheme: "ws", Host: d.Addr, Path: "/ws"}
	q := u.Query()
	q.Set("room", roomID)
	q.Set("key", key)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("joining room %s: %s: %w", roomID, resp.Status, err)
		}
		return nil, fmt.Errorf("joining room %s: %w", roomID, err)
	}
	conn.SetReadLimit(maxMessageSize)
	c := &wsChannel{
		conn:     conn,
		handlers: make(map[string][]realtime.Handler),
		onClose:  d.OnClose,
		done:     make(chan struct{}),
	}
	go c.readLoop()
	log.Printf("[SYNC] connected to %s room %s", d.Addr, roomID)
	return c, nil
}

type wsChannel struct {
	conn *websocket.Conn
	wmu  sync.Mutex

	mu       sync.RWMutex
	handlers map[string][]realtime.Handler
	onPres   []func([]realtime.Meta)
	presence []realtime.Meta

	onClose   func(error)
	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsChannel) write(msg NetworkMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding %s frame: %w", msg.Type, err)
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsChannel) Send(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return c.write(NetworkMessage{Type: TypeBroadcast, Event: event, Payload: raw})
}

func (c *wsChannel) On(event string, h realtime.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

func (c *wsChannel) OnPresence(fn func([]realtime.Meta)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPres = append(c.onPres, fn)
}

func (c *wsChannel) Track(meta realtime.Meta) error {
	return c.write(NetworkMessage{Type: TypeTrack, Meta: &meta})
}

func (c *wsChannel) Presence() []realtime.Meta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]realtime.Meta(nil), c.presence...)
}

func (c *wsChannel) Leave() error {
	var err error
	c.closeOnce.Do(func() {
		c.wmu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		c.wmu.Unlock()
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *wsChannel) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("[SYNC] connection lost: %v", err)
				if c.onClose != nil {
					c.onClose(err)
				}
			}
			return
		}
		var msg NetworkMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[SYNC] bad frame: %v", err)
			continue
		}
		switch msg.Type {
		case TypeBroadcast:
			c.mu.RLock()
			hs := append([]realtime.Handler(nil), c.handlers[msg.Event]...)
			c.mu.RUnlock()
			for _, h := range hs {
				h(msg.Payload)
			}
		case TypePresence:
			c.mu.Lock()
			c.presence = msg.Presence
			fns := slices.Clone(c.onPres)
			c.mu.Unlock()
			for _, fn := range fns {
				fn(msg.Presence)
			}
		}
	}
}
