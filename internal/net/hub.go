package net

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"CanvasBoard/internal/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
	// maxMessageSize bounds a single frame; full board snapshots can be large.
	maxMessageSize = 16 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub is the relay run by the host. Each room holds the connected clients; a
// broadcast from one client is forwarded to every other client in its room.
type Hub struct {
	rooms map[string]*room
	mu    sync.RWMutex
}

type room struct {
	key     string
	clients map[*peer]bool
	// pending counts admitted clients whose upgrade has not finished.
	pending int
}

type peer struct {
	conn *websocket.Conn
	send chan []byte
	room string
	addr string
	meta *realtime.Meta
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

// ServeHTTP upgrades /ws?room=<id>&key=<secret> requests. The first client to open a
// room sets its key; later clients must present the same key.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	key := r.URL.Query().Get("key")
	if roomID == "" {
		http.Error(w, "missing room", http.StatusBadRequest)
		return
	}
	if !h.admit(roomID, key) {
		http.Error(w, "wrong room key", http.StatusForbidden)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] upgrade failed for %s: %v", r.RemoteAddr, err)
		h.release(roomID)
		return
	}
	p := &peer{conn: conn, send: make(chan []byte, sendBuffer), room: roomID, addr: r.RemoteAddr}
	h.add(p)
	go p.writeLoop()
	h.readLoop(p)
}

// admit checks key against the room, opening the room with that key when it does
// not exist yet. An admitted client must be passed to add or release.
func (h *Hub) admit(roomID, key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[roomID]
	if !ok {
		rm = &room{key: key, clients: make(map[*peer]bool)}
		h.rooms[roomID] = rm
	} else if rm.key != key {
		return false
	}
	rm.pending++
	return true
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm := h.rooms[p.room]
	rm.pending--
	rm.clients[p] = true
	log.Printf("[HUB] %s joined room %s (%d connected)", p.addr, p.room, len(rm.clients))
}

// release drops an admission that never became a client.
func (h *Hub) release(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[roomID]
	if !ok {
		return
	}
	rm.pending--
	if rm.pending == 0 && len(rm.clients) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	rm, ok := h.rooms[p.room]
	if !ok || !rm.clients[p] {
		h.mu.Unlock()
		return
	}
	delete(rm.clients, p)
	close(p.send)
	if len(rm.clients) == 0 && rm.pending == 0 {
		delete(h.rooms, p.room)
	}
	h.mu.Unlock()
	log.Printf("[HUB] %s left room %s", p.addr, p.room)
	h.pushPresence(p.room)
}

// Broadcast sends data to every client in the room except exclude.
func (h *Hub) Broadcast(roomID string, data []byte, exclude *peer) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rm, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for p := range rm.clients {
		if p == exclude {
			continue
		}
		select {
		case p.send <- data:
		default:
			log.Printf("[HUB] dropping frame for slow client %s", p.addr)
		}
	}
}

// Members returns the tracked presence of a room ordered by key.
func (h *Hub) Members(roomID string) []realtime.Meta {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rm, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	var out []realtime.Meta
	for p := range rm.clients {
		if p.meta != nil {
			out = append(out, *p.meta)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Rooms reports how many clients each open room has.
func (h *Hub) Rooms() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.rooms))
	for id, rm := range h.rooms {
		out[id] = len(rm.clients)
	}
	return out
}

func (h *Hub) pushPresence(roomID string) {
	data, err := json.Marshal(NetworkMessage{Type: TypePresence, Presence: h.Members(roomID)})
	if err != nil {
		return
	}
	h.Broadcast(roomID, data, nil)
}

func (h *Hub) readLoop(p *peer) {
	defer func() {
		h.remove(p)
		p.conn.Close()
	}()
	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[HUB] client %s disconnected: %v", p.addr, err)
			}
			return
		}
		var msg NetworkMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[HUB] bad frame from %s: %v", p.addr, err)
			continue
		}
		switch msg.Type {
		case TypeBroadcast:
			h.Broadcast(p.room, data, p)
		case TypeTrack:
			if msg.Meta == nil {
				continue
			}
			h.mu.Lock()
			m := *msg.Meta
			p.meta = &m
			h.mu.Unlock()
			h.pushPresence(p.room)
		}
	}
}

func (p *peer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()
	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[HUB] error sending to %s: %v", p.addr, err)
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
