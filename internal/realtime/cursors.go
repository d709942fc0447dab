package realtime

import (
	"sort"
	"time"
)

type RemoteCursor struct {
	CursorMessage
	LastSeen time.Time
}

// Cursors is the table of collaborator pointers, keyed by session id.
type Cursors struct {
	items map[string]RemoteCursor
}

func NewCursors() *Cursors {
	return &Cursors{items: make(map[string]RemoteCursor)}
}

func (c *Cursors) Put(m CursorMessage, now time.Time) {
	c.items[m.ID] = RemoteCursor{CursorMessage: m, LastSeen: now}
}

func (c *Cursors) Remove(id string) {
	delete(c.items, id)
}

// Sweep drops cursors not seen within ttl and returns how many were removed.
func (c *Cursors) Sweep(now time.Time, ttl time.Duration) int {
	n := 0
	for id, cur := range c.items {
		if now.Sub(cur.LastSeen) > ttl {
			delete(c.items, id)
			n++
		}
	}
	return n
}

// List returns the cursors ordered by name, then id.
func (c *Cursors) List() []RemoteCursor {
	out := make([]RemoteCursor, 0, len(c.items))
	for _, cur := range c.items {
		out = append(out, cur)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (c *Cursors) Len() int { return len(c.items) }
