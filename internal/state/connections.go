package state

// Connections is the ordered set of links between element anchors. Connections are
// only created and removed; an endpoint that disappears leaves the connection
// orphaned rather than deleting it.
type Connections struct {
	items []Connection
	clock Clock
}

func NewConnections() *Connections { return &Connections{} }

func (c *Connections) Add(conn Connection) {
	c.items = append(c.items, conn)
	c.clock.Tick()
}

// Revision changes whenever a connection is added, removed or replaced.
func (c *Connections) Revision() uint64 { return c.clock.Now() }

// Remove deletes a connection by id and reports whether it existed.
func (c *Connections) Remove(id string) bool {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.clock.Tick()
			return true
		}
	}
	return false
}

func (c *Connections) All() []Connection {
	out := make([]Connection, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Connections) ReplaceAll(conns []Connection) {
	c.items = make([]Connection, len(conns))
	copy(c.items, conns)
	c.clock.Tick()
}

func (c *Connections) Len() int { return len(c.items) }

// Exists reports whether a connection between the same anchors is already present.
func (c *Connections) Exists(srcID string, src Anchor, dstID string, dst Anchor) bool {
	for _, conn := range c.items {
		if conn.SourceID == srcID && conn.SourceHandle == src &&
			conn.TargetID == dstID && conn.TargetHandle == dst {
			return true
		}
	}
	return false
}

// Live returns the connections whose endpoints both exist in s, in order.
func (c *Connections) Live(s *Store) []Connection {
	out := make([]Connection, 0, len(c.items))
	for _, conn := range c.items {
		if s.Has(conn.SourceID) && s.Has(conn.TargetID) {
			out = append(out, conn)
		}
	}
	return out
}
