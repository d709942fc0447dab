package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"CanvasBoard/internal/state"
)

const (
	DefaultCursorThrottle = 33 * time.Millisecond
	DefaultCursorTTL      = 10 * time.Second
	DefaultSweepInterval  = 5 * time.Second
)

type Options struct {
	CursorThrottle time.Duration
	CursorTTL      time.Duration
	SweepInterval  time.Duration
	// Exec runs inbound work on the owner's execution context. Nil runs it inline.
	Exec func(func())
	Now  func() time.Time
}

// Syncer replicates a Document over a room channel. Local changes are detected by
// polling the document revision; remote snapshots replace the whole document.
type Syncer struct {
	doc  Document
	self Identity
	opts Options
	ch   Channel

	lastSent    uint64
	lastApplied uint64
	seen        map[string]uint64

	lastCursor time.Time
	cursors    *Cursors
	peers      []Meta
	// settled is set once the first presence state after joining has arrived;
	// members that appear after that are sent the current board.
	settled bool

	// OnChange is called after remote state was applied or the peer list changed.
	OnChange func()
}

func NewSyncer(doc Document, self Identity, opts Options) *Syncer {
	if opts.CursorThrottle <= 0 {
		opts.CursorThrottle = DefaultCursorThrottle
	}
	if opts.CursorTTL <= 0 {
		opts.CursorTTL = DefaultCursorTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Exec == nil {
		opts.Exec = func(fn func()) { fn() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Syncer{
		doc:     doc,
		self:    self,
		opts:    opts,
		seen:    make(map[string]uint64),
		cursors: NewCursors(),
	}
}

func (s *Syncer) Self() Identity { return s.self }

func (s *Syncer) Connected() bool { return s.ch != nil }

// Attach starts replicating over ch and announces this session in the room.
// The current revision counts as already shared, so joining does not broadcast.
func (s *Syncer) Attach(ch Channel) error {
	s.ch = ch
	s.lastSent = s.doc.Revision()
	ch.On(EventElements, func(raw json.RawMessage) {
		var msg ElementsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[SYNC] dropping malformed elements message: %v", err)
			return
		}
		s.opts.Exec(func() { s.receiveElements(msg) })
	})
	ch.On(EventCursor, func(raw json.RawMessage) {
		var msg CursorMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		s.opts.Exec(func() { s.receiveCursor(msg) })
	})
	ch.On(EventCursorLeave, func(raw json.RawMessage) {
		var msg LeaveMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		s.opts.Exec(func() {
			s.cursors.Remove(msg.ID)
			s.changed()
		})
	})
	ch.OnPresence(func(all []Meta) {
		s.opts.Exec(func() { s.receivePresence(all) })
	})
	if err := ch.Track(s.self.meta()); err != nil {
		return err
	}
	log.Printf("[SYNC] joined as %s (%s)", s.self.Name, s.self.ID)
	return nil
}

// Detach says goodbye to the room and closes the channel.
func (s *Syncer) Detach() error {
	if s.ch == nil {
		return nil
	}
	ch := s.ch
	s.ch = nil
	if err := ch.Send(EventCursorLeave, LeaveMessage{ID: s.self.ID}); err != nil {
		log.Printf("[SYNC] cursor leave not sent: %v", err)
	}
	s.cursors = NewCursors()
	s.peers = nil
	s.settled = false
	return ch.Leave()
}

// Detect broadcasts the document if it changed since the last snapshot this
// session sent or applied. It reports whether a snapshot went out.
func (s *Syncer) Detect() bool {
	if s.ch == nil {
		return false
	}
	rev := s.doc.Revision()
	if rev == s.lastSent || rev == s.lastApplied {
		return false
	}
	return s.publish(rev)
}

func (s *Syncer) publish(rev uint64) bool {
	els, conns := s.doc.Snapshot()
	if conns == nil {
		conns = []state.Connection{}
	}
	msg := ElementsMessage{
		SenderID:    s.self.ID,
		Revision:    rev,
		Elements:    els,
		Connections: &conns,
	}
	if err := s.ch.Send(EventElements, msg); err != nil {
		log.Printf("[SYNC] broadcast failed: %v", err)
		return false
	}
	s.lastSent = rev
	return true
}

func (s *Syncer) receivePresence(all []Meta) {
	if s.ch == nil {
		return
	}
	peers := s.withoutSelf(all)
	known := make(map[string]bool, len(s.peers))
	for _, p := range s.peers {
		known[p.Key] = true
	}
	joined := 0
	for _, p := range peers {
		if !known[p.Key] {
			joined++
		}
	}
	s.peers = peers
	if s.settled && joined > 0 {
		els, conns := s.doc.Snapshot()
		if len(els) > 0 || len(conns) > 0 {
			log.Printf("[SYNC] %d collaborator(s) joined, sending current board", joined)
			s.publish(s.doc.Revision())
		}
	}
	s.settled = true
	s.changed()
}

func (s *Syncer) receiveElements(msg ElementsMessage) {
	if msg.SenderID == s.self.ID {
		return
	}
	if last, ok := s.seen[msg.SenderID]; ok && msg.Revision <= last {
		return
	}
	s.seen[msg.SenderID] = msg.Revision
	els := msg.Elements
	if els == nil {
		els = []state.Element{}
	}
	var conns []state.Connection
	if msg.Connections != nil {
		conns = *msg.Connections
		if conns == nil {
			conns = []state.Connection{}
		}
	}
	s.doc.ApplyRemote(els, conns)
	s.lastApplied = s.doc.Revision()
	s.changed()
}

func (s *Syncer) receiveCursor(msg CursorMessage) {
	if msg.ID == s.self.ID {
		return
	}
	s.cursors.Put(msg, s.opts.Now())
	s.changed()
}

// MoveCursor publishes the local pointer in canvas coordinates, at most once per
// throttle interval. It reports whether the position was sent.
func (s *Syncer) MoveCursor(p state.Point) bool {
	if s.ch == nil {
		return false
	}
	now := s.opts.Now()
	if !s.lastCursor.IsZero() && now.Sub(s.lastCursor) < s.opts.CursorThrottle {
		return false
	}
	s.lastCursor = now
	err := s.ch.Send(EventCursor, CursorMessage{
		ID:    s.self.ID,
		Name:  s.self.Name,
		Color: s.self.Color,
		X:     p.X,
		Y:     p.Y,
	})
	return err == nil
}

// Sweep forgets cursors that have gone quiet.
func (s *Syncer) Sweep() {
	if n := s.cursors.Sweep(s.opts.Now(), s.opts.CursorTTL); n > 0 {
		s.changed()
	}
}

// Run sweeps stale cursors until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.opts.Exec(s.Sweep)
		}
	}
}

func (s *Syncer) Cursors() []RemoteCursor { return s.cursors.List() }

// Peers lists the other members of the room.
func (s *Syncer) Peers() []Meta {
	return append([]Meta(nil), s.peers...)
}

func (s *Syncer) withoutSelf(all []Meta) []Meta {
	out := make([]Meta, 0, len(all))
	for _, m := range all {
		if m.Key == s.self.ID {
			continue
		}
		if m.Name == "" {
			m.Name = anonymousName
		}
		if m.Color == "" {
			m.Color = anonymousColor
		}
		out = append(out, m)
	}
	return out
}

func (s *Syncer) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
