// Package session owns one open board: the engine, its collaboration link and its
// persistence. All access goes through a single mutex, so input from the UI,
// messages from the network and save completions never interleave.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/realtime"
	"CanvasBoard/internal/state"
)

// Persister loads and saves boards.
type Persister interface {
	Load(ctx context.Context, boardID string) ([]state.Element, []state.Connection, error)
	Save(ctx context.Context, boardID string, changed []state.Placed, deleted []string, conns []state.Connection) error
}

type Options struct {
	Board    string
	Identity realtime.Identity
	Sync     realtime.Options
	// Autosave of zero disables periodic saves.
	Autosave time.Duration
}

type Session struct {
	mu      sync.Mutex
	eng     *engine.Engine
	sync    *realtime.Syncer
	tracker *engine.Tracker
	persist Persister
	board   string

	autosave time.Duration
	// saving is non-nil while a save runs and is closed when it has finished.
	saving  chan struct{}
	notices []string
	dirty   bool

	inbox *inbox

	// OnNotice receives user-facing status messages such as save failures.
	OnNotice func(msg string)
	// OnChange is called after remote or asynchronous work changed the board.
	OnChange func()
}

// New wraps eng. persist may be nil for a board that is never saved.
func New(eng *engine.Engine, persist Persister, opts Options) *Session {
	s := &Session{
		eng:      eng,
		tracker:  engine.NewTracker(),
		persist:  persist,
		board:    opts.Board,
		autosave: opts.Autosave,
		inbox:    newInbox(),
	}
	syncOpts := opts.Sync
	syncOpts.Exec = s.inbox.push
	s.sync = realtime.NewSyncer(eng, opts.Identity, syncOpts)
	s.sync.OnChange = func() { s.dirty = true }
	return s
}

func (s *Session) Board() string { return s.board }

func (s *Session) Self() realtime.Identity { return s.sync.Self() }

// Do runs fn with exclusive access to the engine and then shares any resulting
// change with the room.
func (s *Session) Do(fn func(e *engine.Engine)) {
	s.mu.Lock()
	fn(s.eng)
	s.sync.Detect()
	s.mu.Unlock()
}

// Frame snapshots what should be drawn.
func (s *Session) Frame() engine.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Frame()
}

func (s *Session) PointerDown(ev engine.PointerEvent) {
	s.Do(func(e *engine.Engine) { e.PointerDown(ev) })
}
func (s *Session) PointerUp(ev engine.PointerEvent) { s.Do(func(e *engine.Engine) { e.PointerUp(ev) }) }
func (s *Session) DoubleClick(ev engine.PointerEvent) {
	s.Do(func(e *engine.Engine) { e.DoubleClick(ev) })
}
func (s *Session) Wheel(ev engine.WheelEvent) { s.Do(func(e *engine.Engine) { e.Wheel(ev) }) }
func (s *Session) Key(ev engine.KeyEvent)     { s.Do(func(e *engine.Engine) { e.Key(ev) }) }

// PointerMove also publishes the pointer position to collaborators.
func (s *Session) PointerMove(ev engine.PointerEvent) {
	s.Do(func(e *engine.Engine) {
		e.PointerMove(ev)
		s.sync.MoveCursor(e.Camera().ScreenToCanvas(ev.Screen))
	})
}

// Join starts collaborating in the room reached through ps.
func (s *Session) Join(ctx context.Context, ps realtime.PubSub, roomID, key string) error {
	ch, err := ps.Join(ctx, roomID, key)
	if err != nil {
		return fmt.Errorf("joining %s: %w", roomID, err)
	}
	// Attach announces presence, which can be delivered back synchronously; the
	// inbox holds those deliveries until the lock is free.
	s.mu.Lock()
	err = s.sync.Attach(ch)
	s.mu.Unlock()
	if err != nil {
		ch.Leave()
		return fmt.Errorf("announcing in %s: %w", roomID, err)
	}
	s.drain()
	return nil
}

// Leave stops collaborating. The board stays open.
func (s *Session) Leave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.Detach()
}

func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.Connected()
}

func (s *Session) Peers() []realtime.Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.Peers()
}

func (s *Session) Cursors() []realtime.RemoteCursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.Cursors()
}

// Load replaces the board with the persisted copy and starts a fresh history.
func (s *Session) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	els, conns, err := s.persist.Load(ctx, s.board)
	if err != nil {
		return fmt.Errorf("loading board %s: %w", s.board, err)
	}
	s.Do(func(e *engine.Engine) {
		e.Load(els, conns)
		s.tracker.MarkSaved(els, conns)
	})
	return nil
}

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	els, conns := s.eng.Snapshot()
	return s.tracker.Dirty(els, conns)
}

// Save writes unsaved changes in the background. It reports whether a save was
// started; it is not when nothing changed or a save is already running. The
// outcome arrives through OnNotice once Run has processed it.
func (s *Session) Save(ctx context.Context) bool {
	job, ok := s.prepareSave()
	if !ok {
		return false
	}
	go func() {
		err := job.run(ctx, s.persist)
		s.mu.Lock()
		s.finishSave(job, err)
		s.mu.Unlock()
		// wakes Run so the notice is delivered
		s.inbox.push(func() {})
	}()
	return true
}

// SaveNow saves synchronously. A background save still running is waited for
// first, and whatever it did not cover is saved after it.
func (s *Session) SaveNow(ctx context.Context) error {
	if err := s.waitSave(ctx); err != nil {
		return err
	}
	job, ok := s.prepareSave()
	if !ok {
		s.flushNotices()
		return nil
	}
	err := job.run(ctx, s.persist)
	s.mu.Lock()
	s.finishSave(job, err)
	s.mu.Unlock()
	s.flushNotices()
	return err
}

// waitSave blocks until no save is running.
func (s *Session) waitSave(ctx context.Context) error {
	for {
		s.mu.Lock()
		done := s.saving
		s.mu.Unlock()
		if done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for save of board %s: %w", s.board, ctx.Err())
		}
	}
}

type saveJob struct {
	board   string
	els     []state.Element
	conns   []state.Connection
	changed []state.Placed
	deleted []string
}

func (j saveJob) run(ctx context.Context, p Persister) error {
	return p.Save(ctx, j.board, j.changed, j.deleted, j.conns)
}

func (s *Session) prepareSave() (saveJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persist == nil || s.saving != nil {
		return saveJob{}, false
	}
	els, conns := s.eng.Snapshot()
	if !s.tracker.Dirty(els, conns) {
		return saveJob{}, false
	}
	changed, deleted := s.tracker.Diff(els)
	s.saving = make(chan struct{})
	return saveJob{board: s.board, els: els, conns: conns, changed: changed, deleted: deleted}, true
}

// finishSave runs with the lock held.
func (s *Session) finishSave(job saveJob, err error) {
	close(s.saving)
	s.saving = nil
	if err != nil {
		log.Printf("[STORE] save of board %s failed: %v", job.board, err)
		s.notices = append(s.notices, fmt.Sprintf("Save failed: %v", err))
		return
	}
	s.tracker.MarkSaved(job.els, job.conns)
	s.notices = append(s.notices, fmt.Sprintf("Saved %d change(s)", len(job.changed)+len(job.deleted)))
}

// Run processes network deliveries and save notices, sweeps stale cursors and
// autosaves, until ctx is done.
func (s *Session) Run(ctx context.Context) {
	go s.sync.Run(ctx)

	var tick <-chan time.Time
	if s.autosave > 0 && s.persist != nil {
		t := time.NewTicker(s.autosave)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.inbox.wake:
			s.drain()
		case <-tick:
			s.Save(ctx)
		}
	}
}

// drain runs queued work in order, each item under the lock.
func (s *Session) drain() {
	changed := false
	for _, fn := range s.inbox.take() {
		s.mu.Lock()
		fn()
		if s.dirty {
			changed = true
			s.dirty = false
		}
		s.mu.Unlock()
	}
	s.flushNotices()
	if changed && s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Session) flushNotices() {
	s.mu.Lock()
	notices := s.notices
	s.notices = nil
	s.mu.Unlock()
	if s.OnNotice == nil {
		return
	}
	for _, n := range notices {
		s.OnNotice(n)
	}
}

// Close leaves the room and saves what is left.
func (s *Session) Close(ctx context.Context) error {
	if err := s.Leave(); err != nil {
		log.Printf("[SYNC] leave failed: %v", err)
	}
	return s.SaveNow(ctx)
}
