package ui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/realtime"
	"CanvasBoard/internal/session"
	"CanvasBoard/internal/state"
)

// scrollScale converts toolkit scroll steps into the pixel deltas the engine expects.
const scrollScale = 4

// Board is the drawing surface. It forwards input to the session and draws the
// most recent frame handed to it by the refresh loop.
type Board struct {
	widget.BaseWidget
	session *session.Session

	mu      sync.RWMutex
	frame   engine.Frame
	cursors []realtime.RemoteCursor

	shift, ctrl, super bool
}

var (
	_ fyne.Widget         = (*Board)(nil)
	_ fyne.Draggable      = (*Board)(nil)
	_ fyne.DoubleTappable = (*Board)(nil)
	_ fyne.Scrollable     = (*Board)(nil)
	_ desktop.Mouseable   = (*Board)(nil)
	_ desktop.Hoverable   = (*Board)(nil)
	_ desktop.Keyable     = (*Board)(nil)
	_ desktop.Cursorable  = (*Board)(nil)
)

func NewBoard(s *session.Session) *Board {
	b := &Board{session: s, frame: s.Frame()}
	b.ExtendBaseWidget(b)
	return b
}

// show installs a new frame; call on the UI goroutine.
func (b *Board) show(f engine.Frame, cursors []realtime.RemoteCursor) {
	b.mu.Lock()
	b.frame = f
	b.cursors = cursors
	b.mu.Unlock()
	b.Refresh()
}

func (b *Board) snapshot() (engine.Frame, []realtime.RemoteCursor) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frame, b.cursors
}

func toPoint(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

func button(b desktop.MouseButton) engine.Button {
	switch b {
	case desktop.MouseButtonTertiary:
		return engine.ButtonMiddle
	case desktop.MouseButtonSecondary:
		return engine.ButtonSecondary
	}
	return engine.ButtonPrimary
}

func (b *Board) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.session.Do(func(e *engine.Engine) {
		e.SetViewport(state.Point{X: float64(size.Width), Y: float64(size.Height)})
	})
}

func (b *Board) MouseDown(ev *desktop.MouseEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(b)
	}
	b.session.PointerDown(engine.PointerEvent{
		Screen: toPoint(ev.Position),
		Button: button(ev.Button),
		Alt:    ev.Modifier&fyne.KeyModifierAlt != 0,
	})
}

func (b *Board) MouseUp(ev *desktop.MouseEvent) {
	b.session.PointerUp(engine.PointerEvent{Screen: toPoint(ev.Position), Button: button(ev.Button)})
}

func (b *Board) MouseMoved(ev *desktop.MouseEvent) {
	b.session.PointerMove(engine.PointerEvent{Screen: toPoint(ev.Position), Button: button(ev.Button)})
}

func (b *Board) Dragged(ev *fyne.DragEvent) {
	b.session.PointerMove(engine.PointerEvent{Screen: toPoint(ev.Position)})
}

func (b *Board) MouseIn(*desktop.MouseEvent) {}
func (b *Board) MouseOut()                   {}
func (b *Board) DragEnd()                    {}

func (b *Board) DoubleTapped(ev *fyne.PointEvent) {
	b.session.DoubleClick(engine.PointerEvent{Screen: toPoint(ev.Position)})
}

func (b *Board) Scrolled(ev *fyne.ScrollEvent) {
	b.session.Wheel(engine.WheelEvent{
		Screen: toPoint(ev.Position),
		DX:     -float64(ev.Scrolled.DX) * scrollScale,
		DY:     -float64(ev.Scrolled.DY) * scrollScale,
		Ctrl:   b.ctrl || b.super,
	})
}

func (b *Board) Cursor() desktop.Cursor {
	f, _ := b.snapshot()
	switch f.Cursor {
	case "crosshair":
		return desktop.CrosshairCursor
	case "text":
		return desktop.TextCursor
	case "pointer", "grab", "grabbing", "move":
		return desktop.PointerCursor
	case "ew-resize":
		return desktop.HResizeCursor
	case "ns-resize":
		return desktop.VResizeCursor
	case "nwse-resize", "nesw-resize":
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}

func (b *Board) FocusGained() {}

// FocusLost commits an open text edit, as clicking elsewhere would.
func (b *Board) FocusLost() {
	b.session.Do(func(e *engine.Engine) { e.CommitText() })
}

func (b *Board) KeyDown(ev *fyne.KeyEvent) {
	switch ev.Name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		b.shift = true
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		b.ctrl = true
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		b.super = true
	}
}

func (b *Board) KeyUp(ev *fyne.KeyEvent) {
	switch ev.Name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		b.shift = false
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		b.ctrl = false
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		b.super = false
	}
}

func (b *Board) TypedRune(r rune) {
	b.session.Do(func(e *engine.Engine) {
		if e.Mode() == engine.ModeEditingText {
			e.TextInput(e.EditingText() + string(r))
			return
		}
		e.Key(engine.KeyEvent{Key: strings.ToLower(string(r)), Shift: b.shift})
	})
}

func (b *Board) TypedKey(ev *fyne.KeyEvent) {
	b.session.Do(func(e *engine.Engine) {
		editing := e.Mode() == engine.ModeEditingText
		switch ev.Name {
		case fyne.KeyBackspace:
			if editing {
				text := []rune(e.EditingText())
				if len(text) > 0 {
					e.TextInput(string(text[:len(text)-1]))
				}
				return
			}
			e.Key(engine.KeyEvent{Key: engine.KeyBackspace})
		case fyne.KeyDelete:
			if !editing {
				e.Key(engine.KeyEvent{Key: engine.KeyDelete})
			}
		case fyne.KeyEscape:
			e.Key(engine.KeyEvent{Key: engine.KeyEscape})
		case fyne.KeyReturn, fyne.KeyEnter:
			if editing && b.shift {
				e.TextInput(e.EditingText() + "\n")
				return
			}
			e.Key(engine.KeyEvent{Key: engine.KeyEnter, Shift: b.shift})
		}
	})
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	return newBoardRenderer(b)
}

func (b *Board) MinSize() fyne.Size { return fyne.NewSize(300, 300) }
