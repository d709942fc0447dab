package engine

import "CanvasBoard/internal/state"

type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// PointerEvent carries a pointer position in screen coordinates, relative to the
// top-left of the canvas surface.
type PointerEvent struct {
	Screen state.Point
	Button Button
	Alt    bool
}

type WheelEvent struct {
	Screen state.Point
	DX, DY float64
	// Ctrl is set for pinch gestures and ctrl/cmd+wheel, which zoom instead of pan.
	Ctrl bool
}

// KeyEvent names keys the way the toolkit reports them: single letters in lower
// case, otherwise "Delete", "Backspace", "Escape", "Enter".
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
}

func (k KeyEvent) command() bool { return k.Ctrl || k.Meta }

const (
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
)

// wheelZoomRate converts wheel delta into a zoom factor.
const wheelZoomRate = 0.001
