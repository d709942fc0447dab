// Package engine is the canvas interaction state machine. It turns pointer, wheel and
// keyboard input into edits of the element store, records history and exposes a
// read-only Frame for renderers. An Engine is not safe for concurrent use; the
// session serializes every call.
package engine

import (
	"log"

	"github.com/google/uuid"

	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/state"
)

type Engine struct {
	store   *state.Store
	history *state.History
	conns   *state.Connections

	camera   state.Camera
	viewport state.Point

	tool     Tool
	mode     Mode
	defaults Defaults
	sticky   int
	newID    func() string

	// gesture state, valid while mode != ModeIdle
	lastScreen state.Point
	dragStart  state.Point
	preview    *state.Element
	resize     *resizeGesture
	move       *moveGesture
	connect    *connectGesture

	hovered   geom.Handle
	editingID string
	editText  string
}

type resizeGesture struct {
	id         string
	handle     geom.Handle
	start      state.Rect
	startPoint state.Point
	origin     state.Element
}

type moveGesture struct {
	startPoint state.Point
	origins    map[string]state.Element
	moved      bool
}

type connectGesture struct {
	sourceID   string
	source     state.Anchor
	sourceRect state.Rect
	end        state.Point
	targetID   string
	target     state.Anchor
}

func New() *Engine {
	return &Engine{
		store:    state.NewStore(),
		history:  state.NewHistory(),
		conns:    state.NewConnections(),
		camera:   state.NewCamera(),
		viewport: state.Point{X: 1280, Y: 800},
		defaults: DefaultStyle(),
		newID:    uuid.NewString,
	}
}

func (e *Engine) Store() *state.Store             { return e.store }
func (e *Engine) History() *state.History         { return e.history }
func (e *Engine) Connections() *state.Connections { return e.conns }
func (e *Engine) Camera() state.Camera            { return e.camera }
func (e *Engine) Tool() Tool                      { return e.tool }
func (e *Engine) Mode() Mode                      { return e.mode }
func (e *Engine) Defaults() Defaults              { return e.defaults }
func (e *Engine) EditingID() string               { return e.editingID }
func (e *Engine) EditingText() string             { return e.editText }

// Revision changes whenever elements or connections change.
func (e *Engine) Revision() uint64 {
	return e.store.Revision() + e.conns.Revision()
}

// SetViewport records the size of the drawing surface in screen pixels.
func (e *Engine) SetViewport(size state.Point) { e.viewport = size }

func (e *Engine) Viewport() state.Point { return e.viewport }

func (e *Engine) SetCamera(c state.Camera) {
	c.SetZoom(c.Zoom)
	e.camera = c
}

func (e *Engine) ZoomIn()    { e.camera.ZoomIn(e.viewport) }
func (e *Engine) ZoomOut()   { e.camera.ZoomOut(e.viewport) }
func (e *Engine) ResetView() { e.camera.Reset() }

func (e *Engine) ZoomPercent() int {
	return int(e.camera.Zoom*100 + 0.5)
}

// SetTool switches tools. Any selection and any text edit in progress are dropped.
func (e *Engine) SetTool(t Tool) {
	if e.mode == ModeEditingText {
		e.endTextEdit()
	}
	e.tool = t
	e.store.SetSelected()
	e.hovered = ""
}

func (e *Engine) commit() {
	e.history.Push(e.store)
}

func (e *Engine) Undo() bool {
	if e.mode != ModeIdle {
		return false
	}
	return e.history.Undo(e.store)
}

func (e *Engine) Redo() bool {
	if e.mode != ModeIdle {
		return false
	}
	return e.history.Redo(e.store)
}

// Load replaces the board contents and starts a fresh history.
func (e *Engine) Load(els []state.Element, conns []state.Connection) {
	e.cancelGesture()
	e.store.ReplaceAll(els)
	e.store.SetSelected()
	e.conns.ReplaceAll(conns)
	e.history.Reset(e.store)
}

// Snapshot returns deep copies of the elements and connections.
func (e *Engine) Snapshot() ([]state.Element, []state.Connection) {
	return e.store.Elements(), e.conns.All()
}

// ApplyRemote swaps in a snapshot received from a collaborator. It neither records
// history nor disturbs the camera. A text edit on an element that no longer exists
// is abandoned.
func (e *Engine) ApplyRemote(els []state.Element, conns []state.Connection) {
	e.store.ReplaceAll(els)
	if conns != nil {
		e.conns.ReplaceAll(conns)
	}
	if e.editingID != "" && !e.store.Has(e.editingID) {
		log.Printf("[STATE] element %s removed remotely while editing", e.editingID)
		e.endTextEdit()
	}
}

// cancelGesture drops any in-flight gesture without touching the store.
func (e *Engine) cancelGesture() {
	e.mode = ModeIdle
	e.preview = nil
	e.resize = nil
	e.move = nil
	e.connect = nil
	e.editingID = ""
	e.editText = ""
}

func (e *Engine) newElement(kind state.Kind, p state.Point) state.Element {
	style := state.Style{
		Stroke:      e.defaults.Stroke,
		StrokeWidth: e.defaults.StrokeWidth,
		Fill:        state.Transparent,
		Opacity:     1,
	}
	switch kind {
	case state.KindRectangle, state.KindEllipse, state.KindDiamond:
		style.Fill = e.defaults.Fill
	}
	return state.NewElement(e.newID(), kind, p.X, p.Y, style)
}
