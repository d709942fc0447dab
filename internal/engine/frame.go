package engine

import (
	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/state"
)

// Connector is a live connection with its routed curve.
type Connector struct {
	state.Connection
	Curve geom.CubicBez
}

// Frame is a read-only snapshot of everything a renderer needs. It shares nothing
// with the engine, so it can be drawn on another goroutine.
type Frame struct {
	Elements   []state.Element
	Selected   map[string]bool
	Connectors []Connector
	Camera     state.Camera
	Viewport   state.Point

	Preview          *state.Element
	PreviewConnector *geom.CubicBez
	// Handles holds the resize handles of a single selected element.
	Handles []geom.HandlePoint
	Hovered geom.Handle

	Tool        Tool
	Mode        Mode
	Cursor      string
	EditingID   string
	EditingText string
	Revision    uint64
	CanUndo     bool
	CanRedo     bool
	Defaults    Defaults
}

func (f *Frame) IsSelected(id string) bool { return f.Selected[id] }

// Element returns the element with the given id from the frame.
func (f *Frame) Element(id string) (state.Element, bool) {
	for _, el := range f.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return state.Element{}, false
}

func (e *Engine) Frame() Frame {
	f := Frame{
		Elements:    e.store.Elements(),
		Selected:    make(map[string]bool),
		Camera:      e.camera,
		Viewport:    e.viewport,
		Hovered:     e.hovered,
		Tool:        e.tool,
		Mode:        e.mode,
		Cursor:      e.cursor(),
		EditingID:   e.editingID,
		EditingText: e.editText,
		Revision:    e.Revision(),
		CanUndo:     e.history.CanUndo(),
		CanRedo:     e.history.CanRedo(),
		Defaults:    e.defaults,
	}
	ids := e.store.Selected()
	for _, id := range ids {
		f.Selected[id] = true
	}
	if len(ids) == 1 {
		if el, ok := e.store.Get(ids[0]); ok {
			f.Handles = geom.HandlePositions(geom.Bounds(el))
		}
	}
	for _, c := range e.conns.Live(e.store) {
		if curve, ok := e.curve(c); ok {
			f.Connectors = append(f.Connectors, Connector{Connection: c, Curve: curve})
		}
	}
	if e.preview != nil {
		p := e.preview.Clone()
		f.Preview = &p
	}
	if g := e.connect; g != nil {
		var curve geom.CubicBez
		if dst, ok := e.store.Get(g.targetID); ok {
			curve = geom.Connector(g.sourceRect, g.source, geom.Bounds(dst), g.target)
		} else {
			curve = geom.Preview(g.sourceRect, g.source, g.end)
		}
		f.PreviewConnector = &curve
	}
	return f
}

func (e *Engine) cursor() string {
	if e.hovered != "" {
		return e.hovered.Cursor()
	}
	if e.resize != nil {
		return e.resize.handle.Cursor()
	}
	return e.tool.Cursor(e.mode == ModePanning)
}
