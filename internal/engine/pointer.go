package engine

import (
	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/state"
)

const (
	textWidth    = 200
	textHeight   = 30
	stickySize   = 150
	stickyStroke = "#1E293B"
)

func (e *Engine) PointerDown(ev PointerEvent) {
	if e.mode == ModeEditingText {
		e.CommitText()
	}
	if e.mode != ModeIdle {
		return
	}
	p := e.camera.ScreenToCanvas(ev.Screen)

	if e.tool == ToolHand || ev.Button == ButtonMiddle || ev.Alt {
		e.mode = ModePanning
		e.lastScreen = ev.Screen
		return
	}
	if ev.Button != ButtonPrimary {
		return
	}

	switch e.tool {
	case ToolSelect:
		e.selectDown(p)
	case ToolEraser:
		e.erase(p)
	case ToolText, ToolSticky:
		e.createLabel(p)
	default:
		kind, ok := e.tool.kind()
		if !ok {
			return
		}
		el := e.newElement(kind, p)
		e.preview = &el
		e.dragStart = p
		e.mode = ModeCreating
	}
}

func (e *Engine) selectDown(p state.Point) {
	if src, anchor, ok := e.connectionPointAt(p, ""); ok {
		e.connect = &connectGesture{
			sourceID:   src.ID,
			source:     anchor,
			sourceRect: geom.Bounds(src),
			end:        p,
		}
		e.mode = ModeConnecting
		return
	}

	if ids := e.store.Selected(); len(ids) == 1 {
		if el, ok := e.store.Get(ids[0]); ok {
			b := geom.Bounds(el)
			if h, ok := geom.HitTestHandle(p, geom.HandlePositions(b), geom.HandleTolerance); ok {
				e.resize = &resizeGesture{id: el.ID, handle: h, start: b, startPoint: p, origin: el}
				e.mode = ModeResizing
				return
			}
		}
	}

	hit, ok := e.store.Topmost(func(el *state.Element) bool { return geom.HitTest(p, *el) })
	if !ok {
		e.store.SetSelected()
		return
	}
	if !e.store.IsSelected(hit.ID) {
		e.store.SetSelected(hit.ID)
	}
	g := &moveGesture{startPoint: p, origins: make(map[string]state.Element)}
	for _, id := range e.store.Selected() {
		if el, ok := e.store.Get(id); ok {
			g.origins[id] = el
		}
	}
	e.move = g
	e.mode = ModeMoving
}

// connectionPointAt finds the topmost connectable element with a connection point
// under p, skipping the element with id exclude.
func (e *Engine) connectionPointAt(p state.Point, exclude string) (state.Element, state.Anchor, bool) {
	var anchor state.Anchor
	el, ok := e.store.Topmost(func(el *state.Element) bool {
		if el.ID == exclude || !geom.Connectable(el.Kind) {
			return false
		}
		a, hit := geom.HitTestConnectionPoint(p, geom.ConnectionPoints(geom.Bounds(*el)), geom.ConnectionPointRadius)
		if hit {
			anchor = a
		}
		return hit
	})
	return el, anchor, ok
}

func (e *Engine) erase(p state.Point) {
	if hit, ok := e.store.Topmost(func(el *state.Element) bool { return geom.HitTest(p, *el) }); ok {
		e.store.Delete(hit.ID)
		e.commit()
		return
	}
	if c, ok := e.connectorAt(p); ok {
		e.conns.Remove(c.ID)
	}
}

func (e *Engine) connectorAt(p state.Point) (state.Connection, bool) {
	live := e.conns.Live(e.store)
	for i := len(live) - 1; i >= 0; i-- {
		curve, ok := e.curve(live[i])
		if ok && curve.Distance(p) <= geom.ConnectorHitDistance {
			return live[i], true
		}
	}
	return state.Connection{}, false
}

func (e *Engine) curve(c state.Connection) (geom.CubicBez, bool) {
	src, ok := e.store.Get(c.SourceID)
	if !ok {
		return geom.CubicBez{}, false
	}
	dst, ok := e.store.Get(c.TargetID)
	if !ok {
		return geom.CubicBez{}, false
	}
	return geom.Connector(geom.Bounds(src), c.SourceHandle, geom.Bounds(dst), c.TargetHandle), true
}

func (e *Engine) createLabel(p state.Point) {
	var el state.Element
	if e.tool == ToolSticky {
		el = e.newElement(state.KindSticky, p.Add(-stickySize/2, -stickySize/2))
		el.Width, el.Height = stickySize, stickySize
		el.Fill = StickyColors[e.sticky%len(StickyColors)]
		el.Stroke = stickyStroke
		el.StrokeWidth = 0
		e.sticky = (e.sticky + 1) % len(StickyColors)
	} else {
		el = e.newElement(state.KindText, p)
		el.Width, el.Height = textWidth, textHeight
		el.Label().FontSize = e.defaults.FontSize
	}
	e.store.Add(el)
	e.commit()
	e.beginTextEdit(el.ID, "")
}

func (e *Engine) PointerMove(ev PointerEvent) {
	p := e.camera.ScreenToCanvas(ev.Screen)
	switch e.mode {
	case ModePanning:
		e.camera.Pan(ev.Screen.X-e.lastScreen.X, ev.Screen.Y-e.lastScreen.Y)
		e.lastScreen = ev.Screen
	case ModeResizing:
		e.resizeTo(p)
	case ModeMoving:
		e.moveTo(p)
	case ModeCreating:
		e.extendPreview(p)
	case ModeConnecting:
		e.connect.end = p
		e.connect.targetID, e.connect.target = "", ""
		if dst, anchor, ok := e.connectionPointAt(p, e.connect.sourceID); ok {
			e.connect.targetID = dst.ID
			e.connect.target = anchor
			e.connect.end = geom.AnchorOf(geom.Bounds(dst), anchor)
		}
	case ModeIdle:
		e.hovered = ""
		if e.tool != ToolSelect {
			return
		}
		if ids := e.store.Selected(); len(ids) == 1 {
			if el, ok := e.store.Get(ids[0]); ok {
				e.hovered, _ = geom.HitTestHandle(p, geom.HandlePositions(geom.Bounds(el)), geom.HandleTolerance)
			}
		}
	}
}

func (e *Engine) resizeTo(p state.Point) {
	g := e.resize
	r := geom.ResizeBounds(g.start, g.handle, p.X-g.startPoint.X, p.Y-g.startPoint.Y)
	origin := g.origin
	e.store.Update(g.id, func(el *state.Element) {
		el.X, el.Y, el.Width, el.Height = r.X, r.Y, r.Width, r.Height
		switch el.Kind {
		case state.KindPen:
			src := origin.Path()
			dst := el.Path()
			if src == nil || dst == nil || len(src.Points) == 0 {
				return
			}
			pts := make([]state.Point, len(src.Points))
			for i, pt := range src.Points {
				pts[i] = geom.MapPoint(pt, g.start, r)
			}
			dst.Points = pts
		case state.KindArrow:
			start := geom.MapPoint(state.Point{X: origin.X, Y: origin.Y}, g.start, r)
			end := geom.MapPoint(origin.End(), g.start, r)
			el.X, el.Y = start.X, start.Y
			if l := el.Line(); l != nil {
				l.EndX, l.EndY = end.X, end.Y
			}
		case state.KindText, state.KindSticky:
			src := origin.Label()
			dst := el.Label()
			if src == nil || dst == nil {
				return
			}
			dst.FontSize = geom.ScaleFont(el.Kind, src.FontSize, g.start, r)
		}
	})
}

func (e *Engine) moveTo(p state.Point) {
	g := e.move
	dx, dy := p.X-g.startPoint.X, p.Y-g.startPoint.Y
	g.moved = g.moved || dx != 0 || dy != 0
	for id, origin := range g.origins {
		moved := origin.Clone()
		moved.Translate(dx, dy)
		e.store.Update(id, func(el *state.Element) {
			el.X, el.Y = moved.X, moved.Y
			el.Body = moved.Body
		})
	}
}

func (e *Engine) extendPreview(p state.Point) {
	el := e.preview
	switch el.Kind {
	case state.KindPen:
		if path := el.Path(); path != nil {
			path.Points = append(path.Points, p)
		}
	case state.KindArrow:
		if l := el.Line(); l != nil {
			l.EndX, l.EndY = p.X, p.Y
		}
	default:
		r := geom.Normalize(e.dragStart, p)
		el.X, el.Y, el.Width, el.Height = r.X, r.Y, r.Width, r.Height
	}
}

func (e *Engine) PointerUp(ev PointerEvent) {
	switch e.mode {
	case ModePanning:
	case ModeResizing:
		if el, ok := e.store.Get(e.resize.id); ok && !sameElement(el, e.resize.origin) {
			e.commit()
		}
		e.resize = nil
	case ModeMoving:
		if e.move.moved {
			e.commit()
		}
		e.move = nil
	case ModeCreating:
		el := *e.preview
		if el.Kind == state.KindPen {
			b := geom.Bounds(el)
			el.Width, el.Height = b.Width, b.Height
		}
		e.store.Add(el)
		e.commit()
		e.preview = nil
	case ModeConnecting:
		e.finishConnect()
	default:
		return
	}
	e.mode = ModeIdle
}

func (e *Engine) finishConnect() {
	g := e.connect
	e.connect = nil
	if g.targetID == "" || g.targetID == g.sourceID {
		return
	}
	if !e.store.Has(g.sourceID) || !e.store.Has(g.targetID) {
		return
	}
	if e.conns.Exists(g.sourceID, g.source, g.targetID, g.target) {
		return
	}
	e.conns.Add(state.Connection{
		ID:           e.newID(),
		SourceID:     g.sourceID,
		TargetID:     g.targetID,
		SourceHandle: g.source,
		TargetHandle: g.target,
	})
}

// DoubleClick opens the topmost text or sticky element under the pointer for editing,
// whatever tool is active.
func (e *Engine) DoubleClick(ev PointerEvent) {
	if e.mode == ModeEditingText {
		e.CommitText()
	}
	if e.mode != ModeIdle {
		return
	}
	p := e.camera.ScreenToCanvas(ev.Screen)
	hit, ok := e.store.Topmost(func(el *state.Element) bool {
		return (el.Kind == state.KindText || el.Kind == state.KindSticky) && geom.HitTest(p, *el)
	})
	if !ok {
		return
	}
	text := ""
	if l := hit.Label(); l != nil {
		text = l.Text
	}
	e.beginTextEdit(hit.ID, text)
}

// Wheel pans the camera, or zooms about the pointer when Ctrl is held.
func (e *Engine) Wheel(ev WheelEvent) {
	if ev.Ctrl {
		e.camera.ZoomAt(ev.Screen, 1-ev.DY*wheelZoomRate)
		return
	}
	e.camera.Pan(-ev.DX, -ev.DY)
}
