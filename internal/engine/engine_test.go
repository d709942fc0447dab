package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/state"
)

func newTestEngine() *Engine {
	e := New()
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("el-%d", n)
	}
	return e
}

func at(x, y float64) PointerEvent {
	return PointerEvent{Screen: state.Point{X: x, Y: y}}
}

func drag(e *Engine, from, to state.Point, steps int) {
	e.PointerDown(at(from.X, from.Y))
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		e.PointerMove(at(from.X+(to.X-from.X)*f, from.Y+(to.Y-from.Y)*f))
	}
	e.PointerUp(at(to.X, to.Y))
}

func addRect(e *Engine, x, y, w, h float64) string {
	el := e.newElement(state.KindRectangle, state.Point{X: x, Y: y})
	el.Width, el.Height = w, h
	e.store.Add(el)
	e.commit()
	return el.ID
}

func TestCreateRectangle(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolRectangle)
	before := e.History().Len()

	drag(e, state.Point{X: 10, Y: 10}, state.Point{X: 110, Y: 60}, 4)

	els := e.Store().Elements()
	require.Len(t, els, 1)
	assert.Equal(t, state.KindRectangle, els[0].Kind)
	assert.Equal(t, state.Rect{X: 10, Y: 10, Width: 100, Height: 50},
		state.Rect{X: els[0].X, Y: els[0].Y, Width: els[0].Width, Height: els[0].Height})
	assert.Equal(t, before+1, e.History().Len())
	assert.Equal(t, ModeIdle, e.Mode())
}

func TestCreateShapeNormalizesBackwardDrag(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolEllipse)
	drag(e, state.Point{X: 100, Y: 100}, state.Point{X: 40, Y: 70}, 2)

	el := e.Store().Elements()[0]
	assert.Equal(t, 40.0, el.X)
	assert.Equal(t, 70.0, el.Y)
	assert.Equal(t, 60.0, el.Width)
	assert.Equal(t, 30.0, el.Height)
}

func TestMoveIsOneHistoryStep(t *testing.T) {
	e := newTestEngine()
	id := addRect(e, 10, 10, 100, 50)
	before := e.History().Len()

	drag(e, state.Point{X: 60, Y: 35}, state.Point{X: 80, Y: 30}, 10)

	el, ok := e.Store().Get(id)
	require.True(t, ok)
	assert.InDelta(t, 30, el.X, 1e-9)
	assert.InDelta(t, 5, el.Y, 1e-9)
	assert.Equal(t, before+1, e.History().Len())
	assert.True(t, e.Store().IsSelected(id))
}

func TestMoveUsesStartSnapshot(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolPen)
	drag(e, state.Point{X: 0, Y: 0}, state.Point{X: 10, Y: 10}, 1)
	e.SetTool(ToolSelect)
	id := e.Store().Elements()[0].ID

	e.PointerDown(at(5, 5))
	for i := 0; i < 500; i++ {
		e.PointerMove(at(5+float64(i%7)*0.1, 5+float64(i%3)*0.1))
	}
	e.PointerMove(at(8, 9))
	e.PointerUp(at(8, 9))

	el, _ := e.Store().Get(id)
	assert.Equal(t, []state.Point{{X: 3, Y: 4}, {X: 13, Y: 14}}, el.Path().Points)
	assert.Equal(t, 3.0, el.X)
}

func TestClickWithoutDragDoesNotRecord(t *testing.T) {
	e := newTestEngine()
	addRect(e, 0, 0, 50, 50)
	before := e.History().Len()
	e.PointerDown(at(25, 25))
	e.PointerUp(at(25, 25))
	assert.Equal(t, before, e.History().Len())

	e.PointerDown(at(500, 500))
	e.PointerUp(at(500, 500))
	assert.Zero(t, e.Store().SelectionLen())
}

func TestDuplicatePen(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolPen)
	e.PointerDown(at(0, 0))
	e.PointerMove(at(5, 5))
	e.PointerMove(at(10, 0))
	e.PointerUp(at(10, 0))
	orig := e.Store().Elements()[0]
	require.Equal(t, []state.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}, orig.Path().Points)

	e.SetTool(ToolSelect)
	e.Select(orig.ID)
	before := e.History().Len()
	e.Key(KeyEvent{Key: "d", Ctrl: true})

	els := e.Store().Elements()
	require.Len(t, els, 2)
	dup := els[1]
	assert.NotEqual(t, orig.ID, dup.ID)
	assert.Equal(t, []state.Point{{X: 20, Y: 20}, {X: 25, Y: 25}, {X: 30, Y: 20}}, dup.Path().Points)
	assert.Equal(t, []state.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}, els[0].Path().Points)
	assert.Equal(t, []string{dup.ID}, e.Store().Selected())
	assert.Equal(t, before+1, e.History().Len())
}

func TestDuplicateArrowShiftsEnd(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolArrow)
	drag(e, state.Point{X: 0, Y: 0}, state.Point{X: 100, Y: 40}, 3)
	e.SetTool(ToolSelect)
	e.Select(e.Store().Elements()[0].ID)
	e.Duplicate()

	dup := e.Store().Elements()[1]
	assert.Equal(t, state.Point{X: 120, Y: 60}, dup.End())
	assert.Equal(t, 20.0, dup.X)
}

func TestResizeRespectsMinimum(t *testing.T) {
	e := newTestEngine()
	id := addRect(e, 10, 10, 100, 50)
	e.Select(id)
	before := e.History().Len()

	// se handle sits 6px outside the corner
	e.PointerDown(at(116, 66))
	require.Equal(t, ModeResizing, e.Mode())
	e.PointerMove(at(-500, -500))
	e.PointerUp(at(-500, -500))

	el, _ := e.Store().Get(id)
	assert.Equal(t, 10.0, el.X)
	assert.Equal(t, 10.0, el.Width)
	assert.Equal(t, 10.0, el.Height)
	assert.Equal(t, before+1, e.History().Len())
}

func TestResizeScalesPenFromStart(t *testing.T) {
	e := newTestEngine()
	el := e.newElement(state.KindPen, state.Point{})
	el.Path().Points = []state.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	e.store.Add(el)
	e.Select(el.ID)

	e.PointerDown(at(106, 106))
	require.Equal(t, ModeResizing, e.Mode())
	for i := 0; i < 20; i++ {
		e.PointerMove(at(106+float64(i)*13, 106+float64(i)*7))
	}
	e.PointerMove(at(206, 206))
	e.PointerUp(at(206, 206))

	got, _ := e.Store().Get(el.ID)
	assert.Equal(t, []state.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 200}}, got.Path().Points)
}

func TestResizeScalesTextFont(t *testing.T) {
	e := newTestEngine()
	el := e.newElement(state.KindText, state.Point{})
	el.Label().Text = "hi"
	e.store.Add(el)
	e.Select(el.ID)
	b := geom.Bounds(el)

	e.PointerDown(at(b.Right()+6, b.Bottom()+6))
	require.Equal(t, ModeResizing, e.Mode())
	e.PointerMove(at(b.Right()+6+b.Width, b.Bottom()+6+b.Height))
	e.PointerUp(at(0, 0))

	got, _ := e.Store().Get(el.ID)
	assert.Equal(t, 32.0, got.Label().FontSize)
}

func TestKeyboardShortcuts(t *testing.T) {
	e := newTestEngine()
	id := addRect(e, 0, 0, 10, 10)
	e.Select(id)

	e.Key(KeyEvent{Key: KeyDelete})
	assert.Zero(t, e.Store().Len())

	e.Key(KeyEvent{Key: "z", Ctrl: true})
	assert.Equal(t, 1, e.Store().Len())
	assert.Zero(t, e.Store().SelectionLen(), "undo clears the selection")

	e.Key(KeyEvent{Key: "z", Meta: true, Shift: true})
	assert.Zero(t, e.Store().Len())
	e.Key(KeyEvent{Key: "z", Ctrl: true})
	e.Key(KeyEvent{Key: "y", Ctrl: true})
	assert.Zero(t, e.Store().Len())

	for key, tool := range shortcuts {
		e.Key(KeyEvent{Key: key})
		assert.Equal(t, tool, e.Tool(), key)
	}
	e.Key(KeyEvent{Key: "e"})
	e.Key(KeyEvent{Key: "r", Ctrl: true})
	assert.Equal(t, ToolEraser, e.Tool(), "modified letters do not switch tools")
}

func TestKeysDuringDragAreIgnored(t *testing.T) {
	e := newTestEngine()
	id := addRect(e, 10, 10, 100, 50)
	before := e.History().Len()

	e.PointerDown(at(60, 35))
	e.PointerMove(at(70, 35))
	require.Equal(t, ModeMoving, e.Mode())
	e.Key(KeyEvent{Key: KeyDelete})
	e.Key(KeyEvent{Key: "d", Ctrl: true})
	e.Key(KeyEvent{Key: "z", Ctrl: true})
	e.Key(KeyEvent{Key: "p"})
	assert.Nil(t, e.Duplicate())
	assert.False(t, e.DeleteSelected())
	e.PointerMove(at(80, 35))
	e.PointerUp(at(80, 35))

	require.Equal(t, 1, e.Store().Len())
	el, ok := e.Store().Get(id)
	require.True(t, ok)
	assert.InDelta(t, 30, el.X, 1e-9)
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Equal(t, before+1, e.History().Len(), "the move alone is recorded")

	e.Key(KeyEvent{Key: KeyDelete})
	assert.Zero(t, e.Store().Len())
}

func TestTextEditing(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolText)
	e.PointerDown(at(40, 50))
	require.Equal(t, ModeEditingText, e.Mode())
	id := e.EditingID()
	el, _ := e.Store().Get(id)
	assert.Equal(t, 40.0, el.X)
	assert.Equal(t, 200.0, el.Width)
	afterCreate := e.History().Len()

	// shortcuts are inert while typing
	e.Key(KeyEvent{Key: "r"})
	assert.Equal(t, ToolText, e.Tool())

	e.TextInput("hello\nworld")
	e.Key(KeyEvent{Key: KeyEnter, Shift: true})
	assert.Equal(t, ModeEditingText, e.Mode())
	e.Key(KeyEvent{Key: KeyEnter})
	assert.Equal(t, ModeIdle, e.Mode())

	el, _ = e.Store().Get(id)
	assert.Equal(t, "hello\nworld", el.Label().Text)
	assert.Equal(t, afterCreate+1, e.History().Len())

	e.SetTool(ToolSelect)
	e.DoubleClick(at(45, 55))
	require.Equal(t, ModeEditingText, e.Mode())
	assert.Equal(t, "hello\nworld", e.EditingText())
	e.TextInput("discarded")
	e.Key(KeyEvent{Key: KeyEscape})

	el, _ = e.Store().Get(id)
	assert.Equal(t, "hello\nworld", el.Label().Text)
	assert.Equal(t, afterCreate+1, e.History().Len())
}

func TestStickyPlacementAndPalette(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolSticky)
	for i := 0; i < len(StickyColors)+1; i++ {
		e.PointerDown(at(200, 200))
		e.CommitText()
	}
	els := e.Store().Elements()
	assert.Equal(t, 125.0, els[0].X)
	assert.Equal(t, 150.0, els[0].Width)
	assert.Equal(t, float64(state.DefaultStickyFontSize), els[0].Label().FontSize)
	assert.Equal(t, StickyColors[0], els[0].Fill)
	assert.Equal(t, StickyColors[1], els[1].Fill)
	assert.Equal(t, StickyColors[0], els[len(StickyColors)].Fill)
}

func TestEraser(t *testing.T) {
	e := newTestEngine()
	a := addRect(e, 0, 0, 100, 100)
	b := addRect(e, 50, 50, 100, 100)
	e.SetTool(ToolEraser)
	before := e.History().Len()

	e.PointerDown(at(75, 75))
	e.PointerUp(at(75, 75))
	assert.False(t, e.Store().Has(b), "topmost goes first")
	assert.True(t, e.Store().Has(a))
	assert.Equal(t, before+1, e.History().Len())

	e.PointerDown(at(900, 900))
	assert.Equal(t, before+1, e.History().Len())
}

func TestConnectGesture(t *testing.T) {
	e := newTestEngine()
	a := addRect(e, 0, 0, 100, 100)
	b := addRect(e, 300, 0, 100, 100)

	e.PointerDown(at(100, 50))
	require.Equal(t, ModeConnecting, e.Mode())
	e.PointerMove(at(200, 80))
	f := e.Frame()
	require.NotNil(t, f.PreviewConnector)
	assert.Equal(t, state.Point{X: 200, Y: 80}, f.PreviewConnector.P3)

	e.PointerMove(at(303, 52))
	assert.Equal(t, state.Point{X: 300, Y: 50}, e.Frame().PreviewConnector.P3, "snaps to the anchor")
	e.PointerUp(at(303, 52))

	conns := e.Connections().All()
	require.Len(t, conns, 1)
	assert.Equal(t, a, conns[0].SourceID)
	assert.Equal(t, b, conns[0].TargetID)
	assert.Equal(t, state.AnchorRight, conns[0].SourceHandle)
	assert.Equal(t, state.AnchorLeft, conns[0].TargetHandle)
	assert.Len(t, e.Frame().Connectors, 1)

	// released over nothing: discarded
	e.PointerDown(at(50, 100))
	e.PointerUp(at(200, 300))
	assert.Equal(t, 1, e.Connections().Len())

	// erasing the curve removes the connection, not the elements
	e.SetTool(ToolEraser)
	e.PointerDown(at(200, 50))
	assert.Zero(t, e.Connections().Len())
	assert.Equal(t, 2, e.Store().Len())
}

func TestDanglingConnectionIsSkipped(t *testing.T) {
	e := newTestEngine()
	a := addRect(e, 0, 0, 100, 100)
	e.Connections().Add(state.Connection{ID: "c", SourceID: a, TargetID: "gone",
		SourceHandle: state.AnchorTop, TargetHandle: state.AnchorLeft})
	assert.Empty(t, e.Frame().Connectors)
	assert.Equal(t, 1, e.Connections().Len())
}

func TestPanningAndWheel(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolHand)
	drag(e, state.Point{X: 10, Y: 10}, state.Point{X: 40, Y: 50}, 3)
	assert.InDelta(t, 30, e.Camera().X, 1e-9)
	assert.InDelta(t, 40, e.Camera().Y, 1e-9)

	e.SetTool(ToolSelect)
	e.PointerDown(PointerEvent{Screen: state.Point{X: 0, Y: 0}, Button: ButtonMiddle})
	assert.Equal(t, ModePanning, e.Mode())
	e.PointerUp(at(0, 0))

	anchor := state.Point{X: 400, Y: 300}
	before := e.Camera().ScreenToCanvas(anchor)
	e.Wheel(WheelEvent{Screen: anchor, DY: -500, Ctrl: true})
	assert.InDelta(t, 1.5, e.Camera().Zoom, 1e-9)
	after := e.Camera().ScreenToCanvas(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	cam := e.Camera()
	e.Wheel(WheelEvent{DX: 5, DY: 7})
	assert.InDelta(t, cam.X-5, e.Camera().X, 1e-9)
	assert.InDelta(t, cam.Y-7, e.Camera().Y, 1e-9)
}

func TestStyleSetters(t *testing.T) {
	e := newTestEngine()
	id := addRect(e, 0, 0, 10, 10)
	before := e.History().Len()

	e.SetStrokeColor("#DC2626")
	assert.Equal(t, "#DC2626", e.Defaults().Stroke)
	assert.Equal(t, before, e.History().Len(), "no selection, defaults only")

	e.Select(id)
	e.SetFillColor("#2563EB")
	el, _ := e.Store().Get(id)
	assert.Equal(t, "#2563EB", el.Fill)
	assert.Equal(t, before+1, e.History().Len())

	e.SetFillColor("#2563EB")
	assert.Equal(t, before+1, e.History().Len(), "unchanged style records nothing")

	e.SetTool(ToolRectangle)
	drag(e, state.Point{X: 0, Y: 0}, state.Point{X: 5, Y: 5}, 1)
	created := e.Store().Elements()[1]
	assert.Equal(t, "#DC2626", created.Stroke)
	assert.Equal(t, "#2563EB", created.Fill)
}

func TestCopyPaste(t *testing.T) {
	e := newTestEngine()
	id := addRect(e, 5, 5, 10, 10)
	e.Select(id)
	data, err := e.Copy()
	require.NoError(t, err)

	other := newTestEngine()
	other.newID = func() string { return "pasted" }
	ids, err := other.Paste(data)
	require.NoError(t, err)
	require.Equal(t, []string{"pasted"}, ids)
	el, _ := other.Store().Get("pasted")
	assert.Equal(t, 25.0, el.X)

	_, err = other.Paste([]byte("not json"))
	assert.Error(t, err)
}

func TestClearAllIsUndoable(t *testing.T) {
	e := newTestEngine()
	addRect(e, 0, 0, 1, 1)
	addRect(e, 2, 2, 1, 1)
	e.ClearAll()
	assert.Zero(t, e.Store().Len())
	e.Undo()
	assert.Equal(t, 2, e.Store().Len())
}

func TestFrameIsDetached(t *testing.T) {
	e := newTestEngine()
	id := addRect(e, 0, 0, 10, 10)
	e.Select(id)
	f := e.Frame()
	require.Len(t, f.Handles, 8)
	assert.True(t, f.IsSelected(id))

	f.Elements[0].X = 999
	el, _ := e.Store().Get(id)
	assert.Equal(t, 0.0, el.X)
}

func TestApplyRemoteAbandonsVanishedEdit(t *testing.T) {
	e := newTestEngine()
	e.SetTool(ToolText)
	e.PointerDown(at(0, 0))
	require.Equal(t, ModeEditingText, e.Mode())
	before := e.History().Len()

	e.ApplyRemote(nil, nil)
	assert.Equal(t, ModeIdle, e.Mode())
	assert.Equal(t, before, e.History().Len())
}

func TestTracker(t *testing.T) {
	e := newTestEngine()
	a := addRect(e, 0, 0, 1, 1)
	b := addRect(e, 2, 2, 1, 1)
	tr := NewTracker()
	els, conns := e.Snapshot()
	tr.MarkSaved(els, conns)
	assert.False(t, tr.Dirty(els, conns))

	e.Store().Delete(a)
	c := addRect(e, 4, 4, 1, 1)
	els, _ = e.Snapshot()
	changed, deleted := tr.Diff(els)
	assert.Equal(t, []string{a}, deleted)
	require.Len(t, changed, 2)
	assert.Equal(t, b, changed[0].Element.ID, "z position moved")
	assert.Equal(t, 0, changed[0].Z)
	assert.Equal(t, c, changed[1].Element.ID)

	tr.MarkSaved(els, conns)
	e.Connections().Add(state.Connection{ID: "x", SourceID: b, TargetID: c})
	_, conns = e.Snapshot()
	assert.True(t, tr.Dirty(els, conns))
}
