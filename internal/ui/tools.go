package ui

import (
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/export"
	"CanvasBoard/internal/state"
)

// --- Colour swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	fill, ok := export.ParseColor(s.Hex)
	rect := canvas.NewRectangle(fill)
	rect.SetMinSize(fyne.NewSize(22, 22))
	if !ok {
		rect.FillColor = color.Transparent
	}

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	objs := []fyne.CanvasObject{rect, border}
	if !ok {
		// "none" is shown struck through
		slash := canvas.NewLine(color.NRGBA{R: 0xDC, G: 0x26, B: 0x26, A: 0xff})
		slash.StrokeWidth = 2
		objs = append(objs, container.New(diagonal{}, slash))
	}
	return widget.NewSimpleRenderer(container.NewStack(objs...))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// diagonal lays a line out corner to corner.
type diagonal struct{}

func (diagonal) Layout(objs []fyne.CanvasObject, size fyne.Size) {
	for _, o := range objs {
		if ln, ok := o.(*canvas.Line); ok {
			ln.Position1 = fyne.NewPos(2, size.Height-2)
			ln.Position2 = fyne.NewPos(size.Width-2, 2)
		}
	}
}

func (diagonal) MinSize([]fyne.CanvasObject) fyne.Size { return fyne.NewSize(0, 0) }

func swatchRow(colors []string, tapped func(string)) *fyne.Container {
	row := container.NewHBox()
	for _, c := range colors {
		row.Add(newColorSwatch(c, tapped))
	}
	return row
}

// Actions are the commands the toolbar triggers outside the board itself.
type Actions struct {
	Save      func()
	ExportPNG func()
	ExportPDF func()
	CopyLink  func()
}

// --- The main toolbar ---
type toolbar struct {
	board   *Board
	tools   map[engine.Tool]*widget.Button
	current engine.Tool
	undo    *widget.Button
	redo    *widget.Button
	zoom    *widget.Label

	stroke  *widget.Slider
	font    *widget.Slider
	opacity *widget.Slider
}

func toolLabel(t engine.Tool) string {
	name := t.String()
	return fmt.Sprintf("%s (%s)", strings.ToUpper(name[:1])+name[1:], strings.ToUpper(t.Shortcut()))
}

func newToolbar(b *Board, act Actions) (*toolbar, fyne.CanvasObject) {
	tb := &toolbar{board: b, tools: make(map[engine.Tool]*widget.Button), current: -1}
	do := func(fn func(e *engine.Engine)) func() {
		return func() { b.session.Do(fn) }
	}

	tools := container.NewHBox()
	for _, t := range engine.Tools {
		btn := widget.NewButton(toolLabel(t), do(func(e *engine.Engine) { e.SetTool(t) }))
		tb.tools[t] = btn
		tools.Add(btn)
	}

	strokeColors := swatchRow(engine.StrokeColors, func(hex string) {
		b.session.Do(func(e *engine.Engine) { e.SetStrokeColor(hex) })
	})
	fills := append([]string{state.Transparent}, engine.StickyColors...)
	fillColors := swatchRow(fills, func(hex string) {
		b.session.Do(func(e *engine.Engine) { e.SetFillColor(hex) })
	})

	defaults := engine.DefaultStyle()
	tb.stroke = widget.NewSlider(0, 20)
	tb.stroke.SetValue(defaults.StrokeWidth)
	tb.stroke.OnChangeEnded = func(v float64) {
		b.session.Do(func(e *engine.Engine) { e.SetStrokeWidth(v) })
	}
	tb.font = widget.NewSlider(8, 72)
	tb.font.SetValue(defaults.FontSize)
	tb.font.OnChangeEnded = func(v float64) {
		b.session.Do(func(e *engine.Engine) { e.SetFontSize(v) })
	}
	tb.opacity = widget.NewSlider(0.1, 1)
	tb.opacity.Step = 0.05
	tb.opacity.SetValue(1)
	tb.opacity.OnChangeEnded = func(v float64) {
		b.session.Do(func(e *engine.Engine) { e.SetOpacity(v) })
	}
	sized := func(o fyne.CanvasObject) fyne.CanvasObject {
		return container.New(layout.NewGridWrapLayout(fyne.NewSize(110, 35)), o)
	}

	tb.undo = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), do(func(e *engine.Engine) { e.Undo() }))
	tb.redo = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), do(func(e *engine.Engine) { e.Redo() }))
	tb.zoom = widget.NewLabel("100%")

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.ZoomOutIcon(), do(func(e *engine.Engine) { e.ZoomOut() })),
		widget.NewToolbarAction(theme.ZoomInIcon(), do(func(e *engine.Engine) { e.ZoomIn() })),
		widget.NewToolbarAction(theme.ViewRestoreIcon(), do(func(e *engine.Engine) { e.ResetView() })),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), do(func(e *engine.Engine) { e.ClearAll() })),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), act.Save),
		widget.NewToolbarAction(theme.FileImageIcon(), act.ExportPNG),
		widget.NewToolbarAction(theme.DownloadIcon(), act.ExportPDF),
		widget.NewToolbarAction(theme.MailForwardIcon(), act.CopyLink),
	)

	top := container.NewHBox(tools, layout.NewSpacer(), tb.undo, tb.redo, tb.zoom, actions)
	style := container.NewHBox(
		widget.NewLabel("Stroke:"), strokeColors,
		widget.NewSeparator(),
		widget.NewLabel("Fill:"), fillColors,
		widget.NewSeparator(),
		widget.NewLabel("Width:"), sized(tb.stroke),
		widget.NewLabel("Font:"), sized(tb.font),
		widget.NewLabel("Opacity:"), sized(tb.opacity),
		layout.NewSpacer(),
	)
	return tb, container.NewVBox(top, style)
}

// update reflects a new frame; call on the UI goroutine.
func (tb *toolbar) update(f engine.Frame) {
	if f.Tool != tb.current {
		for t, btn := range tb.tools {
			if t == f.Tool {
				btn.Importance = widget.HighImportance
			} else {
				btn.Importance = widget.MediumImportance
			}
			btn.Refresh()
		}
		tb.current = f.Tool
	}
	setEnabled(tb.undo, f.CanUndo)
	setEnabled(tb.redo, f.CanRedo)
	if z := zoomLabel(f.Camera); tb.zoom.Text != z {
		tb.zoom.SetText(z)
	}
}

func setEnabled(btn *widget.Button, on bool) {
	if on && btn.Disabled() {
		btn.Enable()
	} else if !on && !btn.Disabled() {
		btn.Disable()
	}
}

func zoomLabel(cam state.Camera) string {
	return fmt.Sprintf("%d%%", int(cam.Zoom*100+0.5))
}
