package ui

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/atotto/clipboard"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/export"
	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/realtime"
	"CanvasBoard/internal/session"
	"CanvasBoard/internal/state"
)

// refreshInterval paces the read-only redraw loop at 60 Hz.
const refreshInterval = time.Second / 60

type Options struct {
	Title     string
	ShareLink string
	// Status is shown until the first notice arrives.
	Status string
}

// viewKey captures everything a redraw depends on. Equal keys mean the screen is
// already up to date.
type viewKey struct {
	revision    uint64
	camera      state.Camera
	viewport    state.Point
	tool        engine.Tool
	mode        engine.Mode
	cursor      string
	editingID   string
	editingText string
	hovered     geom.Handle
	selected    string
	preview     state.Rect
	previewPts  int
	hasPreview  bool
	connector   geom.CubicBez
	hasConn     bool
	cursors     string
}

func keyOf(f engine.Frame, cursors []realtime.RemoteCursor) viewKey {
	k := viewKey{
		revision:    f.Revision,
		camera:      f.Camera,
		viewport:    f.Viewport,
		tool:        f.Tool,
		mode:        f.Mode,
		cursor:      f.Cursor,
		editingID:   f.EditingID,
		editingText: f.EditingText,
		hovered:     f.Hovered,
	}
	ids := make([]string, 0, len(f.Selected))
	for id, on := range f.Selected {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	k.selected = strings.Join(ids, ",")
	if p := f.Preview; p != nil {
		k.hasPreview = true
		k.preview = geom.Bounds(*p)
		if path := p.Path(); path != nil {
			k.previewPts = len(path.Points)
		}
	}
	if c := f.PreviewConnector; c != nil {
		k.hasConn = true
		k.connector = *c
	}
	var sb strings.Builder
	for _, c := range cursors {
		fmt.Fprintf(&sb, "%s:%s:%s:%g:%g;", c.ID, c.Name, c.Color, c.X, c.Y)
	}
	k.cursors = sb.String()
	return k
}

func statusText(board string, connected bool, peers []realtime.Meta, notice string) string {
	parts := []string{"Board: " + board}
	switch {
	case !connected:
		parts = append(parts, "Offline")
	case len(peers) == 0:
		parts = append(parts, "Connected, nobody else here")
	default:
		names := make([]string, len(peers))
		for i, p := range peers {
			names[i] = p.Name
		}
		parts = append(parts, fmt.Sprintf("Connected with %s", strings.Join(names, ", ")))
	}
	if notice != "" {
		parts = append(parts, notice)
	}
	return strings.Join(parts, "  |  ")
}

// RunApp opens the board window and blocks until it is closed. The session must
// already be running.
func RunApp(ctx context.Context, s *session.Session, opts Options) {
	myApp := app.New()
	title := opts.Title
	if title == "" {
		title = "CanvasBoard"
	}
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(1280, 800))

	board := NewBoard(s)
	minimap := NewMinimap(board)
	status := widget.NewLabel(opts.Status)
	notice := ""
	// setNotice must run on the UI goroutine.
	setNotice := func(msg string) {
		notice = msg
		status.SetText(statusText(s.Board(), s.Connected(), s.Peers(), notice))
	}

	exportTo := func(name string, write func(path string, f engine.Frame) error) func() {
		return func() {
			d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
				if err != nil || w == nil {
					return
				}
				path := w.URI().Path()
				w.Close()
				if err := write(path, s.Frame()); err != nil {
					log.Printf("[UI] export to %s failed: %v", path, err)
					dialog.ShowError(err, myWindow)
					return
				}
				log.Printf("[UI] exported %s", path)
			}, myWindow)
			d.SetFileName(name)
			d.Show()
		}
	}

	tb, toolbarView := newToolbar(board, Actions{
		Save: func() {
			if !s.Save(ctx) {
				setNotice("Nothing to save")
			}
		},
		ExportPNG: exportTo(s.Board()+".png", export.PNG),
		ExportPDF: exportTo(s.Board()+".pdf", export.PDF),
		CopyLink: func() {
			if opts.ShareLink == "" {
				return
			}
			if err := clipboard.WriteAll(opts.ShareLink); err != nil {
				log.Printf("[UI] copying share link: %v", err)
				return
			}
			setNotice("Share link copied")
		},
	})

	copySelection := func() {
		var data []byte
		var err error
		s.Do(func(e *engine.Engine) { data, err = e.Copy() })
		if err != nil || len(data) == 0 {
			return
		}
		if err := clipboard.WriteAll(string(data)); err != nil {
			log.Printf("[UI] clipboard write failed: %v", err)
		}
	}
	paste := func() {
		text, err := clipboard.ReadAll()
		if err != nil || text == "" {
			return
		}
		s.Do(func(e *engine.Engine) {
			if _, err := e.Paste([]byte(text)); err != nil {
				log.Printf("[UI] paste ignored: %v", err)
			}
		})
	}

	shortcut := func(key fyne.KeyName, mod fyne.KeyModifier, fn func()) {
		myWindow.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
	}
	primary := fyne.KeyModifierShortcutDefault
	shortcut(fyne.KeyZ, primary, func() { s.Do(func(e *engine.Engine) { e.Undo() }) })
	shortcut(fyne.KeyZ, primary|fyne.KeyModifierShift, func() { s.Do(func(e *engine.Engine) { e.Redo() }) })
	shortcut(fyne.KeyY, primary, func() { s.Do(func(e *engine.Engine) { e.Redo() }) })
	shortcut(fyne.KeyD, primary, func() { s.Do(func(e *engine.Engine) { e.Duplicate() }) })
	shortcut(fyne.KeyA, primary, func() {
		s.Do(func(e *engine.Engine) {
			els, _ := e.Snapshot()
			ids := make([]string, len(els))
			for i, el := range els {
				ids[i] = el.ID
			}
			e.Select(ids...)
		})
	})
	shortcut(fyne.KeyC, primary, copySelection)
	shortcut(fyne.KeyV, primary, paste)
	shortcut(fyne.KeyS, primary, func() { s.Save(ctx) })
	shortcut(fyne.KeyEqual, primary, func() { s.Do(func(e *engine.Engine) { e.ZoomIn() }) })
	shortcut(fyne.KeyMinus, primary, func() { s.Do(func(e *engine.Engine) { e.ZoomOut() }) })
	shortcut(fyne.Key0, primary, func() { s.Do(func(e *engine.Engine) { e.ResetView() }) })

	s.OnNotice = func(msg string) {
		log.Printf("[UI] %s", msg)
		fyne.Do(func() { setNotice(msg) })
	}

	// Set up the main layout
	corner := container.NewBorder(nil, container.NewHBox(minimap), nil, nil)
	content := container.NewBorder(toolbarView, status, nil, nil, container.NewStack(board, container.NewBorder(nil, nil, nil, corner)))
	myWindow.SetContent(content)

	loopCtx, stop := context.WithCancel(ctx)
	go refreshLoop(loopCtx, s, func(f engine.Frame, cursors []realtime.RemoteCursor, peers []realtime.Meta, connected bool) {
		fyne.Do(func() {
			board.show(f, cursors)
			tb.update(f)
			if visibleFrame(f) {
				minimap.Show()
			} else {
				minimap.Hide()
			}
			minimap.Refresh()
			status.SetText(statusText(s.Board(), connected, peers, notice))
		})
	})

	myWindow.SetCloseIntercept(func() {
		stop()
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Close(closeCtx); err != nil {
			log.Printf("[UI] final save failed: %v", err)
		}
		myWindow.Close()
	})
	myWindow.ShowAndRun()
	stop()
}

// refreshLoop polls the session and calls draw whenever the visible state changed.
// It never mutates the session.
func refreshLoop(ctx context.Context, s *session.Session, draw func(engine.Frame, []realtime.RemoteCursor, []realtime.Meta, bool)) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	var last viewKey
	var lastPeers int
	var lastConnected bool
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		f := s.Frame()
		cursors := s.Cursors()
		peers := s.Peers()
		connected := s.Connected()
		k := keyOf(f, cursors)
		if !first && k == last && len(peers) == lastPeers && connected == lastConnected {
			continue
		}
		first = false
		last, lastPeers, lastConnected = k, len(peers), connected
		draw(f, cursors, peers, connected)
	}
}
