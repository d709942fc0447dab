package engine

import (
	"strings"

	"CanvasBoard/internal/state"
)

// Key handles a key press. While a text edit is open only Enter (without Shift)
// and Escape are interpreted; everything else belongs to the text buffer. Keys
// pressed during a pointer gesture are ignored.
func (e *Engine) Key(ev KeyEvent) {
	if e.mode == ModeEditingText {
		switch {
		case ev.Key == KeyEscape:
			e.CancelText()
		case ev.Key == KeyEnter && !ev.Shift:
			e.CommitText()
		}
		return
	}
	if e.mode != ModeIdle {
		return
	}

	key := strings.ToLower(ev.Key)
	switch {
	case ev.Key == KeyDelete || ev.Key == KeyBackspace:
		e.DeleteSelected()
	case ev.command() && key == "d":
		e.Duplicate()
	case ev.command() && key == "z" && ev.Shift:
		e.Redo()
	case ev.command() && key == "z":
		e.Undo()
	case ev.command() && key == "y":
		e.Redo()
	case ev.Key == KeyEscape:
		e.store.SetSelected()
	case !ev.command():
		if t, ok := shortcuts[key]; ok && len(ev.Key) == 1 {
			e.SetTool(t)
		}
	}
}

func (e *Engine) beginTextEdit(id, text string) {
	e.mode = ModeEditingText
	e.editingID = id
	e.editText = text
}

func (e *Engine) endTextEdit() {
	e.mode = ModeIdle
	e.editingID = ""
	e.editText = ""
}

// TextInput replaces the contents of the open text buffer.
func (e *Engine) TextInput(text string) {
	if e.mode == ModeEditingText {
		e.editText = text
	}
}

// CommitText writes the buffer into the edited element and records one history entry.
func (e *Engine) CommitText() {
	if e.mode != ModeEditingText {
		return
	}
	id, text := e.editingID, e.editText
	e.endTextEdit()
	ok := e.store.Update(id, func(el *state.Element) {
		if l := el.Label(); l != nil {
			l.Text = text
		}
	})
	if ok {
		e.commit()
	}
}

// CancelText closes the buffer and leaves the element as it was.
func (e *Engine) CancelText() {
	if e.mode == ModeEditingText {
		e.endTextEdit()
	}
}
