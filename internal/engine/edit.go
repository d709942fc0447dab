package engine

import (
	"encoding/json"
	"fmt"

	"CanvasBoard/internal/state"
)

// DuplicateOffset is how far copies are shifted from their source, on both axes.
const DuplicateOffset = 20

func (e *Engine) DeleteSelected() bool {
	ids := e.store.Selected()
	if len(ids) == 0 || e.mode != ModeIdle {
		return false
	}
	e.store.Delete(ids...)
	e.commit()
	return true
}

// Duplicate copies the selection with fresh ids, offset by DuplicateOffset, and
// selects the copies.
func (e *Engine) Duplicate() []string {
	if e.mode != ModeIdle {
		return nil
	}
	var src []state.Element
	for _, id := range e.store.Selected() {
		if el, ok := e.store.Get(id); ok {
			src = append(src, el)
		}
	}
	return e.insertCopies(src)
}

func (e *Engine) insertCopies(src []state.Element) []string {
	if len(src) == 0 {
		return nil
	}
	ids := make([]string, 0, len(src))
	for _, el := range src {
		c := el.Clone()
		c.ID = e.newID()
		c.Translate(DuplicateOffset, DuplicateOffset)
		e.store.Add(c)
		ids = append(ids, c.ID)
	}
	e.store.SetSelected(ids...)
	e.commit()
	return ids
}

// Copy serializes the selection in the element wire format.
func (e *Engine) Copy() ([]byte, error) {
	var els []state.Element
	for _, id := range e.store.Selected() {
		if el, ok := e.store.Get(id); ok {
			els = append(els, el)
		}
	}
	if len(els) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(els)
	if err != nil {
		return nil, fmt.Errorf("failed to encode selection: %w", err)
	}
	return data, nil
}

// Paste inserts elements produced by Copy, on this board or another one.
func (e *Engine) Paste(data []byte) ([]string, error) {
	var els []state.Element
	if err := json.Unmarshal(data, &els); err != nil {
		return nil, fmt.Errorf("clipboard does not hold board elements: %w", err)
	}
	valid := els[:0]
	for _, el := range els {
		if el.Kind.Valid() {
			valid = append(valid, el)
		}
	}
	return e.insertCopies(valid), nil
}

// ClearAll removes every element as a single undoable step.
func (e *Engine) ClearAll() {
	if e.store.Len() == 0 {
		return
	}
	var ids []string
	for _, el := range e.store.Elements() {
		ids = append(ids, el.ID)
	}
	e.store.Delete(ids...)
	e.commit()
}

// The style setters change the defaults for new elements. When exactly one element
// is selected it is restyled too, as one history step.

func (e *Engine) SetStrokeColor(c string) {
	e.defaults.Stroke = c
	e.restyle(func(el *state.Element) { el.Stroke = c })
}

func (e *Engine) SetFillColor(c string) {
	e.defaults.Fill = c
	e.restyle(func(el *state.Element) { el.Fill = c })
}

func (e *Engine) SetStrokeWidth(w float64) {
	if w < 0 {
		w = 0
	}
	e.defaults.StrokeWidth = w
	e.restyle(func(el *state.Element) { el.StrokeWidth = w })
}

func (e *Engine) SetFontSize(size float64) {
	if size <= 0 {
		return
	}
	e.defaults.FontSize = size
	e.restyle(func(el *state.Element) {
		if l := el.Label(); l != nil {
			l.FontSize = size
		}
	})
}

func (e *Engine) SetOpacity(o float64) {
	o = min(max(o, 0), 1)
	e.restyle(func(el *state.Element) { el.Opacity = o })
}

func (e *Engine) restyle(fn func(*state.Element)) {
	ids := e.store.Selected()
	if len(ids) != 1 {
		return
	}
	before, _ := e.store.Get(ids[0])
	e.store.Update(ids[0], fn)
	if after, ok := e.store.Get(ids[0]); ok && !sameElement(before, after) {
		e.commit()
	}
}

// Select replaces the selection; unknown ids are ignored.
func (e *Engine) Select(ids ...string) { e.store.SetSelected(ids...) }
