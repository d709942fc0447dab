package engine

import (
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"CanvasBoard/internal/state"
)

func sameElement(a, b state.Element) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Tracker remembers what was last persisted and works out what a save must write.
type Tracker struct {
	saved map[string]state.Placed
	conns []state.Connection
}

func NewTracker() *Tracker {
	return &Tracker{saved: make(map[string]state.Placed)}
}

// MarkSaved records els and conns as the persisted state.
func (t *Tracker) MarkSaved(els []state.Element, conns []state.Connection) {
	t.saved = make(map[string]state.Placed, len(els))
	for i, el := range els {
		t.saved[el.ID] = state.Placed{Z: i, Element: el.Clone()}
	}
	t.conns = append([]state.Connection(nil), conns...)
}

// Diff returns the elements that are new or differ from the saved copy (including
// a changed z position), and the ids that were saved but no longer exist.
func (t *Tracker) Diff(els []state.Element) (changed []state.Placed, deleted []string) {
	live := make(map[string]struct{}, len(els))
	for i, el := range els {
		live[el.ID] = struct{}{}
		cur := state.Placed{Z: i, Element: el}
		if prev, ok := t.saved[el.ID]; ok && prev.Z == i && sameElement(prev.Element, el) {
			continue
		}
		changed = append(changed, cur)
	}
	for id := range t.saved {
		if _, ok := live[id]; !ok {
			deleted = append(deleted, id)
		}
	}
	sort.Strings(deleted)
	return changed, deleted
}

// Dirty reports whether anything differs from the saved state.
func (t *Tracker) Dirty(els []state.Element, conns []state.Connection) bool {
	changed, deleted := t.Diff(els)
	if len(changed) > 0 || len(deleted) > 0 {
		return true
	}
	return !cmp.Equal(t.conns, conns, cmpopts.EquateEmpty())
}
