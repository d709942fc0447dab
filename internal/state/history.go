package state

// History keeps full snapshots of the element collection. history[0] is the initial
// snapshot and index always points at the snapshot matching the live store.
type History struct {
	snapshots [][]Element
	index     int
}

func NewHistory() *History {
	return &History{snapshots: [][]Element{{}}}
}

// Reset discards every snapshot and starts over from the store's current contents.
func (h *History) Reset(s *Store) {
	h.snapshots = [][]Element{s.Elements()}
	h.index = 0
}

// Push records the store's current contents, dropping any redo tail.
func (h *History) Push(s *Store) {
	h.snapshots = append(h.snapshots[:h.index+1], s.Elements())
	h.index = len(h.snapshots) - 1
}

// Undo restores the previous snapshot and clears the selection.
func (h *History) Undo(s *Store) bool {
	if h.index == 0 {
		return false
	}
	h.index--
	h.restore(s)
	return true
}

// Redo restores the next snapshot and clears the selection.
func (h *History) Redo(s *Store) bool {
	if h.index >= len(h.snapshots)-1 {
		return false
	}
	h.index++
	h.restore(s)
	return true
}

func (h *History) restore(s *Store) {
	s.ReplaceAll(h.snapshots[h.index])
	s.SetSelected()
}

func (h *History) CanUndo() bool { return h.index > 0 }
func (h *History) CanRedo() bool { return h.index < len(h.snapshots)-1 }
func (h *History) Len() int      { return len(h.snapshots) }
func (h *History) Index() int    { return h.index }
