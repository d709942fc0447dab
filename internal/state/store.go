package state

// Store is the ordered element collection (index order is z-order, last on top) plus
// the selection. It is not safe for concurrent use; the owning session serializes
// access.
type Store struct {
	elements []Element
	selected map[string]struct{}
	clock    Clock
}

func NewStore() *Store {
	return &Store{selected: make(map[string]struct{})}
}

// Revision changes on every mutation of the element collection.
func (s *Store) Revision() uint64 { return s.clock.Now() }

func (s *Store) Len() int { return len(s.elements) }

func (s *Store) index(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the element with the given id.
func (s *Store) Get(id string) (Element, bool) {
	i := s.index(id)
	if i < 0 {
		return Element{}, false
	}
	return s.elements[i].Clone(), true
}

func (s *Store) Has(id string) bool { return s.index(id) >= 0 }

// Elements returns a deep copy of the collection in z-order.
func (s *Store) Elements() []Element { return cloneAll(s.elements) }

// Topmost walks elements from the top of the z-order down and returns the first one
// accepted by match.
func (s *Store) Topmost(match func(*Element) bool) (Element, bool) {
	for i := len(s.elements) - 1; i >= 0; i-- {
		if match(&s.elements[i]) {
			return s.elements[i].Clone(), true
		}
	}
	return Element{}, false
}

func (s *Store) Add(el Element) {
	s.elements = append(s.elements, el.Clone())
	s.clock.Tick()
}

// Update merges changes into the element with the given id by running fn on it.
// Unknown ids are ignored: local and remote edits can race on a deleted element.
func (s *Store) Update(id string, fn func(*Element)) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	fn(&s.elements[i])
	s.elements[i].ID = id
	s.clock.Tick()
	return true
}

// Delete removes the given ids and drops them from the selection. Deleting an
// absent id is a no-op.
func (s *Store) Delete(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(s.selected, id)
	}
	kept := s.elements[:0]
	removed := 0
	for _, el := range s.elements {
		if _, ok := drop[el.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, el)
	}
	// clear the tail so dropped bodies can be collected
	for i := len(kept); i < len(s.elements); i++ {
		s.elements[i] = Element{}
	}
	s.elements = kept
	if removed > 0 {
		s.clock.Tick()
	}
	return removed
}

// ReplaceAll swaps in a new collection. The selection keeps only surviving ids.
func (s *Store) ReplaceAll(els []Element) {
	s.elements = cloneAll(els)
	for id := range s.selected {
		if s.index(id) < 0 {
			delete(s.selected, id)
		}
	}
	s.clock.Tick()
}

// SetSelected replaces the selection. Ids that are not live are ignored.
func (s *Store) SetSelected(ids ...string) {
	s.selected = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.index(id) >= 0 {
			s.selected[id] = struct{}{}
		}
	}
}

func (s *Store) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// Selected returns the selected ids in z-order.
func (s *Store) Selected() []string {
	ids := make([]string, 0, len(s.selected))
	for _, el := range s.elements {
		if _, ok := s.selected[el.ID]; ok {
			ids = append(ids, el.ID)
		}
	}
	return ids
}

func (s *Store) SelectionLen() int { return len(s.selected) }
