package triage

import "github.com/bassamadnan/triage/backend"

// Selection is the set of checked email identifiers. Iteration follows the
// order in which identifiers were checked.
type Selection struct {
	order []backend.ID
	index map[backend.ID]struct{}
}

func NewSelection() *Selection {
	return &Selection{index: make(map[backend.ID]struct{})}
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is selected afterwards.
func (s *Selection) Toggle(id backend.ID) bool {
	if _, ok := s.index[id]; ok {
		delete(s.index, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *Selection) Has(id backend.ID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

// IDs returns a copy of the selected identifiers.
func (s *Selection) IDs() []backend.ID {
	out := make([]backend.ID, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Selection) Clear() {
	s.order = nil
	s.index = make(map[backend.ID]struct{})
}

// Retain drops every identifier not present in emails.
func (s *Selection) Retain(emails []backend.Email) {
	present := make(map[backend.ID]struct{}, len(emails))
	for _, e := range emails {
		present[e.ID] = struct{}{}
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := present[id]; ok {
			kept = append(kept, id)
		} else {
			delete(s.index, id)
		}
	}
	s.order = kept
}
