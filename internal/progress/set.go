package progress

import "sort"

// CompletionSet is a set of completed lesson ids. Membership order is
// irrelevant; IDs returns a sorted slice for stable persistence and display.
type CompletionSet struct {
	ids map[string]struct{}
}

// NewCompletionSet creates a set holding ids. Empty ids are dropped and
// duplicates collapse.
func NewCompletionSet(ids ...string) CompletionSet {
	s := CompletionSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports membership.
func (s CompletionSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add inserts id and reports whether it was absent.
func (s *CompletionSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (s *CompletionSet) Remove(id string) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	return true
}

// Len returns the number of ids.
func (s CompletionSet) Len() int {
	return len(s.ids)
}

// IDs returns the members sorted lexically.
func (s CompletionSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
