package domain

import "sort"

// IDSet is a set of node ids
type IDSet map[string]struct{}

// NewIDSet creates a set holding ids
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexical order
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same ids
func (s IDSet) Equal(o IDSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// InteractionState is the transient pointer state rendered with every frame
type InteractionState struct {
	Hovered     string `json:"hovered,omitempty"`
	Dragged     string `json:"dragged,omitempty"`
	Highlighted IDSet  `json:"-"`
}

// Highlighting reports whether a neighborhood is emphasized
func (s InteractionState) Highlighting() bool {
	return s.Hovered != ""
}

// Emphasized reports whether id renders at full opacity
func (s InteractionState) Emphasized(id string) bool {
	return !s.Highlighting() || s.Highlighted.Has(id)
}

// Connected reports whether e touches the hovered node
func (s InteractionState) Connected(e Edge) bool {
	return s.Highlighting() && e.Touches(s.Hovered)
}
