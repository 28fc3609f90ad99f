package series

// Set is a deduplicated collection of Keys preserving first-seen order.
// Order is for reporting only; consumers index by key, not position.
type Set struct {
	order []Key
	seen  map[Key]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[Key]struct{})}
}

// Add records the key, returning true when it was not seen before.
func (s *Set) Add(key Key) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}

// Contains reports whether the key was added.
func (s *Set) Contains(key Key) bool {
	_, ok := s.seen[key]
	return ok
}

// Keys returns the keys in first-seen order.
func (s *Set) Keys() []Key {
	out := make([]Key, len(s.order))
	copy(out, s.order)
	return out
}

// Strings returns the string form of every key in first-seen order.
func (s *Set) Strings() []string {
	out := make([]string, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, k.String())
	}
	return out
}

// Len reports the number of distinct keys.
func (s *Set) Len() int {
	return len(s.order)
}
