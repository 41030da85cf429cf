package entity

import "iter"

// Set is a set of entities keyed by identity. The zero value is ready to use.
type Set[K Hashable[K]] struct {
	m HashMap[K, struct{}]
}

// NewSet returns a set holding items. Later items with an identity already
// present are ignored.
func NewSet[K Hashable[K]](items ...K) *Set[K] {
	s := &Set[K]{}
	for _, item := range items {
		s.Add(item)
	}

	return s
}

// Add inserts item and reports whether its identity was new.
func (s *Set[K]) Add(item K) bool {
	if s.m.Has(item) {
		return false
	}

	s.m.Put(item, struct{}{})

	return true
}

// Has reports whether an item with the same identity is present.
func (s *Set[K]) Has(item K) bool {
	return s.m.Has(item)
}

// Lookup returns the stored item sharing item's identity.
func (s *Set[K]) Lookup(item K) (K, bool) {
	k, _, ok := s.m.Entry(item)
	return k, ok
}

// Remove deletes the item with item's identity and reports whether it was present.
func (s *Set[K]) Remove(item K) bool {
	return s.m.Delete(item)
}

// Len returns the number of distinct identities in the set.
func (s *Set[K]) Len() int {
	return s.m.Len()
}

// All iterates over the stored items in unspecified order.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range s.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}
