package entity

import (
	"hash/maphash"
	"iter"
	"slices"
)

type entry[K, V any] struct {
	key   K
	value V
}

// HashMap is a map keyed by entity identity. The zero value is ready to use.
// A HashMap must not be copied after first use and is not safe for
// concurrent mutation.
type HashMap[K Hashable[K], V any] struct {
	seed    maphash.Seed
	buckets map[uint64][]entry[K, V]
	size    int
}

// NewHashMap returns an empty HashMap.
func NewHashMap[K Hashable[K], V any]() *HashMap[K, V] {
	m := &HashMap[K, V]{}
	m.init()

	return m
}

func (m *HashMap[K, V]) init() {
	if m.buckets == nil {
		m.seed = maphash.MakeSeed()
		m.buckets = make(map[uint64][]entry[K, V])
	}
}

func (m *HashMap[K, V]) find(key K) (uint64, int) {
	m.init()

	sum := Sum(m.seed, key)
	for i, e := range m.buckets[sum] {
		if e.key.Equal(key) {
			return sum, i
		}
	}

	return sum, -1
}

// Put associates value with the identity of key. When an entry with the same
// identity exists its value is replaced and the originally inserted key is
// kept; the previous value is returned with replaced set.
func (m *HashMap[K, V]) Put(key K, value V) (prev V, replaced bool) {
	sum, i := m.find(key)
	if i >= 0 {
		prev = m.buckets[sum][i].value
		m.buckets[sum][i].value = value

		return prev, true
	}

	m.buckets[sum] = append(m.buckets[sum], entry[K, V]{key: key, value: value})
	m.size++

	return prev, false
}

// Get returns the value stored for the identity of key.
func (m *HashMap[K, V]) Get(key K) (V, bool) {
	_, v, ok := m.Entry(key)
	return v, ok
}

// Entry returns the stored key and value for the identity of key. The
// returned key is the one passed to the first Put, not the lookup key.
func (m *HashMap[K, V]) Entry(key K) (K, V, bool) {
	sum, i := m.find(key)
	if i < 0 {
		var (
			zk K
			zv V
		)

		return zk, zv, false
	}

	e := m.buckets[sum][i]

	return e.key, e.value, true
}

// Has reports whether an entry with the identity of key exists.
func (m *HashMap[K, V]) Has(key K) bool {
	_, i := m.find(key)
	return i >= 0
}

// Delete removes the entry with the identity of key and reports whether
// one was present.
func (m *HashMap[K, V]) Delete(key K) bool {
	sum, i := m.find(key)
	if i < 0 {
		return false
	}

	// slices.Delete zeroes the vacated tail slot, releasing its key and value.
	bucket := slices.Delete(m.buckets[sum], i, i+1)

	if len(bucket) == 0 {
		delete(m.buckets, sum)
	} else {
		m.buckets[sum] = bucket
	}

	m.size--

	return true
}

// Len returns the number of entries.
func (m *HashMap[K, V]) Len() int {
	return m.size
}

// All iterates over the entries in unspecified order.
func (m *HashMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, bucket := range m.buckets {
			for _, e := range bucket {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

// Keys returns the stored keys in unspecified order.
func (m *HashMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.size)
	for k := range m.All() {
		keys = append(keys, k)
	}

	return keys
}
