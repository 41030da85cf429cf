// Package entity is the runtime side of entity-generator.
//
// Types processed by the generator compare and hash by their identity field
// only. The generated methods satisfy the interfaces below, which lets the
// identity-keyed containers in this package (HashMap, Set) treat two values
// with the same identity as the same key, something Go's built-in maps cannot
// do for structs.
//
// Typical use:
//
//	//go:generate go tool entity-generator -type Order
//
//	//entity:derive
//	type Order struct {
//		ID     int64 `entity:"id"`
//		Status string
//	}
//
//	orders := entity.NewHashMap[Order, bool]()
//	orders.Put(Order{ID: 7, Status: "new"}, true)
//	_, ok := orders.Get(Order{ID: 7, Status: "shipped"}) // ok == true
package entity

import "hash/maphash"

// Equivalence is implemented by types that can tell whether two values denote
// the same entity.
type Equivalence[T any] interface {
	Equal(other T) bool
}

// Eq marks an Equivalence that is also a total equality relation: reflexive,
// symmetric and transitive. The marker is a promise made by the declaring
// type and is not verified.
type Eq[T any] interface {
	Equivalence[T]
	TotalEq()
}

// Hashable is an Eq type that folds its identity into a hash accumulator.
// Values that are Equal must write identical bytes.
type Hashable[T any] interface {
	Eq[T]
	Hash(h *maphash.Hash)
}

// SameIdentity reports whether a and b denote the same entity.
func SameIdentity[T Equivalence[T]](a, b T) bool {
	return a.Equal(b)
}

// Sum returns the 64-bit hash of v under seed.
func Sum[T Hashable[T]](seed maphash.Seed, v T) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	v.Hash(&h)

	return h.Sum64()
}
