// Package gen provides deterministic Go code generation for entity types.
//
// Generation approach uses text/template + golang.org/x/tools/imports for
// gofmt-clean output with grouped imports.
//
// For every entity type T with identity field F the emitted file contains:
//   - Equal: T values are equivalent iff their F values are equal
//   - TotalEq: marker declaring Equal a total equality relation
//   - Hash: folds F, and only F, into a *maphash.Hash
//   - a compile-time assertion that T satisfies entity.Hashable[T]
package gen
