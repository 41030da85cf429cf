// Package scan locates the identity field of an entity type.
//
// Scanning and shape validation happen in one pass: only structs with named
// fields are traversed, fields are visited in declaration order and the first
// one carrying the identity marker (`entity:"id"` by default) wins.
//
// Failures are fatal for the type being scanned and are reported as *Error
// values that match ErrMissingIdentityField, ErrUnsupportedShape or
// ErrMultipleIdentityFields with errors.Is.
package scan
