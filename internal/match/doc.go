// Package match finds the closest known name for a misspelled identifier,
// so that errors about unknown type names can suggest a correction.
package match
