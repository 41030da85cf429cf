// Package diagnostic provides structured warnings and errors reported while
// scanning entity types.
//
// Fatal conditions travel as Go errors; everything a user should see but that
// does not stop generation (an ignored second identity marker, a type that was
// selected but skipped) is collected here and printed by the CLI.
package diagnostic
