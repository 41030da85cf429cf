// Package analyze is the Go source front end.
//
// It uses golang.org/x/tools/go/packages with AST and go/types to turn the
// named types of one package into model.TypeDefinition values:
//   - struct types become named-field product types; struct tags are parsed
//     into annotations (`entity:"id"`)
//   - interfaces become variant types, arrays positional (tuple) types and
//     other named types scalars, so the scanner can reject them
//   - comment directives on the type declaration (//entity:derive) become
//     type-level annotations
package analyze
