// Package model holds the front-end neutral description of entity types.
//
// Every front end (Go source, descriptor files, OpenAPI documents) produces
// TypeDefinition values; the scanner and the emitter only ever see this model.
//
// Key types:
//   - TypeDefinition: a type name plus its ordered fields and shape
//   - FieldDefinition: field name, type descriptor and attached annotations
//   - Annotation: a marker namespace with an optional argument token
package model
