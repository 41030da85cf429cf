package gen

import "text/template"

var entityTemplate = template.Must(template.New("entity").Parse(`// Code generated by entity-generator. DO NOT EDIT.

package {{.PackageName}}

import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{range .Entities}}
{{if $.GenerateComments}}// Equal reports whether {{.Receiver}} and other are the same {{.Name}}.
// Only {{.Field}} is compared; all other fields are ignored.
{{end}}func ({{.Receiver}} {{.Recv}}) Equal(other {{.Recv}}) bool {
	return {{.EqualExpr}}
}

{{if $.GenerateComments}}// TotalEq marks Equal as a total equality relation.
// This holds only if equality of {{.Field}} is itself total.
{{end}}func ({{.Recv}}) TotalEq() {}

{{if $.GenerateComments}}// Hash writes {{.Field}}, and nothing else, to state.
{{end}}func ({{.Receiver}} {{.Recv}}) Hash(state *maphash.Hash) {
	{{.HashStmt}}
}
{{if .Assert}}
var _ entity.Hashable[{{.Recv}}] = {{.Recv}}{}
{{end}}{{end}}`))
