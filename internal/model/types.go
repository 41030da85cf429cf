package model

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	// DefaultNamespace is the marker name used when none is configured.
	DefaultNamespace = "entity"
	// IdentityArg is the annotation argument that designates the identity field.
	IdentityArg = "id"
	// DeriveArg is the type-level directive argument selecting a type for
	// generation: //entity:derive.
	DeriveArg = "derive"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "entity-generator/examples/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Annotation is a piece of declarative metadata attached to a type or a field.
type Annotation struct {
	Namespace string // reserved marker name, e.g. "entity"
	Arg       string // optional single argument token, e.g. "id"
}

// String renders the annotation in descriptor syntax: "entity(id)" or "entity".
func (a Annotation) String() string {
	if a.Arg == "" {
		return a.Namespace
	}

	return a.Namespace + "(" + a.Arg + ")"
}

// Matches reports whether the annotation belongs to namespace and carries arg.
func (a Annotation) Matches(namespace, arg string) bool {
	return a.Namespace == namespace && a.Arg == arg
}

// ParseAnnotation parses descriptor syntax produced by Annotation.String.
func ParseAnnotation(s string) (Annotation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Annotation{}, fmt.Errorf("empty annotation")
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		return Annotation{Namespace: s}, nil
	}

	if !strings.HasSuffix(s, ")") || open == 0 {
		return Annotation{}, fmt.Errorf("malformed annotation %q", s)
	}

	arg := strings.TrimSpace(s[open+1 : len(s)-1])
	if strings.ContainsAny(arg, "(),") {
		return Annotation{}, fmt.Errorf("annotation %q must carry a single argument", s)
	}

	return Annotation{Namespace: strings.TrimSpace(s[:open]), Arg: arg}, nil
}

// TagAnnotations extracts the annotations a struct tag carries for namespace.
// `entity:"id"` yields one annotation with Arg "id"; comma separated tokens
// yield one annotation each. A present but empty value yields a bare marker.
func TagAnnotations(tag reflect.StructTag, namespace string) []Annotation {
	value, ok := tag.Lookup(namespace)
	if !ok {
		return nil
	}

	if strings.TrimSpace(value) == "" {
		return []Annotation{{Namespace: namespace}}
	}

	var out []Annotation

	for token := range strings.SplitSeq(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		out = append(out, Annotation{Namespace: namespace, Arg: token})
	}

	return out
}

// Capabilities describes which operations the field's own type provides.
// They only steer which call the emitter writes; they are never validated.
type Capabilities struct {
	EqualMethod bool // type has Equal(T) bool
	HashMethod  bool // type has Hash(*maphash.Hash)
}

// Paired reports whether the type provides both Equal and Hash. The emitter
// calls the field's methods only as a pair, so that values they consider
// equal also hash identically.
func (c Capabilities) Paired() bool {
	return c.EqualMethod && c.HashMethod
}

// Unpaired reports whether the type provides exactly one of Equal and Hash.
func (c Capabilities) Unpaired() bool {
	return c.EqualMethod != c.HashMethod
}

// FieldDefinition describes one field of a TypeDefinition.
type FieldDefinition struct {
	Name         string       // field name as declared
	Type         string       // type descriptor as written in the target package
	Annotations  []Annotation // order is insignificant
	Capabilities Capabilities
	Embedded     bool
}

// HasAnnotation reports whether any annotation matches namespace and arg.
func (f *FieldDefinition) HasAnnotation(namespace, arg string) bool {
	for _, a := range f.Annotations {
		if a.Matches(namespace, arg) {
			return true
		}
	}

	return false
}

// TypeDefinition is a type name plus its ordered fields.
// Field order is significant: it decides which identity marker wins.
type TypeDefinition struct {
	ID          TypeID
	PkgName     string
	TypeParams  []string
	Shape       Shape
	Fields      []FieldDefinition
	Annotations []Annotation
	// Source is a human-readable origin, e.g. "store/order.go:12".
	Source string
}

// Name returns the bare type name.
func (t *TypeDefinition) Name() string {
	return t.ID.Name
}

// HasAnnotation reports whether the type itself carries namespace with arg.
// An empty arg matches a bare marker only.
func (t *TypeDefinition) HasAnnotation(namespace, arg string) bool {
	for _, a := range t.Annotations {
		if a.Matches(namespace, arg) {
			return true
		}
	}

	return false
}

// Field returns the field with the given name, or nil.
func (t *TypeDefinition) Field(name string) *FieldDefinition {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}

	return nil
}

// IdentityField is a reference to the field whose value alone decides
// equality and hashing of a TypeDefinition.
type IdentityField struct {
	Index int
	Field FieldDefinition
}

// Name returns the identity field's name.
func (f IdentityField) Name() string {
	return f.Field.Name
}
