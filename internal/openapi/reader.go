package openapi

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"maps"
	"os"
	"path"
	"reflect"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/strfmt"

	"entity-generator/internal/common"
	"entity-generator/internal/model"
)

// Config holds configuration for the OpenAPI front end.
type Config struct {
	// Namespace selects the extension key, "x-" + Namespace.
	Namespace string
	// Package is the Go package name the definitions are generated into.
	Package string
	// PkgPath is recorded in each TypeID. Optional.
	PkgPath string
	// Formats resolves string formats to Go types. Defaults to strfmt.Default.
	Formats strfmt.Registry
}

// Reader converts OpenAPI component schemas into type definitions.
type Reader struct {
	config Config
}

// NewReader creates a new Reader.
func NewReader(config Config) *Reader {
	if config.Namespace == "" {
		config.Namespace = model.DefaultNamespace
	}

	if config.Formats == nil {
		config.Formats = strfmt.Default
	}

	return &Reader{config: config}
}

// ReadFile loads the document at path and reads it.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]*model.TypeDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading openapi document: %w", err)
	}

	return r.Read(ctx, data)
}

// Read parses and validates data, then describes every component schema in
// name order. External references are not followed.
func (r *Reader) Read(ctx context.Context, data []byte) ([]*model.TypeDefinition, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi document is empty")
	}

	if r.config.Package == "" {
		return nil, errors.New("openapi: no target package name configured")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}

	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, errors.New("openapi: document has no component schemas")
	}

	schemas := doc.Components.Schemas

	defs := make([]*model.TypeDefinition, 0, len(schemas))

	for _, name := range slices.Sorted(maps.Keys(schemas)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ref := schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}

		defs = append(defs, r.definition(name, ref.Value))
	}

	return defs, nil
}

func (r *Reader) definition(name string, schema *openapi3.Schema) *model.TypeDefinition {
	def := &model.TypeDefinition{
		ID: model.TypeID{
			PkgPath: r.config.PkgPath,
			Name:    common.ExportedName(name),
		},
		PkgName:     r.config.Package,
		Shape:       shapeOf(schema),
		Annotations: r.annotations(schema.Extensions),
		Source:      "#/components/schemas/" + name,
	}

	if def.Shape == model.ShapeStruct {
		props := make(openapi3.Schemas)
		collectProperties(schema, props, map[*openapi3.Schema]bool{})

		for _, prop := range slices.Sorted(maps.Keys(props)) {
			field := props[prop]

			typ, caps := r.fieldType(field)

			fd := model.FieldDefinition{
				Name:         common.ExportedName(prop),
				Type:         typ,
				Capabilities: caps,
			}

			if field.Value != nil {
				fd.Annotations = r.annotations(field.Value.Extensions)
			}

			def.Fields = append(def.Fields, fd)
		}
	}

	return def
}

// collectProperties merges the properties of schema and its allOf members.
// Properties declared directly on schema take precedence.
func collectProperties(schema *openapi3.Schema, into openapi3.Schemas, seen map[*openapi3.Schema]bool) {
	if schema == nil || seen[schema] {
		return
	}

	seen[schema] = true

	for _, member := range schema.AllOf {
		if member != nil {
			collectProperties(member.Value, into, seen)
		}
	}

	maps.Copy(into, schema.Properties)
}

func shapeOf(schema *openapi3.Schema) model.Shape {
	switch {
	case len(schema.OneOf) > 0 || len(schema.AnyOf) > 0:
		return model.ShapeVariant
	case is(schema, openapi3.TypeObject) || len(schema.Properties) > 0 || len(schema.AllOf) > 0:
		return model.ShapeStruct
	case is(schema, openapi3.TypeArray):
		if schema.MaxItems != nil && *schema.MaxItems == schema.MinItems {
			return model.ShapeTuple
		}

		return model.ShapeOther
	case is(schema, openapi3.TypeString), is(schema, openapi3.TypeInteger),
		is(schema, openapi3.TypeNumber), is(schema, openapi3.TypeBoolean):
		return model.ShapeScalar
	default:
		return model.ShapeOther
	}
}

func is(schema *openapi3.Schema, typ string) bool {
	return schema.Type != nil && schema.Type.Is(typ)
}

// fieldType renders the Go type descriptor of a property together with the
// capabilities of that type. Only strfmt types carry methods.
func (r *Reader) fieldType(ref *openapi3.SchemaRef) (string, model.Capabilities) {
	if t, ok := r.formatType(ref); ok {
		return t.String(), capabilitiesOf(t)
	}

	return r.typeOf(ref), model.Capabilities{}
}

// formatType returns the strfmt type registered for a formatted string.
func (r *Reader) formatType(ref *openapi3.SchemaRef) (reflect.Type, bool) {
	if ref == nil || ref.Ref != "" || ref.Value == nil {
		return nil, false
	}

	if !is(ref.Value, openapi3.TypeString) || ref.Value.Format == "" {
		return nil, false
	}

	return r.config.Formats.GetType(ref.Value.Format)
}

var maphashType = reflect.TypeFor[*maphash.Hash]()

func capabilitiesOf(t reflect.Type) model.Capabilities {
	var caps model.Capabilities

	if m, ok := t.MethodByName("Equal"); ok {
		mt := m.Type
		caps.EqualMethod = mt.NumIn() == 2 && mt.In(1) == t && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Bool
	}

	if m, ok := t.MethodByName("Hash"); ok {
		mt := m.Type
		caps.HashMethod = mt.NumIn() == 2 && mt.In(1) == maphashType && mt.NumOut() == 0
	}

	return caps
}

// typeOf renders the Go type descriptor of a schema.
func (r *Reader) typeOf(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil {
		return "any"
	}

	if ref.Ref != "" {
		return common.ExportedName(path.Base(ref.Ref))
	}

	if t, ok := r.formatType(ref); ok {
		return t.String()
	}

	s := ref.Value

	switch {
	case is(s, openapi3.TypeString):
		return "string"

	case is(s, openapi3.TypeInteger):
		if s.Format == "int32" {
			return "int32"
		}

		return "int64"

	case is(s, openapi3.TypeNumber):
		if s.Format == "float" {
			return "float32"
		}

		return "float64"

	case is(s, openapi3.TypeBoolean):
		return "bool"

	case is(s, openapi3.TypeArray):
		return "[]" + r.typeOf(s.Items)

	case is(s, openapi3.TypeObject):
		if extra := s.AdditionalProperties.Schema; extra != nil {
			return "map[string]" + r.typeOf(extra)
		}

		return "map[string]any"

	default:
		return "any"
	}
}

// annotations reads the x-<namespace> extension, given either as a single
// token or as a list of tokens.
func (r *Reader) annotations(extensions map[string]any) []model.Annotation {
	raw, ok := extensions["x-"+r.config.Namespace]
	if !ok {
		return nil
	}

	var tokens []string

	switch v := raw.(type) {
	case string:
		tokens = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				tokens = append(tokens, s)
			}
		}
	case bool:
		if v {
			return []model.Annotation{{Namespace: r.config.Namespace}}
		}
	}

	var out []model.Annotation
	for _, token := range tokens {
		out = append(out, model.Annotation{Namespace: r.config.Namespace, Arg: token})
	}

	return out
}
