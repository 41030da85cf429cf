package scan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-generator/internal/diagnostic"
	"entity-generator/internal/model"
)

var idMarker = model.Annotation{Namespace: "entity", Arg: "id"}

func structDef(name string, fields ...model.FieldDefinition) *model.TypeDefinition {
	return &model.TypeDefinition{
		ID:     model.TypeID{PkgPath: "example/store", Name: name},
		Shape:  model.ShapeStruct,
		Fields: fields,
	}
}

func field(name, typ string, annotations ...model.Annotation) model.FieldDefinition {
	return model.FieldDefinition{Name: name, Type: typ, Annotations: annotations}
}

func TestScanner_FindsMarkedField(t *testing.T) {
	def := structDef("Flagged",
		field("id", "int", idMarker),
		field("flag", "bool"),
	)

	res, err := NewScanner(DefaultConfig()).Scan(def)
	require.NoError(t, err)

	assert.Equal(t, "id", res.Identity.Name())
	assert.Equal(t, 0, res.Identity.Index)
	assert.Same(t, def, res.Type)
	assert.False(t, res.Diagnostics.HasErrors())
	assert.Empty(t, res.Diagnostics.Warnings)
}

func TestScanner_MarkerAmongOtherAnnotations(t *testing.T) {
	def := structDef("Order",
		field("Note", "string", model.Annotation{Namespace: "entity", Arg: "audit"}),
		field("Code", "string",
			model.Annotation{Namespace: "json", Arg: "id"},
			model.Annotation{Namespace: "entity"},
		),
		field("Key", "string",
			model.Annotation{Namespace: "entity", Arg: "audit"},
			idMarker,
		),
	)

	res, err := NewScanner(DefaultConfig()).Scan(def)
	require.NoError(t, err)
	assert.Equal(t, "Key", res.Identity.Name())
	assert.Equal(t, 2, res.Identity.Index)
}

func TestScanner_MissingIdentityForAnyArrangement(t *testing.T) {
	arrangements := [][]model.FieldDefinition{
		nil,
		{field("ID", "int")},
		{field("ID", "int"), field("Name", "string"), field("Flag", "bool")},
		{field("ID", "int", model.Annotation{Namespace: "entity"})},
		{field("ID", "int", model.Annotation{Namespace: "dervy", Arg: "id"})},
		{field("ID", "int", model.Annotation{Namespace: "entity", Arg: "ID"})},
	}

	scanner := NewScanner(DefaultConfig())

	for i, fields := range arrangements {
		t.Run(fmt.Sprintf("arrangement_%d", i), func(t *testing.T) {
			res, err := scanner.Scan(structDef("Note", fields...))
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrMissingIdentityField)
			assert.EqualError(t, err, `example/store.Note: no field with entity:"id" tag found`)
		})
	}
}

func TestScanner_FirstDeclaredWinsByDefault(t *testing.T) {
	def := structDef("Order",
		field("Name", "string"),
		field("Primary", "int64", idMarker),
		field("Secondary", "int64", idMarker),
	)

	res, err := NewScanner(DefaultConfig()).Scan(def)
	require.NoError(t, err)
	assert.Equal(t, "Primary", res.Identity.Name())

	require.Len(t, res.Diagnostics.Warnings, 1)
	w := res.Diagnostics.Warnings[0]
	assert.Equal(t, diagnostic.CodeMultipleIdentity, w.Code)
	assert.Equal(t, "Secondary", w.Field)
	assert.Equal(t, "example/store.Order", w.Type)
}

func TestScanner_StrictRejectsMultipleIdentityFields(t *testing.T) {
	def := structDef("Order",
		field("Primary", "int64", idMarker),
		field("Secondary", "int64", idMarker),
	)

	cfg := DefaultConfig()
	cfg.Strict = true

	_, err := NewScanner(cfg).Scan(def)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMultipleIdentityFields)
	assert.NotErrorIs(t, err, ErrMissingIdentityField)

	var scanErr *Error
	require.True(t, errors.As(err, &scanErr))
	assert.Equal(t, []string{"Primary", "Secondary"}, scanErr.Fields)
	assert.Contains(t, err.Error(), `fields Primary, Secondary all carry entity:"id"`)
}

func TestScanner_UnsupportedShapes(t *testing.T) {
	for _, shape := range []model.Shape{model.ShapeTuple, model.ShapeVariant, model.ShapeScalar, model.ShapeOther} {
		t.Run(shape.String(), func(t *testing.T) {
			def := &model.TypeDefinition{
				ID:    model.TypeID{PkgPath: "example/store", Name: "Event"},
				Shape: shape,
				// Even a marked field does not rescue a non-struct shape.
				Fields: []model.FieldDefinition{field("ID", "int", idMarker)},
			}

			_, err := NewScanner(DefaultConfig()).Scan(def)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedShape)
			assert.NotErrorIs(t, err, ErrMissingIdentityField)

			var scanErr *Error
			require.True(t, errors.As(err, &scanErr))
			assert.Equal(t, KindUnsupportedShape, scanErr.Kind)
			assert.Equal(t, shape, scanErr.Shape)
		})
	}
}

func TestScanner_LegacyDiagnosticsConflateShapeErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LegacyDiagnostics = true

	def := &model.TypeDefinition{
		ID:    model.TypeID{Name: "Pair"},
		Shape: model.ShapeTuple,
	}

	_, err := NewScanner(cfg).Scan(def)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingIdentityField)
	assert.EqualError(t, err, `Pair: no field with entity:"id" tag found`)
}

func TestScanner_CustomNamespace(t *testing.T) {
	def := structDef("Order",
		field("ID", "int64", idMarker),
		field("Key", "string", model.Annotation{Namespace: "dervy", Arg: "id"}),
	)

	res, err := NewScanner(Config{Namespace: "dervy"}).Scan(def)
	require.NoError(t, err)
	assert.Equal(t, "Key", res.Identity.Name())

	_, err = NewScanner(Config{Namespace: "ident"}).Scan(def)
	assert.EqualError(t, err, `example/store.Order: no field with ident:"id" tag found`)
}

func TestScanner_ScanAllIsolatesFailures(t *testing.T) {
	defs := []*model.TypeDefinition{
		structDef("Order", field("ID", "int64", idMarker)),
		structDef("Note", field("Text", "string")),
		{ID: model.TypeID{Name: "Event"}, Shape: model.ShapeVariant},
		structDef("Customer", field("Email", "string"), field("ID", "string", idMarker)),
	}

	results, err := NewScanner(DefaultConfig()).ScanAll(defs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingIdentityField)
	assert.ErrorIs(t, err, ErrUnsupportedShape)

	require.Len(t, results, 2)
	assert.Equal(t, "Order", results[0].Type.Name())
	assert.Equal(t, "Customer", results[1].Type.Name())
	assert.Equal(t, "ID", results[1].Identity.Name())

	// Reordering the batch must not change any individual outcome.
	reversed := []*model.TypeDefinition{defs[3], defs[2], defs[1], defs[0]}
	again, err := NewScanner(DefaultConfig()).ScanAll(reversed)
	require.Error(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, results[1].Identity, again[0].Identity)
	assert.Equal(t, results[0].Identity, again[1].Identity)
}

func TestScanner_ScanAllSuccess(t *testing.T) {
	results, err := NewScanner(DefaultConfig()).ScanAll([]*model.TypeDefinition{
		structDef("Order", field("ID", "int64", idMarker)),
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "MissingIdentityField", KindMissingIdentityField.String())
	assert.Equal(t, "UnsupportedShape", KindUnsupportedShape.String())
	assert.Equal(t, "MultipleIdentityFields", KindMultipleIdentityFields.String())
}

func TestError_Code(t *testing.T) {
	assert.Equal(t, diagnostic.CodeMissingIdentity, (&Error{Kind: KindMissingIdentityField}).Code())
	assert.Equal(t, diagnostic.CodeUnsupportedShape, (&Error{Kind: KindUnsupportedShape}).Code())
	assert.Equal(t, diagnostic.CodeMultipleIdentity, (&Error{Kind: KindMultipleIdentityFields}).Code())
}

func TestScanner_WarnsOnUnpairedIdentityMethods(t *testing.T) {
	at := field("At", "time.Time", idMarker)
	at.Capabilities = model.Capabilities{EqualMethod: true}

	res, err := NewScanner(DefaultConfig()).Scan(structDef("Reading", at, field("Value", "float64")))
	require.NoError(t, err)

	require.Len(t, res.Diagnostics.Warnings, 1)
	w := res.Diagnostics.Warnings[0]
	assert.Equal(t, diagnostic.CodeUnpairedMethods, w.Code)
	assert.Equal(t, "At", w.Field)
	assert.Contains(t, w.Message, "time.Time")

	code := field("Code", "Code", idMarker)
	code.Capabilities = model.Capabilities{EqualMethod: true, HashMethod: true}

	res, err = NewScanner(DefaultConfig()).Scan(structDef("WithCode", code))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics.Warnings)
}
