package openapi

import (
	"context"
	"hash/maphash"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-openapi/strfmt"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-generator/internal/model"
)

const storeDocument = `
openapi: 3.0.3
info:
  title: Store
  version: 1.0.0
paths: {}
components:
  schemas:
    Order:
      type: object
      x-entity: derive
      properties:
        status:
          type: string
        id:
          type: integer
          x-entity: id
        customer_id:
          type: string
          format: uuid
        lines:
          type: array
          items:
            $ref: '#/components/schemas/OrderLine'
        placed_at:
          type: string
          format: date-time
    OrderLine:
      allOf:
        - $ref: '#/components/schemas/Audited'
        - type: object
          properties:
            sku:
              type: string
              x-entity: [id]
            quantity:
              type: integer
              format: int32
    Audited:
      type: object
      properties:
        revision:
          type: integer
    Payment:
      oneOf:
        - $ref: '#/components/schemas/Order'
        - $ref: '#/components/schemas/Audited'
    Status:
      type: string
      enum: [new, paid]
    Point:
      type: array
      items:
        type: number
      minItems: 2
      maxItems: 2
    Tags:
      type: array
      items:
        type: string
    Labels:
      type: object
      additionalProperties:
        type: string
`

func read(t *testing.T, doc string) []*model.TypeDefinition {
	t.Helper()

	defs, err := NewReader(Config{Package: "store"}).Read(context.Background(), []byte(doc))
	require.NoError(t, err)

	return defs
}

func byName(defs []*model.TypeDefinition) map[string]*model.TypeDefinition {
	out := make(map[string]*model.TypeDefinition, len(defs))
	for _, def := range defs {
		out[def.Name()] = def
	}

	return out
}

func TestReader_SchemasInNameOrder(t *testing.T) {
	defs := read(t, storeDocument)

	var names []string
	for _, def := range defs {
		names = append(names, def.Name())
	}

	assert.Equal(t, []string{
		"Audited", "Labels", "Order", "OrderLine", "Payment", "Point", "Status", "Tags",
	}, names)
}

func TestReader_ObjectSchemaFields(t *testing.T) {
	order := byName(read(t, storeDocument))["Order"]
	require.NotNil(t, order)

	entity := func(arg string) []model.Annotation {
		return []model.Annotation{{Namespace: "entity", Arg: arg}}
	}

	want := &model.TypeDefinition{
		ID:          model.TypeID{Name: "Order"},
		PkgName:     "store",
		Shape:       model.ShapeStruct,
		Annotations: entity("derive"),
		Source:      "#/components/schemas/Order",
		Fields: []model.FieldDefinition{
			{Name: "CustomerID", Type: "strfmt.UUID"},
			{Name: "ID", Type: "int64", Annotations: entity("id")},
			{Name: "Lines", Type: "[]OrderLine"},
			{Name: "PlacedAt", Type: "strfmt.DateTime", Capabilities: order.Field("PlacedAt").Capabilities},
			{Name: "Status", Type: "string"},
		},
	}

	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_AllOfMergesProperties(t *testing.T) {
	line := byName(read(t, storeDocument))["OrderLine"]
	require.NotNil(t, line)
	assert.Equal(t, model.ShapeStruct, line.Shape)

	require.Len(t, line.Fields, 3)
	assert.Equal(t, "Quantity", line.Fields[0].Name)
	assert.Equal(t, "int32", line.Fields[0].Type)
	assert.Equal(t, "Revision", line.Fields[1].Name)
	assert.Equal(t, "SKU", line.Fields[2].Name)
	assert.True(t, line.Fields[2].HasAnnotation("entity", model.IdentityArg), "list form of the extension")
}

func TestReader_Shapes(t *testing.T) {
	defs := byName(read(t, storeDocument))

	assert.Equal(t, model.ShapeVariant, defs["Payment"].Shape)
	assert.Equal(t, model.ShapeScalar, defs["Status"].Shape)
	assert.Equal(t, model.ShapeTuple, defs["Point"].Shape)
	assert.Equal(t, model.ShapeOther, defs["Tags"].Shape)
	assert.Empty(t, defs["Payment"].Fields)
}

func TestReader_CustomNamespace(t *testing.T) {
	doc := `
openapi: 3.0.3
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Account:
      type: object
      properties:
        number:
          type: string
          x-key: id
        legacy:
          type: string
          x-entity: id
`
	defs, err := NewReader(Config{Namespace: "key", Package: "bank", PkgPath: "example.com/bank"}).
		Read(context.Background(), []byte(doc))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	account := defs[0]
	assert.Equal(t, model.TypeID{PkgPath: "example.com/bank", Name: "Account"}, account.ID)
	assert.True(t, account.Field("Number").HasAnnotation("key", "id"))
	assert.Empty(t, account.Field("Legacy").Annotations)
}

func TestReader_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, os.WriteFile(path, []byte(storeDocument), 0o600))

	defs, err := NewReader(Config{Package: "store"}).ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, defs, 8)
}

func TestReader_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewReader(Config{Package: "store"}).Read(ctx, nil)
	assert.Error(t, err)

	_, err = NewReader(Config{}).Read(ctx, []byte(storeDocument))
	assert.ErrorContains(t, err, "no target package")

	_, err = NewReader(Config{Package: "store"}).Read(ctx, []byte("openapi: 3.0.3\ninfo: {title: t, version: \"1\"}\npaths: {}\n"))
	assert.ErrorContains(t, err, "no component schemas")

	_, err = NewReader(Config{Package: "store"}).Read(ctx, []byte("{not yaml"))
	assert.Error(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = NewReader(Config{Package: "store"}).Read(canceled, []byte(storeDocument))
	assert.Error(t, err)
}

type hashedCode string

func (c hashedCode) Equal(other hashedCode) bool { return c == other }

func (c hashedCode) Hash(h *maphash.Hash) { h.WriteString(string(c)) }

type looseCode string

func (c looseCode) Equal(other string) bool { return string(c) == other }

func TestCapabilitiesOf(t *testing.T) {
	assert.Equal(t, model.Capabilities{EqualMethod: true, HashMethod: true}, capabilitiesOf(reflect.TypeFor[hashedCode]()))
	assert.Equal(t, model.Capabilities{}, capabilitiesOf(reflect.TypeFor[looseCode]()))
	assert.Equal(t, model.Capabilities{}, capabilitiesOf(reflect.TypeFor[string]()))
}

func TestCapabilitiesOf_DateTimeIsUnpaired(t *testing.T) {
	caps := capabilitiesOf(reflect.TypeFor[strfmt.DateTime]())
	assert.Equal(t, model.Capabilities{EqualMethod: true}, caps)
	assert.True(t, caps.Unpaired())
}
