package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kinbiko/jsonassert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	storeDir  = "../../examples/store"
	shapesDir = "../../examples/shapes"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)

	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_Version(t *testing.T) {
	res := runCLI(t, "-version")
	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, "entity-generator dev\n", res.stdout)
}

func TestRun_BadFlags(t *testing.T) {
	assert.Equal(t, exitUsage, runCLI(t, "-no-such-flag").code)
	assert.Equal(t, exitUsage, runCLI(t, "-descriptor", "a.yaml", "-openapi", "b.yaml").code)
}

func TestRun_CheckedInOutputIsUpToDate(t *testing.T) {
	res := runCLI(t, "-check", "-type=Order,Customer,Shipment,Parcel", storeDir)
	assert.Equal(t, exitOK, res.code, res.stderr+res.stdout)
	assert.Empty(t, res.stdout)
}

func TestRun_CheckReportsStaleOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "order_entity.go")
	require.NoError(t, os.WriteFile(out, []byte("package store\n"), 0o600))

	res := runCLI(t, "-check", "-type=Order", "-output", out, storeDir)
	assert.Equal(t, exitFail, res.code)
	assert.Contains(t, res.stderr, "out of date")
	assert.Contains(t, res.stdout, "+func (o Order) Equal(other Order) bool {")
}

func TestRun_WritesDirectiveSelectedTypes(t *testing.T) {
	out := filepath.Join(t.TempDir(), "shapes_entity.go")

	res := runCLI(t, "-output", out, shapesDir)
	require.Equal(t, exitOK, res.code, res.stderr)

	content, err := os.ReadFile(out)
	require.NoError(t, err)

	src := string(content)
	assert.Contains(t, src, "package shapes")
	assert.Contains(t, src, "return a.id == other.id")
	assert.Contains(t, src, "func (p Page[K, V]) Hash(state *maphash.Hash) {")
	assert.Contains(t, src, "return w.Code.Equal(other.Code)")
	assert.NotContains(t, src, "Untagged")
}

func TestRun_EqualWithoutHashUsesOperators(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reading_entity.go")

	res := runCLI(t, "-type=Reading", "-output", out, shapesDir)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "warning: [entity-generator/examples/shapes.Reading] At: [unpaired_methods]")

	content, err := os.ReadFile(out)
	require.NoError(t, err)

	src := string(content)
	assert.Contains(t, src, "return r.At == other.At")
	assert.Contains(t, src, "maphash.WriteComparable(state, r.At)")
}

func TestRun_FailuresAreReportedTogether(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x_entity.go")

	res := runCLI(t, "-type=Untagged,Account,Event", "-output", out, shapesDir)
	assert.Equal(t, exitFail, res.code)
	assert.Contains(t, res.stderr, `Untagged]: [missing_identity] no field with entity:"id" tag found`)
	assert.Contains(t, res.stderr, "Event]: [unsupported_shape] only structs with named fields can derive identity, got a variant type")
	assert.Contains(t, res.stderr, "2 of 3 types failed")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no output is written when any type fails")
}

func TestRun_LegacyDiagnostics(t *testing.T) {
	res := runCLI(t, "-legacy", "-type=Celsius", "-output", filepath.Join(t.TempDir(), "c.go"), shapesDir)
	assert.Equal(t, exitFail, res.code)
	assert.Contains(t, res.stderr, "[missing_identity]")
}

func TestRun_MultipleIdentityFields(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ledger_entity.go")

	res := runCLI(t, "-type=Ledger", "-output", out, storeDir)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "warning: [entity-generator/examples/store.Ledger] Reference: [multiple_identity]")

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "return l.Number == other.Number")

	res = runCLI(t, "-strict", "-type=Ledger", "-output", out, storeDir)
	assert.Equal(t, exitFail, res.code)
	assert.Contains(t, res.stderr, "fields Number, Reference all carry entity:\"id\"")
}

func TestRun_NoTypesSelected(t *testing.T) {
	res := runCLI(t, storeDir)
	assert.Equal(t, exitFail, res.code)
	assert.Contains(t, res.stderr, "no types selected in store")

	res = runCLI(t, "-type=Invoice", storeDir)
	assert.Equal(t, exitFail, res.code)
	assert.Contains(t, res.stderr, "Invoice")
}

func TestRun_Describe(t *testing.T) {
	res := runCLI(t, "-describe", "-type=Account", shapesDir)
	require.Equal(t, exitOK, res.code, res.stderr)

	jsonassert.New(t).Assertf(res.stdout, `{
		"package": "shapes",
		"pkg_path": "entity-generator/examples/shapes",
		"types": [{
			"name": "Account",
			"annotations": ["entity(derive)"],
			"fields": [
				{"name": "id", "type": "int", "annotations": ["entity(id)"]},
				{"name": "Owner", "type": "string"}
			]
		}]
	}`)
}

func TestRun_Descriptor(t *testing.T) {
	dir := t.TempDir()
	desc := filepath.Join(dir, "types.yaml")
	out := filepath.Join(dir, "gen", "order_entity.go")

	require.NoError(t, os.WriteFile(desc, []byte(`
package: store
types:
  - name: Order
    annotations: [entity(derive)]
    fields:
      - {name: ID, type: int64, annotations: [entity(id)]}
      - {name: Status, type: string}
`), 0o600))

	res := runCLI(t, "-descriptor", desc, "-output", out, "-comments=false")
	require.Equal(t, exitOK, res.code, res.stderr)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "func (o Order) Equal(other Order) bool {")
	assert.NotContains(t, string(content), "// Equal reports")
}

func TestRun_OpenAPI(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "api.yaml")
	out := filepath.Join(dir, "customer_entity.go")

	require.NoError(t, os.WriteFile(doc, []byte(`
openapi: 3.0.3
info: {title: crm, version: "1"}
paths: {}
components:
  schemas:
    Customer:
      type: object
      properties:
        id: {type: string, format: uuid, x-entity: id}
        email: {type: string}
`), 0o600))

	res := runCLI(t, "-openapi", doc, "-package", "crm", "-type=Customer", "-output", out)
	require.Equal(t, exitOK, res.code, res.stderr)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package crm")
	assert.Contains(t, string(content), "maphash.WriteComparable(state, c.ID)")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "gen.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("strict: true\n"), 0o600))

	res := runCLI(t, "-config", cfg, "-type=Ledger", "-output", filepath.Join(dir, "l.go"), storeDir)
	assert.Equal(t, exitFail, res.code, "strict from the config file")

	res = runCLI(t, "-config", cfg, "-strict=false", "-type=Ledger", "-output", filepath.Join(dir, "l.go"), storeDir)
	assert.Equal(t, exitOK, res.code, "flags override the config file: "+res.stderr)
}
