package gen

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/tools/imports"

	"entity-generator/internal/common"
	"entity-generator/internal/model"
	"entity-generator/internal/scan"
)

// RuntimeImport is the import path of the runtime support package.
const RuntimeImport = "entity-generator/entity"

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// OutputDir is where a debug copy of unformattable output is written.
	OutputDir string
	// GenerateComments enables doc comments on the emitted methods.
	GenerateComments bool
	// RuntimeImport overrides the import path of the runtime package.
	RuntimeImport string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		GenerateComments: true,
		RuntimeImport:    RuntimeImport,
	}
}

// Generator generates Go code from scanned entity types.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.RuntimeImport == "" {
		config.RuntimeImport = RuntimeImport
	}

	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "order_entity.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// templateData holds all data needed for the entity template.
type templateData struct {
	PackageName      string
	Imports          []importSpec
	Entities         []entityData
	GenerateComments bool
}

// entityData describes the methods emitted for one type.
type entityData struct {
	Name      string // bare type name
	Recv      string // receiver type, with type parameters
	Receiver  string // receiver identifier
	Field     string // identity field name
	EqualExpr string
	HashStmt  string
	Assert    bool // emit the entity.Hashable assertion
}

// Generate renders one file holding the derived methods of every result.
// All results must belong to the same package. Output depends only on the
// input, so regenerating an unchanged package is byte-identical.
func (g *Generator) Generate(filename string, results []*scan.Result) (*GeneratedFile, error) {
	if len(results) == 0 {
		return nil, errors.New("no entity types to generate")
	}

	data := &templateData{
		PackageName:      results[0].Type.PkgName,
		GenerateComments: g.config.GenerateComments,
		Imports:          []importSpec{{Path: "hash/maphash"}},
	}

	if data.PackageName == "" {
		return nil, fmt.Errorf("type %s has no package name", results[0].Type.ID)
	}

	needRuntime := false

	for _, res := range results {
		if res.Type.PkgName != data.PackageName {
			return nil, fmt.Errorf("type %s belongs to package %s, not %s",
				res.Type.ID, res.Type.PkgName, data.PackageName)
		}

		e := g.buildEntity(res)
		needRuntime = needRuntime || e.Assert
		data.Entities = append(data.Entities, e)
	}

	if needRuntime {
		data.Imports = append(data.Imports, importSpec{Path: g.config.RuntimeImport})
	}

	var buf bytes.Buffer
	if err := entityTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		_ = writeUnformatted(g.config.OutputDir, filename, buf.Bytes())

		return &GeneratedFile{
			Filename: filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		Filename: filename,
		Content:  formatted,
	}, nil
}

// buildEntity derives the template data for one scanned type. The identity
// field's own Equal and Hash methods are used when it has both; otherwise the
// comparison operator and maphash.WriteComparable are.
func (g *Generator) buildEntity(res *scan.Result) entityData {
	def := res.Type
	f := res.Identity.Field
	recv := receiverName(def)

	e := entityData{
		Name:     def.Name(),
		Recv:     receiverType(def),
		Receiver: recv,
		Field:    f.Name,
		Assert:   len(def.TypeParams) == 0,
	}

	if f.Capabilities.Paired() {
		e.EqualExpr = fmt.Sprintf("%s.%s.Equal(other.%s)", recv, f.Name, f.Name)
		e.HashStmt = fmt.Sprintf("%s.%s.Hash(state)", recv, f.Name)
	} else {
		e.EqualExpr = fmt.Sprintf("%s.%s == other.%s", recv, f.Name, f.Name)
		e.HashStmt = fmt.Sprintf("maphash.WriteComparable(state, %s.%s)", recv, f.Name)
	}

	return e
}

// receiverName picks the receiver identifier, skipping names taken by the
// type's own parameters.
func receiverName(def *model.TypeDefinition) string {
	name := common.ReceiverName(def.Name())
	for i := 1; slices.Contains(def.TypeParams, name); i++ {
		name = fmt.Sprintf("v%d", i)
	}

	return name
}

// receiverType renders the receiver type, e.g. "Order" or "Ref[K, V]".
func receiverType(def *model.TypeDefinition) string {
	if len(def.TypeParams) == 0 {
		return def.Name()
	}

	return def.Name() + "[" + strings.Join(def.TypeParams, ", ") + "]"
}

// DefaultFilename returns the conventional output name for a set of types:
// the first type name, lower-cased, with an "_entity.go" suffix.
func DefaultFilename(typeNames []string) string {
	first, ok := common.First(typeNames)
	if !ok {
		return "entity_gen.go"
	}

	return strings.ToLower(first) + "_entity.go"
}
