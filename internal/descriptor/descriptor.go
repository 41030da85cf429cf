package descriptor

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"entity-generator/internal/common"
	"entity-generator/internal/model"
)

var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// Format is a descriptor encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown descriptor format for %s, want .yaml, .yml or .json", path)
	}
}

// File is the document root.
type File struct {
	Package string `yaml:"package,omitempty" json:"package,omitempty"`
	PkgPath string `yaml:"pkg_path,omitempty" json:"pkg_path,omitempty"`
	Types   []Type `yaml:"types" json:"types"`
}

// Type describes one named type.
type Type struct {
	Name        string       `yaml:"name" json:"name"`
	Shape       string       `yaml:"shape,omitempty" json:"shape,omitempty"`
	TypeParams  []string     `yaml:"type_params,omitempty" json:"type_params,omitempty"`
	Annotations []Annotation `yaml:"annotations,omitempty" json:"annotations,omitempty"`
	Fields      []Field      `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Field describes one field. Equal and Hash declare that the field's type
// provides its own Equal and Hash methods.
type Field struct {
	Name        string       `yaml:"name" json:"name"`
	Type        string       `yaml:"type" json:"type"`
	Embedded    bool         `yaml:"embedded,omitempty" json:"embedded,omitempty"`
	Annotations []Annotation `yaml:"annotations,omitempty" json:"annotations,omitempty"`
	Equal       bool         `yaml:"equal,omitempty" json:"equal,omitempty"`
	Hash        bool         `yaml:"hash,omitempty" json:"hash,omitempty"`
}

// Load reads the descriptor at path, choosing the format by extension.
func Load(path string) ([]*model.TypeDefinition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}

	defs, err := parse(data, format, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return defs, nil
}

// Parse decodes a descriptor and converts it to type definitions in
// document order.
func Parse(data []byte, format Format) ([]*model.TypeDefinition, error) {
	return parse(data, format, "descriptor")
}

func parse(data []byte, format Format, origin string) ([]*model.TypeDefinition, error) {
	var file File

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}

	case FormatJSON:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", format)
	}

	return file.definitions(origin)
}

// definitions validates the document and converts it. All problems are
// reported together.
func (f *File) definitions(origin string) ([]*model.TypeDefinition, error) {
	pkgName := f.Package
	if pkgName == "" && f.PkgPath != "" {
		pkgName = path.Base(f.PkgPath)
	}

	var errs *multierror.Error

	if pkgName == "" {
		errs = multierror.Append(errs, fmt.Errorf("descriptor names no package"))
	}

	if len(f.Types) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("descriptor lists no types"))
	}

	seen := make(map[string]bool, len(f.Types))
	defs := make([]*model.TypeDefinition, 0, len(f.Types))

	for i, t := range f.Types {
		if t.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("types[%d]: missing name", i))
			continue
		}

		if seen[t.Name] {
			errs = multierror.Append(errs, fmt.Errorf("type %s: declared twice", t.Name))
			continue
		}

		seen[t.Name] = true

		def, err := t.definition(f.PkgPath, pkgName)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		def.Source = fmt.Sprintf("%s:%s", origin, t.Name)
		defs = append(defs, def)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return defs, nil
}

func (t *Type) definition(pkgPath, pkgName string) (*model.TypeDefinition, error) {
	shape, ok := model.ParseShape(t.Shape)
	if !ok {
		return nil, fmt.Errorf("type %s: unknown shape %q", t.Name, t.Shape)
	}

	def := &model.TypeDefinition{
		ID:          model.TypeID{PkgPath: pkgPath, Name: t.Name},
		PkgName:     pkgName,
		TypeParams:  t.TypeParams,
		Shape:       shape,
		Annotations: toModel(t.Annotations),
	}

	if shape != model.ShapeStruct && len(t.Fields) > 0 {
		return nil, fmt.Errorf("type %s: a %s type cannot declare named fields", t.Name, t.Shape)
	}

	seen := make(map[string]bool, len(t.Fields))

	for i, f := range t.Fields {
		switch {
		case f.Name == "":
			return nil, fmt.Errorf("type %s: fields[%d]: missing name", t.Name, i)
		case f.Type == "":
			return nil, fmt.Errorf("type %s: field %s: missing type", t.Name, f.Name)
		case seen[f.Name]:
			return nil, fmt.Errorf("type %s: field %s declared twice", t.Name, f.Name)
		}

		seen[f.Name] = true

		def.Fields = append(def.Fields, model.FieldDefinition{
			Name:         f.Name,
			Type:         f.Type,
			Annotations:  toModel(f.Annotations),
			Capabilities: model.Capabilities{EqualMethod: f.Equal, HashMethod: f.Hash},
			Embedded:     f.Embedded,
		})
	}

	return def, nil
}

// FromDefinitions builds a document from definitions of a single package.
func FromDefinitions(defs []*model.TypeDefinition) (*File, error) {
	first, ok := common.First(defs)
	if !ok {
		return nil, fmt.Errorf("no types to describe")
	}

	file := &File{
		Package: first.PkgName,
		PkgPath: first.ID.PkgPath,
	}

	for _, def := range defs {
		if def.PkgName != file.Package {
			return nil, fmt.Errorf("type %s belongs to package %s, not %s", def.ID, def.PkgName, file.Package)
		}

		t := Type{
			Name:        def.Name(),
			TypeParams:  def.TypeParams,
			Annotations: fromModel(def.Annotations),
		}

		if def.Shape != model.ShapeStruct {
			t.Shape = strings.ToLower(def.Shape.String())
		}

		for _, f := range def.Fields {
			t.Fields = append(t.Fields, Field{
				Name:        f.Name,
				Type:        f.Type,
				Embedded:    f.Embedded,
				Annotations: fromModel(f.Annotations),
				Equal:       f.Capabilities.EqualMethod,
				Hash:        f.Capabilities.HashMethod,
			})
		}

		file.Types = append(file.Types, t)
	}

	return file, nil
}

// Marshal encodes definitions of a single package. JSON output is indented
// with two spaces.
func Marshal(defs []*model.TypeDefinition, format Format) ([]byte, error) {
	file, err := FromDefinitions(defs)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(file); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}

		return buf.Bytes(), nil

	case FormatJSON:
		out, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}

		return append(out, '\n'), nil

	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", format)
	}
}
