package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"entity-generator/internal/match"
	"entity-generator/internal/model"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Config holds configuration for the Go source front end.
type Config struct {
	// Namespace is the struct tag key and directive prefix, e.g. "entity".
	Namespace string
	// BuildTags are passed to the build system as -tags.
	BuildTags []string
}

// Analyzer loads one Go package and describes its named types.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(config Config) *Analyzer {
	if config.Namespace == "" {
		config.Namespace = model.DefaultNamespace
	}

	return &Analyzer{config: config}
}

// Package is the result of loading a Go package.
type Package struct {
	Path  string // import path
	Name  string // package name
	Dir   string // directory of the first Go file
	Types []*model.TypeDefinition
}

// Lookup returns the definition of the named type, or nil.
func (p *Package) Lookup(name string) *model.TypeDefinition {
	for _, def := range p.Types {
		if def.Name() == name {
			return def
		}
	}

	return nil
}

// Select returns the definitions of names in the given order. Unknown names
// are reported together in the returned error.
func (p *Package) Select(names []string) ([]*model.TypeDefinition, error) {
	var (
		out     []*model.TypeDefinition
		missing []string
	)

	for _, name := range names {
		def := p.Lookup(name)
		if def == nil {
			missing = append(missing, p.unknown(name))
			continue
		}

		out = append(out, def)
	}

	if len(missing) > 0 {
		return out, fmt.Errorf("types not found in package %s: %s", p.Path, strings.Join(missing, ", "))
	}

	return out, nil
}

// unknown describes a name missing from the package, suggesting the closest
// declared type.
func (p *Package) unknown(name string) string {
	names := make([]string, len(p.Types))
	for i, def := range p.Types {
		names[i] = def.Name()
	}

	if guess, ok := match.Suggest(name, names); ok {
		return fmt.Sprintf("%s (did you mean %s?)", name, guess)
	}

	return name
}

// Annotated returns the definitions carrying the type-level directive
// namespace:arg, in declaration order.
func (p *Package) Annotated(namespace, arg string) []*model.TypeDefinition {
	var out []*model.TypeDefinition

	for _, def := range p.Types {
		if def.HasAnnotation(namespace, arg) {
			out = append(out, def)
		}
	}

	return out
}

// Load loads exactly one package matching patterns (a directory, an import
// path or a list of files) and describes its named types.
func (a *Analyzer) Load(patterns ...string) (*Package, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
	}

	if len(a.config.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(a.config.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	if len(pkgs) != 1 {
		return nil, fmt.Errorf("%d packages matching %v, want exactly one", len(pkgs), patterns)
	}

	pkg := pkgs[0]

	var errs []error
	for _, e := range pkg.Errors {
		errs = append(errs, e)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	return a.processPackage(pkg), nil
}

// processPackage walks the type declarations of pkg in source order.
func (a *Analyzer) processPackage(pkg *packages.Package) *Package {
	out := &Package{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	if len(pkg.GoFiles) > 0 {
		out.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}

			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || ts.Assign.IsValid() {
					// Aliases cannot carry their own methods.
					continue
				}

				obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}

				def := a.analyzeType(pkg, obj)
				def.Annotations = a.directives(doc)
				def.Source = position(pkg.Fset, ts.Pos())
				out.Types = append(out.Types, def)
			}
		}
	}

	return out
}

// analyzeType describes a named type declared in pkg.
func (a *Analyzer) analyzeType(pkg *packages.Package, obj *types.TypeName) *model.TypeDefinition {
	def := &model.TypeDefinition{
		ID: model.TypeID{
			PkgPath: pkg.PkgPath,
			Name:    obj.Name(),
		},
		PkgName: pkg.Name,
	}

	named, ok := obj.Type().(*types.Named)
	if !ok {
		def.Shape = model.ShapeOther
		return def
	}

	if tparams := named.TypeParams(); tparams != nil {
		for i := range tparams.Len() {
			def.TypeParams = append(def.TypeParams, tparams.At(i).Obj().Name())
		}
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		def.Shape = model.ShapeStruct
		def.Fields = a.analyzeStructFields(pkg.Types, ut)

	case *types.Interface:
		def.Shape = model.ShapeVariant

	case *types.Array:
		def.Shape = model.ShapeTuple

	case *types.Basic:
		def.Shape = model.ShapeScalar

	default:
		// Slices, maps, channels, functions and pointers.
		def.Shape = model.ShapeOther
	}

	return def
}

// analyzeStructFields extracts every field of a struct, exported or not,
// in declaration order.
func (a *Analyzer) analyzeStructFields(pkg *types.Package, st *types.Struct) []model.FieldDefinition {
	qualifier := types.RelativeTo(pkg)

	fields := make([]model.FieldDefinition, 0, st.NumFields())

	for i := range st.NumFields() {
		field := st.Field(i)

		fields = append(fields, model.FieldDefinition{
			Name:         field.Name(),
			Type:         types.TypeString(field.Type(), qualifier),
			Annotations:  model.TagAnnotations(reflect.StructTag(st.Tag(i)), a.config.Namespace),
			Capabilities: capabilities(pkg, field.Type()),
			Embedded:     field.Embedded(),
		})
	}

	return fields
}

// directives parses "//<namespace>:<arg>" comment lines into annotations.
// A line consisting of "//<namespace>" alone yields a bare marker.
func (a *Analyzer) directives(doc *ast.CommentGroup) []model.Annotation {
	if doc == nil {
		return nil
	}

	prefix := "//" + a.config.Namespace

	var out []model.Annotation

	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, prefix)
		if !ok {
			continue
		}

		switch {
		case rest == "":
			out = append(out, model.Annotation{Namespace: a.config.Namespace})
		case rest[0] == ':':
			arg, _, _ := strings.Cut(strings.TrimSpace(rest[1:]), " ")
			out = append(out, model.Annotation{Namespace: a.config.Namespace, Arg: arg})
		}
	}

	return out
}

func position(fset *token.FileSet, pos token.Pos) string {
	p := fset.Position(pos)
	if !p.IsValid() {
		return ""
	}

	return fmt.Sprintf("%s:%d", filepath.Base(p.Filename), p.Line)
}
