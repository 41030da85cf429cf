// Command entity-generator derives identity-based Equal, TotalEq and Hash
// methods for Go struct types.
//
// A struct opts in by marking exactly one field as its identity:
//
//	type Order struct {
//		ID     int64 `entity:"id"`
//		Status string
//	}
//
// Two Orders with the same ID are then equal and hash identically, whatever
// their other fields hold. Types are chosen with -type, or, when -type is
// absent, by an //entity:derive line in their doc comment. The methods are
// written to <type>_entity.go in the package directory, so the usual way to
// run the tool is a go:generate line:
//
//	//go:generate go run entity-generator/cmd/entity-generator -type=Order
//
// Types can also be read from a YAML or JSON descriptor (-descriptor) or from
// the component schemas of an OpenAPI document (-openapi).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/go-multierror"

	"entity-generator/internal/analyze"
	"entity-generator/internal/common"
	"entity-generator/internal/config"
	"entity-generator/internal/descriptor"
	"entity-generator/internal/diagnostic"
	"entity-generator/internal/gen"
	"entity-generator/internal/model"
	"entity-generator/internal/openapi"
	"entity-generator/internal/scan"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `Usage of entity-generator:
	entity-generator [flags] -type T [directory]
	entity-generator [flags] -type T files... # Must be a single package
	entity-generator [flags] -descriptor types.yaml -output dir/t_entity.go
	entity-generator [flags] -openapi api.yaml -package name -output dir/t_entity.go
For more information, see the package documentation.
Flags:
`

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

type options struct {
	typeNames  string
	output     string
	descriptor string
	openapi    string
	pkgName    string
	tag        string
	buildTags  string
	runtime    string
	configFile string
	strict     bool
	legacy     bool
	comments   bool
	check      bool
	describe   bool
	debug      bool
	version    bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type runner struct {
	opts   options
	cfg    config.Config
	log    *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet("entity-generator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.typeNames, "type", "", "comma-separated list of type names; default: types marked //entity:derive")
	fs.StringVar(&opts.output, "output", "", "output file name; default srcdir/<type>_entity.go")
	fs.StringVar(&opts.descriptor, "descriptor", "", "read types from a YAML or JSON descriptor instead of Go source")
	fs.StringVar(&opts.openapi, "openapi", "", "read types from the component schemas of an OpenAPI document")
	fs.StringVar(&opts.pkgName, "package", "", "package name for -openapi; default: name of the output directory")
	fs.StringVar(&opts.tag, "tag", "", "marker namespace: struct tag key and directive prefix (default \"entity\")")
	fs.StringVar(&opts.buildTags, "tags", "", "comma-separated list of build tags to apply")
	fs.StringVar(&opts.runtime, "runtime", "", "import path of the runtime package (default \""+gen.RuntimeImport+"\")")
	fs.StringVar(&opts.configFile, "config", "", "config file; default: nearest "+config.FileName)
	fs.BoolVar(&opts.strict, "strict", false, "fail when a type marks more than one identity field")
	fs.BoolVar(&opts.legacy, "legacy", false, "report unsupported type shapes as a missing identity field")
	fs.BoolVar(&opts.comments, "comments", true, "emit doc comments on generated methods")
	fs.BoolVar(&opts.check, "check", false, "do not write; fail with a diff when the output file is out of date")
	fs.BoolVar(&opts.describe, "describe", false, "print the selected types as a JSON descriptor and exit")
	fs.BoolVar(&opts.debug, "debug", false, "dump configuration and type definitions to stderr")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}

		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "entity-generator %s\n", version)
		return exitOK
	}

	if opts.descriptor != "" && opts.openapi != "" {
		fmt.Fprintln(stderr, "entity-generator: -descriptor and -openapi are mutually exclusive")
		fs.Usage()

		return exitUsage
	}

	r := &runner{
		opts:   opts,
		log:    log.New(stderr, "entity-generator: ", 0),
		stdout: stdout,
		stderr: stderr,
	}

	dir := r.workDir(fs.Args())

	cfg, err := config.Load(config.Options{Dir: dir, File: opts.configFile})
	if err != nil {
		r.log.Print(err)
		return exitFail
	}

	fs.Visit(func(f *flag.Flag) { r.override(&cfg, f.Name) })

	if err := cfg.Validate(); err != nil {
		r.log.Print(err)
		return exitFail
	}

	r.cfg = cfg

	return r.generate(ctx, dir, fs.Args())
}

// workDir is the directory of the package being processed; for descriptor
// and OpenAPI input, the directory of the output file.
func (r *runner) workDir(args []string) string {
	if r.opts.descriptor != "" || r.opts.openapi != "" {
		if r.opts.output != "" {
			return filepath.Dir(r.opts.output)
		}

		return "."
	}

	if len(args) == 0 {
		return "."
	}

	if len(args) == 1 && isDirectory(args[0]) {
		return args[0]
	}

	return filepath.Dir(args[0])
}

// override applies a flag given on the command line on top of the config.
func (r *runner) override(cfg *config.Config, name string) {
	switch name {
	case "tag":
		cfg.Tag = r.opts.tag
	case "output":
		cfg.Output = r.opts.output
	case "strict":
		cfg.Strict = r.opts.strict
	case "legacy":
		cfg.LegacyDiagnostics = r.opts.legacy
	case "comments":
		cfg.Comments = r.opts.comments
	case "runtime":
		cfg.RuntimeImport = r.opts.runtime
	case "tags":
		cfg.BuildTags = config.SplitList(r.opts.buildTags)
	}
}

func (r *runner) generate(ctx context.Context, dir string, args []string) int {
	pkg, err := r.load(ctx, dir, args)
	if err != nil {
		r.log.Print(err)
		return exitFail
	}

	defs, err := r.selectTypes(pkg)
	if err != nil {
		r.log.Print(err)
		return exitFail
	}

	if r.opts.debug {
		dump := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		dump.Fdump(r.stderr, r.cfg)
		dump.Fdump(r.stderr, defs)
	}

	if r.opts.describe {
		out, err := descriptor.Marshal(defs, descriptor.FormatJSON)
		if err != nil {
			r.log.Print(err)
			return exitFail
		}

		_, _ = r.stdout.Write(out)

		return exitOK
	}

	scanner := scan.NewScanner(scan.Config{
		Namespace:         r.cfg.Tag,
		Strict:            r.cfg.Strict,
		LegacyDiagnostics: r.cfg.LegacyDiagnostics,
	})

	results, scanErr := scanner.ScanAll(defs)

	diags := collect(results, scanErr)
	r.report(diags)

	if diags.HasErrors() {
		r.log.Printf("%d of %d types failed; no output written", len(diags.Errors), len(defs))
		return exitFail
	}

	path := r.outputPath(dir, defs)

	generator := gen.NewGenerator(gen.GeneratorConfig{
		OutputDir:        filepath.Dir(path),
		GenerateComments: r.cfg.Comments,
		RuntimeImport:    r.cfg.RuntimeImport,
	})

	file, err := generator.Generate(filepath.Base(path), results)
	if err != nil {
		r.log.Printf("generating %s: %v", path, err)
		return exitFail
	}

	if r.opts.check {
		diff, err := gen.Check(path, file)
		if err != nil {
			if errors.Is(err, gen.ErrStale) {
				fmt.Fprint(r.stdout, diff)
			}

			r.log.Print(err)

			return exitFail
		}

		return exitOK
	}

	if err := file.Write(filepath.Dir(path)); err != nil {
		r.log.Print(err)
		return exitFail
	}

	return exitOK
}

// load reads the type definitions of one package from the selected input.
func (r *runner) load(ctx context.Context, dir string, args []string) (*analyze.Package, error) {
	var (
		defs []*model.TypeDefinition
		err  error
	)

	switch {
	case r.opts.descriptor != "":
		defs, err = descriptor.Load(r.opts.descriptor)

	case r.opts.openapi != "":
		name := r.opts.pkgName
		if name == "" {
			name, err = dirName(dir)
			if err != nil {
				return nil, err
			}
		}

		reader := openapi.NewReader(openapi.Config{Namespace: r.cfg.Tag, Package: name})
		defs, err = reader.ReadFile(ctx, r.opts.openapi)

	default:
		if len(args) == 0 {
			args = []string{"."}
		}

		analyzer := analyze.NewAnalyzer(analyze.Config{
			Namespace: r.cfg.Tag,
			BuildTags: r.cfg.BuildTags,
		})

		return analyzer.Load(args...)
	}

	if err != nil {
		return nil, err
	}

	first, ok := common.First(defs)
	if !ok {
		return nil, errors.New("input describes no types")
	}

	return &analyze.Package{Path: first.ID.PkgPath, Name: first.PkgName, Dir: dir, Types: defs}, nil
}

// selectTypes picks the -type names, or the types carrying the derive
// directive when -type is absent.
func (r *runner) selectTypes(pkg *analyze.Package) ([]*model.TypeDefinition, error) {
	if r.opts.typeNames != "" {
		return pkg.Select(config.SplitList(r.opts.typeNames))
	}

	defs := pkg.Annotated(r.cfg.Tag, r.cfg.Directive)
	if len(defs) == 0 {
		return nil, fmt.Errorf("no types selected in %s: pass -type or mark types with //%s:%s",
			pkg.Name, r.cfg.Tag, r.cfg.Directive)
	}

	return defs, nil
}

func (r *runner) outputPath(dir string, defs []*model.TypeDefinition) string {
	if r.cfg.Output != "" {
		return r.cfg.Output
	}

	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name()
	}

	return filepath.Join(dir, gen.DefaultFilename(names))
}

// collect turns scan outcomes into diagnostics. Failures become errors,
// ignored markers stay warnings.
func collect(results []*scan.Result, scanErr error) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	for _, res := range results {
		diags.Merge(res.Diagnostics)

		if len(res.Type.TypeParams) > 0 {
			diags.AddInfo(diagnostic.CodeNoAssertion,
				"generic type, no entity.Hashable assertion is emitted", res.Type.ID.String(), "")
		}
	}

	var merr *multierror.Error
	if !errors.As(scanErr, &merr) {
		return diags
	}

	for _, err := range merr.WrappedErrors() {
		var serr *scan.Error
		if errors.As(err, &serr) {
			diags.AddError(serr.Code(), serr.Message(), serr.Type, "")
			continue
		}

		diags.AddError("", err.Error(), "", "")
	}

	return diags
}

func (r *runner) report(diags diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		if d.Severity == diagnostic.SeverityInfo && !r.opts.debug {
			continue
		}

		r.log.Printf("%s: %s", d.Severity, d)
	}
}

func isDirectory(name string) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func dirName(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	return filepath.Base(abs), nil
}
