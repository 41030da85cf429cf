// Package config layers generator settings: built-in defaults, then a YAML
// file, then ENTITY_GENERATOR_* environment variables (a .env file is read
// too), then command-line flags applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"entity-generator/internal/model"
)

const (
	// FileName is the config file searched for from the working directory up.
	FileName = ".entity-generator.yaml"
	// EnvPrefix prefixes every environment variable the generator reads.
	EnvPrefix = "ENTITY_GENERATOR_"
)

// Config holds all generator settings.
type Config struct {
	Tag               string   `yaml:"tag"`
	Directive         string   `yaml:"directive"`
	Output            string   `yaml:"output"`
	Strict            bool     `yaml:"strict"`
	LegacyDiagnostics bool     `yaml:"legacy_diagnostics"`
	Comments          bool     `yaml:"comments"`
	RuntimeImport     string   `yaml:"runtime_import"`
	BuildTags         []string `yaml:"build_tags"`

	// Source lists where settings were read from, for -debug.
	Source []string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Tag:       model.DefaultNamespace,
		Directive: model.DeriveArg,
		Comments:  true,
	}
}

// Options controls where Load looks.
type Options struct {
	// Dir is where the search for FileName and .env starts.
	Dir string
	// File is an explicit config file; it must exist.
	File string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, the config file and the environment.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	path := opts.File
	if path == "" {
		path, _ = Find(opts.Dir)
	}

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	dotenv, err := readDotEnv(filepath.Join(opts.Dir, ".env"))
	if err != nil {
		return cfg, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := opts.LookupEnv(key); ok {
			return v, true
		}

		v, ok := dotenv[key]

		return v, ok
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Find walks from dir towards the root and returns the first FileName found.
func Find(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(abs, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}

		abs = parent
	}
}

// LoadFile overlays the YAML file at path. Keys absent from the file keep
// their current value; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", path, err)
	}

	c.Source = append(c.Source, path)

	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return env, nil
}

// ApplyEnv overlays ENTITY_GENERATOR_<KEY> variables, where KEY is the
// upper-cased YAML key. BUILD_TAGS is a comma separated list.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TAG":            &c.Tag,
		"DIRECTIVE":      &c.Directive,
		"OUTPUT":         &c.Output,
		"RUNTIME_IMPORT": &c.RuntimeImport,
	}

	bools := map[string]*bool{
		"STRICT":             &c.Strict,
		"LEGACY_DIAGNOSTICS": &c.LegacyDiagnostics,
		"COMMENTS":           &c.Comments,
	}

	applied := false

	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
			applied = true
		}
	}

	for key, dst := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}

		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}

		*dst = b
		applied = true
	}

	if v, ok := lookup(EnvPrefix + "BUILD_TAGS"); ok {
		c.BuildTags = SplitList(v)
		applied = true
	}

	if applied {
		c.Source = append(c.Source, "environment")
	}

	return nil
}

// Validate checks that the settings can form a struct tag key and a
// comment directive.
func (c *Config) Validate() error {
	if c.Tag == "" {
		return errors.New("config: tag must not be empty")
	}

	if strings.ContainsAny(c.Tag, " \t:\"`") {
		return fmt.Errorf("config: tag %q is not a valid struct tag key", c.Tag)
	}

	if c.Directive == "" || strings.ContainsAny(c.Directive, " \t") {
		return fmt.Errorf("config: directive %q must be a single word", c.Directive)
	}

	return nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string

	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
