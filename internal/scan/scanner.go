package scan

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"entity-generator/internal/common"
	"entity-generator/internal/diagnostic"
	"entity-generator/internal/model"
)

// DefaultNamespace is the marker namespace used when none is configured.
const DefaultNamespace = model.DefaultNamespace

// Config holds configuration for identity scanning.
type Config struct {
	// Namespace is the reserved marker name (struct tag key).
	Namespace string
	// Strict turns a second identity marker into a fatal error instead of
	// a warning; the first declared field otherwise wins.
	Strict bool
	// LegacyDiagnostics reports unsupported shapes as a missing identity
	// field, matching the diagnostic text of earlier releases.
	LegacyDiagnostics bool
}

// DefaultConfig returns the default scanner configuration.
func DefaultConfig() Config {
	return Config{
		Namespace: DefaultNamespace,
	}
}

// Result is the successful outcome of scanning one type.
type Result struct {
	Type        *model.TypeDefinition
	Identity    model.IdentityField
	Diagnostics diagnostic.Diagnostics
}

// Scanner finds identity fields.
type Scanner struct {
	config Config
}

// NewScanner creates a new Scanner with the given configuration.
func NewScanner(config Config) *Scanner {
	if config.Namespace == "" {
		config.Namespace = DefaultNamespace
	}

	return &Scanner{config: config}
}

// Scan validates the shape of def and returns its identity field.
// It never returns a partial result: either the identity is found or the
// returned error is an *Error.
func (s *Scanner) Scan(def *model.TypeDefinition) (*Result, error) {
	name := def.ID.String()

	if def.Shape != model.ShapeStruct {
		if s.config.LegacyDiagnostics {
			return nil, s.fail(KindMissingIdentityField, def)
		}

		return nil, s.fail(KindUnsupportedShape, def)
	}

	var matches []int

	for i := range def.Fields {
		if def.Fields[i].HasAnnotation(s.config.Namespace, model.IdentityArg) {
			matches = append(matches, i)
		}
	}

	first, ok := common.First(matches)
	if !ok {
		return nil, s.fail(KindMissingIdentityField, def)
	}

	result := &Result{
		Type:     def,
		Identity: model.IdentityField{Index: first, Field: def.Fields[first]},
	}

	if id := def.Fields[first]; id.Capabilities.Unpaired() {
		result.Diagnostics.AddWarning(diagnostic.CodeUnpairedMethods,
			fmt.Sprintf("%s has only one of Equal and Hash, comparing with == instead", id.Type),
			name, id.Name)
	}

	if len(matches) > 1 {
		if s.config.Strict {
			err := s.fail(KindMultipleIdentityFields, def)
			for _, i := range matches {
				err.Fields = append(err.Fields, def.Fields[i].Name)
			}

			return nil, err
		}

		for _, i := range matches[1:] {
			result.Diagnostics.AddWarning(diagnostic.CodeMultipleIdentity,
				fmt.Sprintf("identity marker ignored, %s is already the identity field", def.Fields[first].Name),
				name, def.Fields[i].Name)
		}
	}

	return result, nil
}

// ScanAll scans every definition independently. Failures do not stop the
// remaining types; they are aggregated into the returned error, and the
// results slice holds only the successful scans in input order.
func (s *Scanner) ScanAll(defs []*model.TypeDefinition) ([]*Result, error) {
	var (
		results []*Result
		errs    *multierror.Error
	)

	for _, def := range defs {
		res, err := s.Scan(def)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		results = append(results, res)
	}

	return results, errs.ErrorOrNil()
}

func (s *Scanner) fail(kind Kind, def *model.TypeDefinition) *Error {
	return &Error{
		Kind:      kind,
		Type:      def.ID.String(),
		Namespace: s.config.Namespace,
		Shape:     def.Shape,
	}
}
