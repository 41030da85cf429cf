package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"entity-generator/internal/common"
)

// Diagnostic codes.
const (
	CodeMissingIdentity  = "missing_identity"
	CodeUnsupportedShape = "unsupported_shape"
	CodeMultipleIdentity = "multiple_identity"
	CodeNoAssertion      = "no_assertion"
	CodeUnpairedMethods  = "unpaired_methods"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

// String returns a human-readable severity name.
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return common.UnknownStr
	}

	return severityNames[s]
}

// Diagnostic is a single finding about one type or field.
type Diagnostic struct {
	Severity Severity
	// Code is a stable identifier, one of the Code constants.
	Code    string
	Message string
	// Type is the qualified name of the type concerned, if any.
	Type string
	// Field is the field concerned, if any.
	Field string
}

// String renders "[Type] Field: [code] message", leaving out empty parts.
func (d Diagnostic) String() string {
	var sb strings.Builder

	if d.Type != "" {
		sb.WriteString("[" + d.Type + "]")
	}

	if d.Field != "" {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(d.Field)
	}

	if sb.Len() > 0 {
		sb.WriteString(": ")
	}

	if d.Code != "" {
		fmt.Fprintf(&sb, "[%s] ", d.Code)
	}

	sb.WriteString(d.Message)

	return sb.String()
}

// Diagnostics collects the findings of one generation run, split by
// severity.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

func (d *Diagnostics) add(sev Severity, code, message, typeName, field string) {
	diag := Diagnostic{Severity: sev, Code: code, Message: message, Type: typeName, Field: field}

	switch sev {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError records a finding that prevents generation.
func (d *Diagnostics) AddError(code, message, typeName, field string) {
	d.add(SeverityError, code, message, typeName, field)
}

// AddWarning records a finding that generation works around.
func (d *Diagnostics) AddWarning(code, message, typeName, field string) {
	d.add(SeverityWarning, code, message, typeName, field)
}

// AddInfo records a note shown only in debug output.
func (d *Diagnostics) AddInfo(code, message, typeName, field string) {
	d.add(SeverityInfo, code, message, typeName, field)
}

// HasErrors reports whether any error was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge appends the findings of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// All returns every diagnostic ordered by severity, errors first.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// Error joins the error diagnostics into one error, or returns nil.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, len(d.Errors))
	for i, e := range d.Errors {
		parts[i] = e.String()
	}

	return errors.New(strings.Join(parts, "; "))
}
