package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"bridge-generator/internal/common"
)

// Diagnostic codes. The first four are the non-fatal kinds a run can report.
const (
	CodeStructuralParse     = "structural_parse_warning"
	CodeSchemaFold          = "schema_fold_warning"
	CodeConversionDowngrade = "conversion_downgrade"
	CodeTemplateRender      = "template_render_error"

	CodeStatementIgnored = "statement_ignored"
	CodeFileSkipped      = "file_skipped"
	CodeCompatibility    = "compatibility"
	CodeInvalidTable     = "invalid_table"
)

// Diagnostics is an ordered list of diagnostic entries.
type Diagnostics struct {
	Items []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code identifies the kind of diagnostic.
	Code string
	// Subject is the identity of the entity this relates to (file path,
	// handler id, table name, artifact path). May be empty.
	Subject string
	// Message is the human-readable description.
	Message string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// New builds a diagnostic without attaching it to a list. Pure stages return
// these and let the caller collect them.
func New(severity DiagnosticSeverity, code, subject, message string) Diagnostic {
	return Diagnostic{
		Severity: severity,
		Code:     code,
		Subject:  subject,
		Message:  message,
	}
}

// Warningf builds a warning diagnostic with a formatted message.
func Warningf(code, subject, format string, args ...any) Diagnostic {
	return New(DiagnosticWarning, code, subject, fmt.Sprintf(format, args...))
}

// Infof builds an info diagnostic with a formatted message.
func Infof(code, subject, format string, args ...any) Diagnostic {
	return New(DiagnosticInfo, code, subject, fmt.Sprintf(format, args...))
}

// WithSuggestions returns a copy of d carrying the given suggestions.
func (d Diagnostic) WithSuggestions(s ...string) Diagnostic {
	d.Suggestions = append(append([]string(nil), d.Suggestions...), s...)
	return d
}

// Add appends already-built diagnostics.
func (d *Diagnostics) Add(items ...Diagnostic) {
	d.Items = append(d.Items, items...)
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, subject string) {
	d.Add(New(DiagnosticError, code, subject, message))
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, subject string) {
	d.Add(New(DiagnosticWarning, code, subject, message))
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, subject string) {
	d.Add(New(DiagnosticInfo, code, subject, message))
}

// Merge appends all entries of other, preserving their order.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Items = append(d.Items, other.Items...)
}

// Len returns the number of entries.
func (d *Diagnostics) Len() int {
	return len(d.Items)
}

// Errors returns the error entries in order.
func (d *Diagnostics) Errors() []Diagnostic {
	return d.bySeverity(DiagnosticError)
}

// Warnings returns the warning entries in order.
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.bySeverity(DiagnosticWarning)
}

// Infos returns the info entries in order.
func (d *Diagnostics) Infos() []Diagnostic {
	return d.bySeverity(DiagnosticInfo)
}

// WithCode returns the entries carrying code, in order.
func (d *Diagnostics) WithCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, item := range d.Items {
		if item.Code == code {
			out = append(out, item)
		}
	}

	return out
}

func (d *Diagnostics) bySeverity(s DiagnosticSeverity) []Diagnostic {
	var out []Diagnostic

	for _, item := range d.Items {
		if item.Severity == s {
			out = append(out, item)
		}
	}

	return out
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.Items {
		if item.Severity == DiagnosticError {
			return true
		}
	}

	return false
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return !d.HasErrors()
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors() {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if d.Subject != "" {
		return d.Subject + ": " + msg
	}

	return msg
}
