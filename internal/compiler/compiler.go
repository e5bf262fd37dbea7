// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/pkg/hook"
)

const (
	// APIVersion is the version of the script-facing host API. Scripts may
	// pin a range with a requires directive.
	APIVersion = "1.2.0"

	// SeverityError marks a diagnostic that prevents loading.
	SeverityError Severity = "error"
	// SeverityWarning marks a diagnostic that does not prevent loading.
	SeverityWarning Severity = "warning"
)

var (
	// ErrUnsupportedExtension is returned when no compiler handles an extension.
	ErrUnsupportedExtension = errors.New("no compiler registered for extension")
	// ErrDuplicateExtension is returned when two compilers claim one extension.
	ErrDuplicateExtension = errors.New("extension already registered")
	// ErrAPIVersion is returned when a script's requires constraint rejects APIVersion.
	ErrAPIVersion = errors.New("host API version not accepted")

	apiVersion = semver.MustParse(APIVersion)
)

type (
	// Severity classifies a diagnostic.
	Severity string

	// Source is one script file handed to a compiler.
	Source struct {
		// URL identifies the file within the content tree and names the module.
		URL string
		// Path is the host location, used in diagnostics.
		Path string
		Data []byte
	}

	// Diagnostic is one compiler message about a source file. Line and Column
	// are 1-based; zero means unknown.
	Diagnostic struct {
		Path     string
		Line     int
		Column   int
		Severity Severity
		Message  string
	}

	// Module is a compiled, loaded script. It is a library later scripts can
	// link against and a source of hook bindings.
	Module interface {
		library.Library
		// Hooks returns the module's bindings in discovery order.
		Hooks() []hook.Binding
		// Backend names the compiler that produced the module.
		Backend() string
	}

	// Result holds either a loaded module or a non-empty diagnostic list,
	// never both. Construct with Loaded or Failed.
	Result struct {
		module      Module
		diagnostics []Diagnostic
	}

	// Compiler turns source into a loaded module. Implementations receive the
	// libraries visible to the script and nothing else.
	Compiler interface {
		// Name identifies the backend in logs and configuration.
		Name() string
		// Extensions lists the file extensions, without dots, this backend compiles.
		Extensions() []string
		// Compile loads src against linked. It must not return a Result with
		// both a module and diagnostics.
		Compile(ctx context.Context, src Source, linked []library.Library) Result
	}

	// APIVersionError reports an unsatisfied requires constraint.
	// It wraps ErrAPIVersion for errors.Is() compatibility.
	APIVersionError struct {
		Constraint string
		Have       string
	}
)

// Loaded returns a successful result.
func Loaded(m Module) Result {
	return Result{module: m}
}

// Failed returns a failed result. A call without diagnostics still fails,
// with a generic message.
func Failed(diags ...Diagnostic) Result {
	if len(diags) == 0 {
		diags = []Diagnostic{{Severity: SeverityError, Message: "compilation failed"}}
	}
	return Result{diagnostics: diags}
}

// FailedErr returns a failed result carrying err as a single diagnostic for path.
func FailedErr(path string, err error) Result {
	return Failed(Diagnostic{Path: path, Severity: SeverityError, Message: err.Error()})
}

// OK reports whether the result holds a module.
func (r Result) OK() bool { return r.module != nil }

// Module returns the loaded module, or nil when compilation failed.
func (r Result) Module() Module { return r.module }

// Diagnostics returns the compiler messages of a failed result.
func (r Result) Diagnostics() []Diagnostic { return r.diagnostics }

// String renders the diagnostic as path:line:col: message, omitting
// unknown parts.
func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Path != "" {
		sb.WriteString(d.Path)
		if d.Line > 0 {
			fmt.Fprintf(&sb, ":%d", d.Line)
			if d.Column > 0 {
				fmt.Fprintf(&sb, ":%d", d.Column)
			}
		}
		sb.WriteString(": ")
	}
	sb.WriteString(d.Message)
	return sb.String()
}

// CheckAPIVersion reports whether APIVersion satisfies constraint.
func CheckAPIVersion(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	if !c.Check(apiVersion) {
		return &APIVersionError{Constraint: constraint, Have: APIVersion}
	}
	return nil
}

// Error implements the error interface for APIVersionError.
func (e *APIVersionError) Error() string {
	return fmt.Sprintf("script requires host API %s, host provides %s", e.Constraint, e.Have)
}

// Unwrap returns ErrAPIVersion for errors.Is() compatibility.
func (e *APIVersionError) Unwrap() error { return ErrAPIVersion }
