// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/scripthook/scripthook/internal/library"
)

const (
	// BackendShell compiles POSIX/Bash scripts with the embedded mvdan/sh interpreter.
	BackendShell BackendName = "shell"
	// BackendLua compiles Lua 5.2 chunks.
	BackendLua BackendName = "lua"
	// BackendGo interprets Go source files.
	BackendGo BackendName = "go"
)

// ErrInvalidBackendName is returned when a BackendName value is not recognized.
var ErrInvalidBackendName = errors.New("invalid compiler backend")

type (
	// BackendName identifies a compiler backend in configuration.
	BackendName string

	// InvalidBackendNameError is returned when a BackendName value is not recognized.
	// It wraps ErrInvalidBackendName for errors.Is() compatibility.
	InvalidBackendNameError struct {
		Value BackendName
	}

	// Registry maps file extensions to compilers.
	Registry struct {
		byExt map[string]Compiler
		exts  []string
	}

	// BuildRegistryOptions configures registry construction.
	BuildRegistryOptions struct {
		// Backends lists the enabled backends in priority order. Empty means all.
		Backends []BackendName
		// Logger receives script output. Nil discards it.
		Logger *log.Logger
		// ShellDialect is "bash" (default) or "posix".
		ShellDialect string
	}
)

// Backends returns every known backend name.
func Backends() []BackendName {
	return []BackendName{BackendShell, BackendLua, BackendGo}
}

// String returns the string representation of the BackendName.
func (b BackendName) String() string { return string(b) }

// IsValid returns whether the BackendName is one of the defined backends,
// and a list of validation errors if it is not.
func (b BackendName) IsValid() (bool, []error) {
	switch b {
	case BackendShell, BackendLua, BackendGo:
		return true, nil
	default:
		return false, []error{&InvalidBackendNameError{Value: b}}
	}
}

// Error implements the error interface for InvalidBackendNameError.
func (e *InvalidBackendNameError) Error() string {
	return fmt.Sprintf("invalid compiler backend %q (valid: shell, lua, go)", e.Value)
}

// Unwrap returns ErrInvalidBackendName for errors.Is() compatibility.
func (e *InvalidBackendNameError) Unwrap() error { return ErrInvalidBackendName }

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Compiler)}
}

// BuildRegistry creates a registry holding the enabled backends.
func BuildRegistry(opts BuildRegistryOptions) (*Registry, error) {
	backends := opts.Backends
	if len(backends) == 0 {
		backends = Backends()
	}

	r := NewRegistry()
	for _, name := range backends {
		var c Compiler
		switch name {
		case BackendShell:
			c = NewShellCompiler(opts.Logger, opts.ShellDialect)
		case BackendLua:
			c = NewLuaCompiler(opts.Logger)
		case BackendGo:
			c = NewGoCompiler(opts.Logger)
		default:
			return nil, &InvalidBackendNameError{Value: name}
		}
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds c under each of its extensions.
func (r *Registry) Register(c Compiler) error {
	for _, ext := range c.Extensions() {
		if prev, ok := r.byExt[ext]; ok {
			return fmt.Errorf("%w: %q claimed by %s and %s", ErrDuplicateExtension, ext, prev.Name(), c.Name())
		}
	}
	for _, ext := range c.Extensions() {
		r.byExt[ext] = c
		r.exts = append(r.exts, ext)
	}
	return nil
}

// Lookup returns the compiler for ext.
func (r *Registry) Lookup(ext string) (Compiler, bool) {
	c, ok := r.byExt[ext]
	return c, ok
}

// Extensions lists every registered extension in registration order.
func (r *Registry) Extensions() []string {
	return slices.Clone(r.exts)
}

// Compile dispatches src to the compiler for ext. A panic inside the backend
// fails this file only.
func (r *Registry) Compile(ctx context.Context, ext string, src Source, linked []library.Library) (res Result) {
	c, ok := r.byExt[ext]
	if !ok {
		return FailedErr(src.Path, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext))
	}

	defer func() {
		if p := recover(); p != nil {
			log.Debug("compiler panic", "backend", c.Name(), "url", src.URL, "stack", string(debug.Stack()))
			res = Failed(Diagnostic{
				Path:     src.Path,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s compiler panicked: %v", c.Name(), p),
			})
		}
	}()

	res = c.Compile(ctx, src, linked)
	if res.module != nil && len(res.diagnostics) > 0 {
		res.diagnostics = nil
	}
	return res
}
