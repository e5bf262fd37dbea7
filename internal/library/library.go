// SPDX-License-Identifier: MPL-2.0

package library

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/scripthook/scripthook/pkg/hook"
)

// ErrSymbolNotFound is returned when no linked library exports a symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

type (
	// Func is a symbol exported by a library. Arguments are passed as strings
	// because every script backend can produce them.
	Func func(ctx context.Context, args ...string) error

	// Library is a named collection of exported symbols. Host libraries and
	// loaded script modules both satisfy it.
	Library interface {
		Name() string
		// Lookup returns the symbol exported under name.
		Lookup(name string) (Func, bool)
		// Symbols lists exported names in export order.
		Symbols() []string
	}

	// Static is a Library built by the host from Go functions. It may carry
	// hook bindings of its own, which the scanner picks up like any module's.
	Static struct {
		name  string
		order []string
		funcs map[string]Func
		hooks []hook.Binding
	}

	// Set is an ordered collection of libraries. Lookups scan in order and the
	// first library exporting a name wins.
	Set struct {
		libs []Library
	}

	// SymbolNotFoundError reports an unresolved symbol.
	// It wraps ErrSymbolNotFound for errors.Is() compatibility.
	SymbolNotFoundError struct {
		Name string
	}
)

// NewStatic returns an empty host library.
func NewStatic(name string) *Static {
	return &Static{name: name, funcs: make(map[string]Func)}
}

// Export adds fn under symbol. Exporting the same name twice replaces the
// function but keeps its original position.
func (s *Static) Export(symbol string, fn Func) *Static {
	if _, ok := s.funcs[symbol]; !ok {
		s.order = append(s.order, symbol)
	}
	s.funcs[symbol] = fn
	return s
}

// Hook attaches a host function to a lifecycle event.
func (s *Static) Hook(name string, d hook.Descriptor, fn hook.Func) *Static {
	s.hooks = append(s.hooks, hook.Binding{Owner: s.name, Name: name, Descriptor: d, Func: fn})
	return s
}

func (s *Static) Name() string { return s.name }

func (s *Static) Lookup(name string) (Func, bool) {
	fn, ok := s.funcs[name]
	return fn, ok
}

func (s *Static) Symbols() []string { return slices.Clone(s.order) }

// Hooks returns the host hooks in the order they were attached.
func (s *Static) Hooks() []hook.Binding { return slices.Clone(s.hooks) }

// NewSet returns a set holding libs in order.
func NewSet(libs ...Library) *Set {
	return &Set{libs: slices.Clone(libs)}
}

// Append adds a library after every library already in the set.
func (s *Set) Append(lib Library) {
	s.libs = append(s.libs, lib)
}

// Len returns the number of libraries.
func (s *Set) Len() int { return len(s.libs) }

// Libraries returns a snapshot of the set in order. Later appends do not
// affect the returned slice.
func (s *Set) Libraries() []Library {
	return slices.Clone(s.libs)
}

// Resolve finds name in the first library that exports it.
func (s *Set) Resolve(name string) (Func, Library, error) {
	return Resolve(s.libs, name)
}

// Resolve finds name in the first of libs that exports it.
func Resolve(libs []Library, name string) (Func, Library, error) {
	for _, lib := range libs {
		if fn, ok := lib.Lookup(name); ok {
			return fn, lib, nil
		}
	}
	return nil, nil, &SymbolNotFoundError{Name: name}
}

// Visible lists every symbol name resolvable through libs, each once, in the
// order resolution would find them.
func Visible(libs []Library) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, lib := range libs {
		for _, name := range lib.Symbols() {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Error implements the error interface for SymbolNotFoundError.
func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol %q not found in any linked library", e.Name)
}

// Unwrap returns ErrSymbolNotFound for errors.Is() compatibility.
func (e *SymbolNotFoundError) Unwrap() error { return ErrSymbolNotFound }
