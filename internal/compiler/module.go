// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"slices"

	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/pkg/hook"
)

// module is the Module every backend returns: an export table plus the
// bindings found while compiling.
type module struct {
	name    string
	backend string
	order   []string
	funcs   map[string]library.Func
	hooks   []hook.Binding
}

func newModule(name, backend string) *module {
	return &module{name: name, backend: backend, funcs: make(map[string]library.Func)}
}

func (m *module) export(name string, fn library.Func) {
	if _, ok := m.funcs[name]; !ok {
		m.order = append(m.order, name)
	}
	m.funcs[name] = fn
}

func (m *module) bind(name string, d hook.Descriptor, fn hook.Func) {
	m.hooks = append(m.hooks, hook.Binding{Owner: m.name, Name: name, Descriptor: d, Func: fn})
}

func (m *module) Name() string    { return m.name }
func (m *module) Backend() string { return m.backend }

func (m *module) Lookup(name string) (library.Func, bool) {
	fn, ok := m.funcs[name]
	return fn, ok
}

func (m *module) Symbols() []string     { return slices.Clone(m.order) }
func (m *module) Hooks() []hook.Binding { return slices.Clone(m.hooks) }
